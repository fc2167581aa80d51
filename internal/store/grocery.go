package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hearth/internal/model"
)

// ErrNotCreator is returned when someone other than the list's creator
// tries a creator-only action.
var ErrNotCreator = errors.New("only the list creator may do that")

// Completed lists are kept for a day so the history view has something
// to show, then purged.
const completedListTTL = 24 * time.Hour

type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

func scanGroceryList(scanner interface{ Scan(...any) error }) (*model.GroceryList, error) {
	var l model.GroceryList
	var completedAt sql.NullTime
	err := scanner.Scan(&l.ID, &l.CreatorID, &l.Title, &l.Status, &completedAt, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		l.CompletedAt = &completedAt.Time
	}
	return &l, nil
}

func scanGroceryItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var it model.GroceryItem
	err := scanner.Scan(&it.ID, &it.ListID, &it.Name, &it.Quantity, &it.Unit, &it.Completed, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

const groceryListCols = `id, creator_id, title, status, completed_at, created_at`
const groceryItemCols = `id, list_id, name, quantity, unit, completed, created_at`

// CreateActive starts a fresh active list for the creator, replacing
// any list they already had going.
func (s *GroceryStore) CreateActive(creatorID int64, title string) (*model.GroceryList, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`DELETE FROM grocery_lists WHERE creator_id = ? AND status = ?`,
		creatorID, model.GroceryActive,
	)
	if err != nil {
		return nil, fmt.Errorf("clear active list: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO grocery_lists (creator_id, title) VALUES (?, ?)`,
		creatorID, title,
	)
	if err != nil {
		return nil, fmt.Errorf("insert grocery list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *GroceryStore) GetByID(id int64) (*model.GroceryList, error) {
	row := s.db.QueryRow(`SELECT `+groceryListCols+` FROM grocery_lists WHERE id = ?`, id)
	l, err := scanGroceryList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grocery list: %w", err)
	}
	return l, nil
}

// GetActiveForUser returns the active list the user can see, either as
// creator or as a shared recipient. Creator's own list wins if both
// exist.
func (s *GroceryStore) GetActiveForUser(userID int64) (*model.GroceryList, error) {
	row := s.db.QueryRow(
		`SELECT `+groceryListCols+` FROM grocery_lists
		WHERE status = ? AND (creator_id = ? OR id IN
			(SELECT list_id FROM grocery_recipients WHERE user_id = ?))
		ORDER BY creator_id = ? DESC, created_at DESC
		LIMIT 1`,
		model.GroceryActive, userID, userID, userID,
	)
	l, err := scanGroceryList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active list: %w", err)
	}
	return l, nil
}

// CanAccess reports whether the user is the creator or a recipient.
func (s *GroceryStore) CanAccess(listID, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRow(
		`SELECT EXISTS (
			SELECT 1 FROM grocery_lists WHERE id = ? AND creator_id = ?
			UNION
			SELECT 1 FROM grocery_recipients WHERE list_id = ? AND user_id = ?
		)`,
		listID, userID, listID, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check access: %w", err)
	}
	return ok, nil
}

func (s *GroceryStore) ListItems(listID int64) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+groceryItemCols+` FROM grocery_items WHERE list_id = ? ORDER BY created_at ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryItem
	for rows.Next() {
		it, err := scanGroceryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *GroceryStore) AddItem(listID int64, name string, quantity float64, unit string) (*model.GroceryItem, error) {
	if quantity <= 0 {
		quantity = 1
	}
	result, err := s.db.Exec(
		`INSERT INTO grocery_items (list_id, name, quantity, unit) VALUES (?, ?, ?, ?)`,
		listID, name, quantity, unit,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+groceryItemCols+` FROM grocery_items WHERE id = ?`, id)
	return scanGroceryItem(row)
}

func (s *GroceryStore) RemoveItem(listID, itemID int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_items WHERE id = ? AND list_id = ?`, itemID, listID)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

func (s *GroceryStore) ToggleItem(listID, itemID int64) error {
	_, err := s.db.Exec(
		`UPDATE grocery_items SET completed = NOT completed WHERE id = ? AND list_id = ?`,
		itemID, listID,
	)
	if err != nil {
		return fmt.Errorf("toggle item: %w", err)
	}
	return nil
}

func (s *GroceryStore) AddRecipient(listID, userID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO grocery_recipients (list_id, user_id) VALUES (?, ?)`,
		listID, userID,
	)
	if err != nil {
		return fmt.Errorf("add recipient: %w", err)
	}
	return nil
}

func (s *GroceryStore) ListRecipients(listID int64) ([]int64, error) {
	rows, err := s.db.Query(`SELECT user_id FROM grocery_recipients WHERE list_id = ?`, listID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Complete marks the list done. Creator only.
func (s *GroceryStore) Complete(listID, userID int64) (*model.GroceryList, error) {
	l, err := s.GetByID(listID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, nil
	}
	if l.CreatorID != userID {
		return nil, ErrNotCreator
	}
	_, err = s.db.Exec(
		`UPDATE grocery_lists SET status = ?, completed_at = datetime('now') WHERE id = ?`,
		model.GroceryCompleted, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("complete list: %w", err)
	}
	return s.GetByID(listID)
}

// DeleteActive drops the user's own active list. Creator only.
func (s *GroceryStore) DeleteActive(listID, userID int64) error {
	l, err := s.GetByID(listID)
	if err != nil {
		return err
	}
	if l == nil {
		return nil
	}
	if l.CreatorID != userID {
		return ErrNotCreator
	}
	_, err = s.db.Exec(`DELETE FROM grocery_lists WHERE id = ?`, listID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// ListCompleted returns the user's recently completed lists, newest
// first, after sweeping out lists past their retention.
func (s *GroceryStore) ListCompleted(userID int64) ([]model.GroceryList, error) {
	if err := s.PurgeCompleted(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT `+groceryListCols+` FROM grocery_lists
		WHERE status = ? AND (creator_id = ? OR id IN
			(SELECT list_id FROM grocery_recipients WHERE user_id = ?))
		ORDER BY completed_at DESC`,
		model.GroceryCompleted, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed: %w", err)
	}
	defer rows.Close()

	var lists []model.GroceryList
	for rows.Next() {
		l, err := scanGroceryList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *GroceryStore) PurgeCompleted() error {
	cutoff := time.Now().UTC().Add(-completedListTTL)
	_, err := s.db.Exec(
		`DELETE FROM grocery_lists WHERE status = ? AND completed_at < ?`,
		model.GroceryCompleted, cutoff,
	)
	if err != nil {
		return fmt.Errorf("purge completed lists: %w", err)
	}
	return nil
}
