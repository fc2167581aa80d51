package store

import (
	"database/sql"
	"fmt"
	"time"

	"hearth/internal/model"
)

type TodoStore struct {
	db *sql.DB
}

func NewTodoStore(db *sql.DB) *TodoStore {
	return &TodoStore{db: db}
}

func scanTodo(scanner interface{ Scan(...any) error }) (*model.Todo, error) {
	var t model.Todo
	var dueDate sql.NullTime
	err := scanner.Scan(
		&t.ID, &t.UserID, &t.Text, &t.Completed, &t.Priority,
		&dueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	return &t, nil
}

const todoCols = `id, user_id, text, completed, priority, due_date, created_at, updated_at`

func (s *TodoStore) Create(userID int64, text, priority string, dueDate *time.Time) (*model.Todo, error) {
	result, err := s.db.Exec(
		`INSERT INTO todos (user_id, text, priority, due_date) VALUES (?, ?, ?, ?)`,
		userID, text, priority, dueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TodoStore) GetByID(id int64) (*model.Todo, error) {
	row := s.db.QueryRow(`SELECT `+todoCols+` FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

func (s *TodoStore) ListByUser(userID int64) ([]model.Todo, error) {
	rows, err := s.db.Query(
		`SELECT `+todoCols+` FROM todos WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

// TodoUpdate carries the optional fields of a todo update; nil fields
// are left unchanged.
type TodoUpdate struct {
	Text      *string
	Completed *bool
	Priority  *string
	DueDate   *time.Time
}

func (s *TodoStore) Update(id int64, upd TodoUpdate) (*model.Todo, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	text := existing.Text
	completed := existing.Completed
	priority := existing.Priority
	dueDate := existing.DueDate

	if upd.Text != nil {
		text = *upd.Text
	}
	if upd.Completed != nil {
		completed = *upd.Completed
	}
	if upd.Priority != nil {
		priority = *upd.Priority
	}
	if upd.DueDate != nil {
		dueDate = upd.DueDate
	}

	_, err = s.db.Exec(
		`UPDATE todos SET text = ?, completed = ?, priority = ?, due_date = ?, updated_at = datetime('now') WHERE id = ?`,
		text, completed, priority, dueDate, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return s.GetByID(id)
}

func (s *TodoStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}
