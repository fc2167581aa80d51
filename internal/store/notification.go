package store

import (
	"database/sql"
	"fmt"
	"time"

	"hearth/internal/model"
)

// Notifications older than this are purged outright.
const notificationTTL = 24 * time.Hour

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var relatedID sql.NullInt64
	var billType sql.NullString
	var dueDate, deletedAt sql.NullTime
	err := scanner.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead,
		&n.Priority, &relatedID, &billType, &dueDate, &deletedAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if relatedID.Valid {
		n.RelatedID = &relatedID.Int64
	}
	if billType.Valid {
		n.BillType = billType.String
	}
	if dueDate.Valid {
		n.DueDate = &dueDate.Time
	}
	if deletedAt.Valid {
		n.DeletedAt = &deletedAt.Time
	}
	return &n, nil
}

const notificationCols = `id, user_id, type, title, message, is_read, priority, related_id, bill_type, due_date, deleted_at, created_at`

// NewNotification is the insert payload for Create.
type NewNotification struct {
	UserID    int64
	Type      string
	Title     string
	Message   string
	Priority  string
	RelatedID *int64
	BillType  string
	DueDate   *time.Time
}

func (s *NotificationStore) Create(n NewNotification) (*model.Notification, error) {
	if n.Priority == "" {
		n.Priority = "medium"
	}
	var billType any
	if n.BillType != "" {
		billType = n.BillType
	}
	result, err := s.db.Exec(
		`INSERT INTO notifications (user_id, type, title, message, priority, related_id, bill_type, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Type, n.Title, n.Message, n.Priority, n.RelatedID, billType, n.DueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NotificationStore) GetByID(id int64) (*model.Notification, error) {
	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// List returns the user's live notifications, newest first. Dismissed
// rows are excluded; they exist only for the bill re-arm window.
func (s *NotificationStore) List(userID int64, limit int, unreadOnly bool) ([]model.Notification, error) {
	if err := s.PurgeExpired(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + notificationCols + ` FROM notifications
		WHERE user_id = ? AND deleted_at IS NULL`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *NotificationStore) CountUnread(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0 AND deleted_at IS NULL`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(id int64) error {
	_, err := s.db.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkAllRead returns how many notifications it flipped.
func (s *NotificationStore) MarkAllRead(userID int64) (int64, error) {
	result, err := s.db.Exec(
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0 AND deleted_at IS NULL`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Dismiss soft-deletes. The row survives so LatestBillEvent can see
// when the user dismissed it.
func (s *NotificationStore) Dismiss(id int64) error {
	_, err := s.db.Exec(
		`UPDATE notifications SET deleted_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("dismiss notification: %w", err)
	}
	return nil
}

// LatestBillEvent finds the most recent bill notification matching the
// slot and due date, dismissed or not. The due date match means a slot
// whose date moved re-arms immediately.
func (s *NotificationStore) LatestBillEvent(userID int64, billType string, dueDate time.Time, relatedID int64) (*model.Notification, error) {
	row := s.db.QueryRow(
		`SELECT `+notificationCols+` FROM notifications
		WHERE user_id = ? AND type = ? AND bill_type = ? AND related_id = ? AND due_date = ?
		ORDER BY created_at DESC LIMIT 1`,
		userID, model.NotifBill, billType, relatedID, dueDate,
	)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest bill event: %w", err)
	}
	return n, nil
}

// PurgeExpired hard-deletes notifications past the retention window.
// Dismissed rows are measured from their dismissal time so the bill
// re-arm window is never cut short by the purge.
func (s *NotificationStore) PurgeExpired() error {
	cutoff := time.Now().UTC().Add(-notificationTTL)
	_, err := s.db.Exec(
		`DELETE FROM notifications WHERE COALESCE(deleted_at, created_at) < ?`,
		cutoff,
	)
	if err != nil {
		return fmt.Errorf("purge notifications: %w", err)
	}
	return nil
}
