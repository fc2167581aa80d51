package model

import "time"

// Notification types.
const (
	NotifMessage  = "message"
	NotifGrocery  = "grocery"
	NotifMedicine = "medicine"
	NotifBill     = "bill"
	NotifTask     = "task"
)

// Notification documents are kept for 24 hours after creation, then purged
// lazily by the store. DeletedAt marks a user dismissal; dismissed
// notifications stay on disk so the bill de-dup re-arm window can key off
// the dismissal time.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	Priority  string     `json:"priority"`
	RelatedID *int64     `json:"related_id"`
	BillType  string     `json:"bill_type,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
