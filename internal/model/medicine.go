package model

import "time"

// Medicine is a tracked consumable. Remaining stock is never stored; it is
// projected from Quantity, UsePerDay and DateAdded at read time.
type Medicine struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	UsePerDay float64   `json:"use_per_day"`
	DateAdded time.Time `json:"date_added"`
	RemindAt  string    `json:"remind_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Todo struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Priority  string     `json:"priority"`
	DueDate   *time.Time `json:"due_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
