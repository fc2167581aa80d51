package model

import "time"

const (
	GroceryActive    = "active"
	GroceryCompleted = "completed"
)

type GroceryList struct {
	ID          int64      `json:"id"`
	CreatorID   int64      `json:"creator_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type GroceryItem struct {
	ID        int64     `json:"id"`
	ListID    int64     `json:"list_id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}
