package model

import "time"

const (
	MessageSent      = "Sent"
	MessageRead      = "Read"
	MessageCompleted = "Completed"
)

type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	// Resolved from users on read.
	SenderName    string `json:"sender_name,omitempty"`
	RecipientName string `json:"recipient_name,omitempty"`
}
