package store

import (
	"database/sql"
	"fmt"

	"hearth/internal/model"
)

type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

func scanMessage(scanner interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	err := scanner.Scan(
		&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.Status, &m.CreatedAt,
		&m.SenderName, &m.RecipientName,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const messageCols = `m.id, m.sender_id, m.recipient_id, m.content, m.status, m.created_at,
	s.username, r.username`

const messageJoins = ` FROM messages m
	JOIN users s ON s.id = m.sender_id
	JOIN users r ON r.id = m.recipient_id`

func (s *MessageStore) Create(senderID, recipientID int64, content string) (*model.Message, error) {
	result, err := s.db.Exec(
		`INSERT INTO messages (sender_id, recipient_id, content, status) VALUES (?, ?, ?, ?)`,
		senderID, recipientID, content, model.MessageSent,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MessageStore) GetByID(id int64) (*model.Message, error) {
	row := s.db.QueryRow(`SELECT `+messageCols+messageJoins+` WHERE m.id = ?`, id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// ListForUser returns every message the user sent or received, newest
// first, with both usernames resolved.
func (s *MessageStore) ListForUser(userID int64) ([]model.Message, error) {
	rows, err := s.db.Query(
		`SELECT `+messageCols+messageJoins+`
		WHERE m.sender_id = ? OR m.recipient_id = ?
		ORDER BY m.created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// UpdateStatus moves a message along Sent -> Read -> Completed. Only
// the recipient advances status; the handler enforces that.
func (s *MessageStore) UpdateStatus(id int64, status string) error {
	_, err := s.db.Exec(`UPDATE messages SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update message status: %w", err)
	}
	return nil
}

func (s *MessageStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
