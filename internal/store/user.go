package store

import (
	"database/sql"
	"fmt"

	"hearth/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var verified int
	var familyID sql.NullInt64

	err := scanner.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &verified,
		&familyID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.IsVerified = verified != 0
	if familyID.Valid {
		u.FamilyID = &familyID.Int64
	}
	return &u, nil
}

const userCols = `id, username, email, password_hash, is_verified, family_id, created_at, updated_at`

// Create inserts a verified user. Callers only reach this through the OTP
// gate, so is_verified is always set.
func (s *UserStore) Create(username, email, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (username, email, password_hash, is_verified) VALUES (?, ?, ?, 1)`,
		username, email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// VerifiedTaken reports which of username/email is already held by a
// verified account. Empty string means both are free.
func (s *UserStore) VerifiedTaken(username, email string) (string, error) {
	row := s.db.QueryRow(
		`SELECT username, email FROM users WHERE (username = ? OR email = ?) AND is_verified = 1 LIMIT 1`,
		username, email,
	)
	var gotUsername, gotEmail string
	err := row.Scan(&gotUsername, &gotEmail)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("check verified user: %w", err)
	}
	if gotUsername == username {
		return "username", nil
	}
	return "email", nil
}

// SetFamily points the user's family reference at familyID, or clears it
// when familyID is nil.
func (s *UserStore) SetFamily(id int64, familyID *int64) error {
	var fID sql.NullInt64
	if familyID != nil {
		fID = sql.NullInt64{Int64: *familyID, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE users SET family_id = ?, updated_at = datetime('now') WHERE id = ?`,
		fID, id,
	)
	if err != nil {
		return fmt.Errorf("set family: %w", err)
	}
	return nil
}

// ClearFamilyForMembers nulls the family reference of every user in the family.
func (s *UserStore) ClearFamilyForMembers(familyID int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET family_id = NULL, updated_at = datetime('now') WHERE family_id = ?`,
		familyID,
	)
	if err != nil {
		return fmt.Errorf("clear family refs: %w", err)
	}
	return nil
}
