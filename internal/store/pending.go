package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"hearth/internal/model"
)

// pendingTTL is how long a registration may sit unverified before the
// staging record lapses.
const pendingTTL = 3 * time.Minute

type PendingStore struct {
	db *sql.DB
}

func NewPendingStore(db *sql.DB) *PendingStore {
	return &PendingStore{db: db}
}

func scanPending(scanner interface{ Scan(...any) error }) (*model.PendingVerification, error) {
	var p model.PendingVerification
	err := scanner.Scan(
		&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.Code,
		&p.Attempts, &p.ExpiresAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const pendingCols = `id, username, email, password_hash, code, attempts, expires_at, created_at`

// generateOTP returns a 6-digit numeric code (100000–999999).
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Create stages a registration with a fresh 6-digit code and short expiry.
// Any prior pending record for the email is discarded first.
func (s *PendingStore) Create(username, email, passwordHash string) (*model.PendingVerification, error) {
	if _, err := s.db.Exec(`DELETE FROM pending_verifications WHERE email = ?`, email); err != nil {
		return nil, fmt.Errorf("discard previous pending: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(pendingTTL)

	result, err := s.db.Exec(
		`INSERT INTO pending_verifications (username, email, password_hash, code, expires_at) VALUES (?, ?, ?, ?, ?)`,
		username, email, passwordHash, code, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pending: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+pendingCols+` FROM pending_verifications WHERE id = ?`, id)
	return scanPending(row)
}

// GetByEmail returns the live pending record for the email, or nil if none
// exists or the record has expired. Expired records are purged on the way.
func (s *PendingStore) GetByEmail(email string) (*model.PendingVerification, error) {
	if _, err := s.DeleteExpired(); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(
		`SELECT `+pendingCols+` FROM pending_verifications WHERE email = ? AND expires_at > datetime('now')`,
		email,
	)
	p, err := scanPending(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending by email: %w", err)
	}
	return p, nil
}

// IncrementAttempts bumps the attempt counter and returns the new value.
func (s *PendingStore) IncrementAttempts(id int64) (int, error) {
	_, err := s.db.Exec(`UPDATE pending_verifications SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("increment attempts: %w", err)
	}

	var attempts int
	err = s.db.QueryRow(`SELECT attempts FROM pending_verifications WHERE id = ?`, id).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("read attempts: %w", err)
	}
	return attempts, nil
}

func (s *PendingStore) DeleteByEmail(email string) error {
	_, err := s.db.Exec(`DELETE FROM pending_verifications WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("delete pending: %w", err)
	}
	return nil
}

func (s *PendingStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM pending_verifications WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, fmt.Errorf("delete expired pending: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
