package store

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"hearth/internal/model"
)

var (
	// ErrAlreadyMember is returned when a user tries to join a family
	// while holding a membership somewhere.
	ErrAlreadyMember = errors.New("user already belongs to a family")
	// ErrCreator is returned when removing the family creator is attempted.
	ErrCreator = errors.New("cannot remove family creator")
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	err := scanner.Scan(
		&f.ID, &f.Name, &f.CreatedBy, &f.InvitationCode,
		&f.DocsFolder, &f.VideosFolder, &f.PhotosFolder,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

const familyCols = `id, name, created_by, invitation_code, docs_folder, videos_folder, photos_folder, created_at, updated_at`

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateInvitationCode returns an 8-character uppercase alphanumeric
// code. Collisions are not retried; the unique index turns one into an
// insert failure.
func generateInvitationCode() (string, error) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generate invitation code: %w", err)
		}
		b.WriteByte(inviteAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Create makes a new family with a fresh invitation code, enrolls the
// creator as its first member, and points the creator's family reference
// at it. Fails with ErrAlreadyMember if the creator is already enrolled
// somewhere.
func (s *FamilyStore) Create(name string, createdBy int64) (*model.Family, error) {
	code, err := generateInvitationCode()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO families (name, created_by, invitation_code) VALUES (?, ?, ?)`,
		name, createdBy, code,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO family_members (family_id, user_id) VALUES (?, ?)`,
		id, createdBy,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("insert creator membership: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET family_id = ?, updated_at = datetime('now') WHERE id = ?`,
		id, createdBy,
	); err != nil {
		return nil, fmt.Errorf("set creator family: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyStore) GetByID(id int64) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) GetByCode(code string) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE invitation_code = ?`, code)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family by code: %w", err)
	}
	return f, nil
}

// GetForUser returns the family the user is enrolled in, or nil.
func (s *FamilyStore) GetForUser(userID int64) (*model.Family, error) {
	row := s.db.QueryRow(
		`SELECT f.`+strings.ReplaceAll(familyCols, ", ", ", f.")+`
		 FROM families f JOIN family_members m ON m.family_id = f.id
		 WHERE m.user_id = ?`,
		userID,
	)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family for user: %w", err)
	}
	return f, nil
}

// AddMember enrolls the user and sets their family reference. The unique
// index on family_members.user_id makes double-enrollment a constraint
// violation rather than a race.
func (s *FamilyStore) AddMember(familyID, userID int64) (*model.FamilyMember, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO family_members (family_id, user_id) VALUES (?, ?)`,
		familyID, userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET family_id = ?, updated_at = datetime('now') WHERE id = ?`,
		familyID, userID,
	); err != nil {
		return nil, fmt.Errorf("set member family: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	var m model.FamilyMember
	row := s.db.QueryRow(`SELECT id, family_id, user_id, joined_at FROM family_members WHERE id = ?`, id)
	if err := row.Scan(&m.ID, &m.FamilyID, &m.UserID, &m.JoinedAt); err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

// RemoveMember strips the membership record and nulls the user's family
// reference. The creator cannot be removed.
func (s *FamilyStore) RemoveMember(familyID, userID int64) error {
	f, err := s.GetByID(familyID)
	if err != nil {
		return err
	}
	if f == nil {
		return sql.ErrNoRows
	}
	if f.CreatedBy == userID {
		return ErrCreator
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM family_members WHERE family_id = ? AND user_id = ?`,
		familyID, userID,
	); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE users SET family_id = NULL, updated_at = datetime('now') WHERE id = ?`,
		userID,
	); err != nil {
		return fmt.Errorf("clear member family: %w", err)
	}
	return tx.Commit()
}

// Delete removes the family, its memberships, and every member's family
// reference.
func (s *FamilyStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE users SET family_id = NULL, updated_at = datetime('now') WHERE family_id = ?`, id,
	); err != nil {
		return fmt.Errorf("clear member refs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM families WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete family: %w", err)
	}
	return tx.Commit()
}

// MemberDetail is a membership joined with the member's account.
type MemberDetail struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	JoinedAt  time.Time `json:"joined_at"`
	IsCreator bool      `json:"is_creator"`
}

// ListMembers returns member details ordered by join time, creator first.
func (s *FamilyStore) ListMembers(familyID int64) ([]MemberDetail, error) {
	rows, err := s.db.Query(
		`SELECT m.user_id, u.username, u.email, m.joined_at, (m.user_id = f.created_by)
		 FROM family_members m
		 JOIN users u ON u.id = m.user_id
		 JOIN families f ON f.id = m.family_id
		 WHERE m.family_id = ?
		 ORDER BY (m.user_id = f.created_by) DESC, m.joined_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []MemberDetail
	for rows.Next() {
		var m MemberDetail
		var isCreator int
		if err := rows.Scan(&m.UserID, &m.Username, &m.Email, &m.JoinedAt, &isCreator); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.IsCreator = isCreator != 0
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *FamilyStore) CountMembers(familyID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM family_members WHERE family_id = ?`, familyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

// SetFolder updates one of the drive-folder links. column must be one of
// docs_folder, videos_folder, photos_folder; callers validate.
func (s *FamilyStore) SetFolder(id int64, column, url string) error {
	switch column {
	case "docs_folder", "videos_folder", "photos_folder":
	default:
		return fmt.Errorf("invalid folder column %q", column)
	}
	_, err := s.db.Exec(
		`UPDATE families SET `+column+` = ?, updated_at = datetime('now') WHERE id = ?`,
		url, id,
	)
	if err != nil {
		return fmt.Errorf("set folder: %w", err)
	}
	return nil
}

// isUniqueViolation detects a SQLite unique-constraint failure without
// depending on driver error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
