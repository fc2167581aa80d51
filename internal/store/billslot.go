package store

import (
	"database/sql"
	"fmt"
	"time"

	"hearth/internal/model"
)

type BillStore struct {
	db *sql.DB
}

func NewBillStore(db *sql.DB) *BillStore {
	return &BillStore{db: db}
}

func scanBillSlot(scanner interface{ Scan(...any) error }) (*model.BillSlot, error) {
	var b model.BillSlot
	var paid int
	var paidDate sql.NullTime

	err := scanner.Scan(
		&b.ID, &b.FamilyID, &b.BillType, &b.Amount, &b.DueDate,
		&paid, &paidDate, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.IsPaid = paid != 0
	if paidDate.Valid {
		b.PaidDate = &paidDate.Time
	}
	return &b, nil
}

const billCols = `id, family_id, bill_type, amount, due_date, is_paid, paid_date, status, created_at, updated_at`

// ListByFamily returns the family's slots in the fixed slot order.
func (s *BillStore) ListByFamily(familyID int64) ([]model.BillSlot, error) {
	rows, err := s.db.Query(
		`SELECT `+billCols+` FROM bill_slots WHERE family_id = ?
		 ORDER BY CASE bill_type
		   WHEN 'electricity' THEN 0 WHEN 'cable' THEN 1 WHEN 'wifi' THEN 2 ELSE 3 END`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bill slots: %w", err)
	}
	defer rows.Close()

	var slots []model.BillSlot
	for rows.Next() {
		b, err := scanBillSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill slot: %w", err)
		}
		slots = append(slots, *b)
	}
	return slots, rows.Err()
}

func (s *BillStore) Get(familyID int64, billType string) (*model.BillSlot, error) {
	row := s.db.QueryRow(
		`SELECT `+billCols+` FROM bill_slots WHERE family_id = ? AND bill_type = ?`,
		familyID, billType,
	)
	b, err := scanBillSlot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bill slot: %w", err)
	}
	return b, nil
}

// Upsert writes one slot's data, creating the row on first use. The unique
// (family_id, bill_type) index keeps this to one row per slot.
func (s *BillStore) Upsert(familyID int64, billType string, amount float64, dueDate time.Time, isPaid bool, paidDate *time.Time, status string) (*model.BillSlot, error) {
	var pDate sql.NullTime
	if paidDate != nil {
		pDate = sql.NullTime{Time: *paidDate, Valid: true}
	}
	paid := 0
	if isPaid {
		paid = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO bill_slots (family_id, bill_type, amount, due_date, is_paid, paid_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (family_id, bill_type) DO UPDATE SET
		   amount = excluded.amount,
		   due_date = excluded.due_date,
		   is_paid = excluded.is_paid,
		   paid_date = excluded.paid_date,
		   status = excluded.status,
		   updated_at = datetime('now')`,
		familyID, billType, amount, dueDate, paid, pDate, status,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert bill slot: %w", err)
	}
	return s.Get(familyID, billType)
}

// UpdateStatus persists a derived status onto one slot. The sweep calls
// this per slot; slots are not updated transactionally as a group.
func (s *BillStore) UpdateStatus(id int64, status string) error {
	_, err := s.db.Exec(
		`UPDATE bill_slots SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update bill status: %w", err)
	}
	return nil
}
