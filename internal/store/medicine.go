package store

import (
	"database/sql"
	"fmt"
	"time"

	"hearth/internal/model"
)

type MedicineStore struct {
	db *sql.DB
}

func NewMedicineStore(db *sql.DB) *MedicineStore {
	return &MedicineStore{db: db}
}

func scanMedicine(scanner interface{ Scan(...any) error }) (*model.Medicine, error) {
	var m model.Medicine
	err := scanner.Scan(
		&m.ID, &m.UserID, &m.Name, &m.Quantity, &m.UsePerDay,
		&m.DateAdded, &m.RemindAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const medicineCols = `id, user_id, name, quantity, use_per_day, date_added, remind_at, created_at`

func (s *MedicineStore) Create(userID int64, name string, quantity, usePerDay float64, remindAt string) (*model.Medicine, error) {
	result, err := s.db.Exec(
		`INSERT INTO medicines (user_id, name, quantity, use_per_day, remind_at) VALUES (?, ?, ?, ?, ?)`,
		userID, name, quantity, usePerDay, remindAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert medicine: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MedicineStore) GetByID(id int64) (*model.Medicine, error) {
	row := s.db.QueryRow(`SELECT `+medicineCols+` FROM medicines WHERE id = ?`, id)
	m, err := scanMedicine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

func (s *MedicineStore) ListByUser(userID int64) ([]model.Medicine, error) {
	rows, err := s.db.Query(
		`SELECT `+medicineCols+` FROM medicines WHERE user_id = ? ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	var medicines []model.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		medicines = append(medicines, *m)
	}
	return medicines, rows.Err()
}

// MedicineUpdate carries the optional fields of a medicine update; nil
// fields are left unchanged.
type MedicineUpdate struct {
	Name      *string
	Quantity  *float64
	UsePerDay *float64
	RemindAt  *string
}

// Update applies the partial update. A quantity change restarts the
// projection clock by resetting date_added to now.
func (s *MedicineStore) Update(id int64, upd MedicineUpdate) (*model.Medicine, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	name := existing.Name
	quantity := existing.Quantity
	usePerDay := existing.UsePerDay
	remindAt := existing.RemindAt
	dateAdded := existing.DateAdded

	if upd.Name != nil {
		name = *upd.Name
	}
	if upd.Quantity != nil {
		quantity = *upd.Quantity
		dateAdded = time.Now().UTC()
	}
	if upd.UsePerDay != nil {
		usePerDay = *upd.UsePerDay
	}
	if upd.RemindAt != nil {
		remindAt = *upd.RemindAt
	}

	_, err = s.db.Exec(
		`UPDATE medicines SET name = ?, quantity = ?, use_per_day = ?, remind_at = ?, date_added = ? WHERE id = ?`,
		name, quantity, usePerDay, remindAt, dateAdded, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update medicine: %w", err)
	}
	return s.GetByID(id)
}

func (s *MedicineStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	return nil
}
