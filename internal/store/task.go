package store

import (
	"database/sql"
	"fmt"
	"time"

	"hearth/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.FamilyTask, error) {
	var t model.FamilyTask
	err := scanner.Scan(
		&t.ID, &t.FamilyID, &t.Title, &t.CreatedBy, &t.DueBucket,
		&t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const taskCols = `id, family_id, title, created_by, due_bucket, priority, due_date, created_at, updated_at`

// DueDateForBucket maps a symbolic due bucket onto a concrete date
// relative to today.
func DueDateForBucket(bucket string, today time.Time) time.Time {
	switch bucket {
	case model.DueTomorrow:
		return today.AddDate(0, 0, 1)
	case model.DueThisWeek:
		return today.AddDate(0, 0, 7)
	case model.DueThisMonth:
		return today.AddDate(0, 1, 0)
	default: // Today
		return today
	}
}

func (s *TaskStore) Create(familyID int64, title string, createdBy int64, bucket, priority string) (*model.FamilyTask, error) {
	dueDate := DueDateForBucket(bucket, time.Now().UTC())

	result, err := s.db.Exec(
		`INSERT INTO family_tasks (family_id, title, created_by, due_bucket, priority, due_date) VALUES (?, ?, ?, ?, ?, ?)`,
		familyID, title, createdBy, bucket, priority, dueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.FamilyTask, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM family_tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByFamily(familyID int64) ([]model.FamilyTask, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM family_tasks WHERE family_id = ? ORDER BY due_date ASC, created_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.FamilyTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update rewrites the mutable fields. Changing the bucket re-derives the
// due date from today.
func (s *TaskStore) Update(id int64, title, bucket, priority string) (*model.FamilyTask, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	dueDate := existing.DueDate
	if bucket != existing.DueBucket {
		dueDate = DueDateForBucket(bucket, time.Now().UTC())
	}

	_, err = s.db.Exec(
		`UPDATE family_tasks SET title = ?, due_bucket = ?, priority = ?, due_date = ?, updated_at = datetime('now') WHERE id = ?`,
		title, bucket, priority, dueDate, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM family_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
