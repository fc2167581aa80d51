package store

import (
	"testing"
	"time"

	"hearth/internal/database"
	"hearth/internal/model"
)

func setupTaskTestDB(t *testing.T) (*TaskStore, int64, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	f, err := NewFamilyStore(db).Create("the smiths", u.ID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return NewTaskStore(db), f.ID, u.ID
}

func TestDueDateForBucket(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		bucket string
		want   time.Time
	}{
		{model.DueToday, today},
		{model.DueTomorrow, today.AddDate(0, 0, 1)},
		{model.DueThisWeek, today.AddDate(0, 0, 7)},
		{model.DueThisMonth, today.AddDate(0, 1, 0)},
	}
	for _, tt := range tests {
		if got := DueDateForBucket(tt.bucket, today); !got.Equal(tt.want) {
			t.Errorf("DueDateForBucket(%q) = %v, want %v", tt.bucket, got, tt.want)
		}
	}
}

func TestTaskCreateAndList(t *testing.T) {
	ts, familyID, userID := setupTaskTestDB(t)

	later, err := ts.Create(familyID, "Clean garage", userID, model.DueThisWeek, "low")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sooner, err := ts.Create(familyID, "Take out trash", userID, model.DueToday, "high")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tasks, err := ts.ListByFamily(familyID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2", len(tasks))
	}
	// Soonest due date first.
	if tasks[0].ID != sooner.ID || tasks[1].ID != later.ID {
		t.Errorf("order = [%d %d], want [%d %d]", tasks[0].ID, tasks[1].ID, sooner.ID, later.ID)
	}
}

func TestTaskUpdateRederivesDueDate(t *testing.T) {
	ts, familyID, userID := setupTaskTestDB(t)
	task, _ := ts.Create(familyID, "Plan trip", userID, model.DueToday, "medium")

	updated, err := ts.Update(task.ID, "Plan trip", model.DueThisMonth, "medium")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DueBucket != model.DueThisMonth {
		t.Errorf("bucket = %q, want %q", updated.DueBucket, model.DueThisMonth)
	}
	if !updated.DueDate.After(task.DueDate) {
		t.Errorf("due date %v should move out past %v", updated.DueDate, task.DueDate)
	}

	// Same bucket keeps the existing date.
	again, err := ts.Update(task.ID, "Plan trip properly", model.DueThisMonth, "high")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !again.DueDate.Equal(updated.DueDate) {
		t.Errorf("due date changed without a bucket change: %v vs %v", again.DueDate, updated.DueDate)
	}
	if again.Title != "Plan trip properly" || again.Priority != "high" {
		t.Errorf("updated task = %+v", again)
	}
}

func TestTaskUpdateMissing(t *testing.T) {
	ts, _, _ := setupTaskTestDB(t)
	task, err := ts.Update(9999, "ghost", model.DueToday, "low")
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if task != nil {
		t.Errorf("expected nil for unknown task, got %+v", task)
	}
}
