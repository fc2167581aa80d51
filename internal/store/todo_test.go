package store

import (
	"testing"
	"time"

	"hearth/internal/database"
	"hearth/internal/model"
)

func setupTodoTestDB(t *testing.T) (*TodoStore, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	user, err := us.Create("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewTodoStore(db), user
}

func TestTodoCreateAndList(t *testing.T) {
	ts, user := setupTodoTestDB(t)

	due := time.Now().UTC().AddDate(0, 0, 3)
	todo, err := ts.Create(user.ID, "renew passport", "high", &due)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if todo.Completed {
		t.Error("new todo should not be completed")
	}
	if todo.DueDate == nil {
		t.Fatal("expected due date set")
	}

	if _, err := ts.Create(user.ID, "water plants", "low", nil); err != nil {
		t.Fatalf("create second: %v", err)
	}

	todos, err := ts.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("len = %d, want 2", len(todos))
	}
}

func TestTodoUpdatePartial(t *testing.T) {
	ts, user := setupTodoTestDB(t)
	todo, _ := ts.Create(user.ID, "renew passport", "high", nil)

	completed := true
	got, err := ts.Update(todo.ID, TodoUpdate{Completed: &completed})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.Completed {
		t.Error("expected completed")
	}
	if got.Text != "renew passport" || got.Priority != "high" {
		t.Errorf("untouched fields changed: %q / %q", got.Text, got.Priority)
	}
}

func TestTodoUpdateMissing(t *testing.T) {
	ts, _ := setupTodoTestDB(t)
	text := "nope"
	got, err := ts.Update(999, TodoUpdate{Text: &text})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing todo")
	}
}

func TestTodoDelete(t *testing.T) {
	ts, user := setupTodoTestDB(t)
	todo, _ := ts.Create(user.ID, "renew passport", "high", nil)

	if err := ts.Delete(todo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := ts.GetByID(todo.ID); got != nil {
		t.Error("expected todo gone")
	}
}
