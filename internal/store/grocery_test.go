package store

import (
	"database/sql"
	"errors"
	"testing"

	"hearth/internal/database"

	"hearth/internal/model"
)

func setupGroceryTestDB(t *testing.T) (*GroceryStore, *UserStore, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGroceryStore(db), NewUserStore(db), db
}

func TestCreateActiveReplacesPriorList(t *testing.T) {
	gs, us, _ := setupGroceryTestDB(t)
	u, _ := us.Create("alice", "alice@example.com", "hash")

	first, err := gs.CreateActive(u.ID, "weekly shop")
	if err != nil {
		t.Fatalf("create first list: %v", err)
	}
	second, err := gs.CreateActive(u.ID, "party supplies")
	if err != nil {
		t.Fatalf("create second list: %v", err)
	}

	if got, _ := gs.GetByID(first.ID); got != nil {
		t.Error("expected the first active list to be replaced")
	}
	active, _ := gs.GetActiveForUser(u.ID)
	if active == nil || active.ID != second.ID {
		t.Error("expected the second list to be the active one")
	}
}

func TestGroceryItems(t *testing.T) {
	gs, us, _ := setupGroceryTestDB(t)
	u, _ := us.Create("alice", "alice@example.com", "hash")
	l, _ := gs.CreateActive(u.ID, "weekly shop")

	item, err := gs.AddItem(l.ID, "Milk", 2, "liters")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.Quantity != 2 || item.Unit != "liters" {
		t.Errorf("item = %+v, want quantity 2 liters", item)
	}
	if item.Completed {
		t.Error("new item should start unchecked")
	}

	// Zero quantity defaults to one.
	bread, _ := gs.AddItem(l.ID, "Bread", 0, "")
	if bread.Quantity != 1 {
		t.Errorf("default quantity = %v, want 1", bread.Quantity)
	}

	if err := gs.ToggleItem(l.ID, item.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	items, _ := gs.ListItems(l.ID)
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if !items[0].Completed {
		t.Error("expected toggled item checked")
	}

	if err := gs.RemoveItem(l.ID, bread.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ = gs.ListItems(l.ID)
	if len(items) != 1 {
		t.Errorf("len after remove = %d, want 1", len(items))
	}
}

func TestGrocerySharing(t *testing.T) {
	gs, us, _ := setupGroceryTestDB(t)
	creator, _ := us.Create("alice", "alice@example.com", "hash")
	friend, _ := us.Create("bob", "bob@example.com", "hash")
	l, _ := gs.CreateActive(creator.ID, "shared shop")

	if err := gs.AddRecipient(l.ID, friend.ID); err != nil {
		t.Fatalf("add recipient: %v", err)
	}
	// Sharing twice is a no-op.
	if err := gs.AddRecipient(l.ID, friend.ID); err != nil {
		t.Fatalf("re-share: %v", err)
	}

	ok, _ := gs.CanAccess(l.ID, friend.ID)
	if !ok {
		t.Error("expected recipient access")
	}
	stranger, _ := us.Create("carol", "carol@example.com", "hash")
	ok, _ = gs.CanAccess(l.ID, stranger.ID)
	if ok {
		t.Error("expected no access for non-recipient")
	}

	shared, _ := gs.GetActiveForUser(friend.ID)
	if shared == nil || shared.ID != l.ID {
		t.Error("expected shared list visible to recipient")
	}
}

func TestGroceryCompleteCreatorOnly(t *testing.T) {
	gs, us, _ := setupGroceryTestDB(t)
	creator, _ := us.Create("alice", "alice@example.com", "hash")
	friend, _ := us.Create("bob", "bob@example.com", "hash")
	l, _ := gs.CreateActive(creator.ID, "shop")
	gs.AddRecipient(l.ID, friend.ID)

	if _, err := gs.Complete(l.ID, friend.ID); !errors.Is(err, ErrNotCreator) {
		t.Errorf("complete by recipient: err = %v, want ErrNotCreator", err)
	}

	done, err := gs.Complete(l.ID, creator.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != model.GroceryCompleted || done.CompletedAt == nil {
		t.Errorf("completed list = %+v", done)
	}

	if active, _ := gs.GetActiveForUser(creator.ID); active != nil {
		t.Error("expected no active list after completion")
	}
	completed, _ := gs.ListCompleted(friend.ID)
	if len(completed) != 1 {
		t.Errorf("completed visible to recipient = %d, want 1", len(completed))
	}
}

func TestGroceryCompletedRetention(t *testing.T) {
	gs, us, db := setupGroceryTestDB(t)
	creator, _ := us.Create("alice", "alice@example.com", "hash")
	l, _ := gs.CreateActive(creator.ID, "shop")
	gs.Complete(l.ID, creator.ID)

	_, err := db.Exec(`UPDATE grocery_lists SET completed_at = datetime('now', '-2 days') WHERE id = ?`, l.ID)
	if err != nil {
		t.Fatalf("backdate: %v", err)
	}

	lists, err := gs.ListCompleted(creator.ID)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(lists) != 0 {
		t.Errorf("expected stale completed list purged, got %d", len(lists))
	}
}

func TestGroceryDeleteActiveCreatorOnly(t *testing.T) {
	gs, us, _ := setupGroceryTestDB(t)
	creator, _ := us.Create("alice", "alice@example.com", "hash")
	friend, _ := us.Create("bob", "bob@example.com", "hash")
	l, _ := gs.CreateActive(creator.ID, "shop")
	gs.AddRecipient(l.ID, friend.ID)

	if err := gs.DeleteActive(l.ID, friend.ID); !errors.Is(err, ErrNotCreator) {
		t.Errorf("delete by recipient: err = %v, want ErrNotCreator", err)
	}
	if err := gs.DeleteActive(l.ID, creator.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := gs.GetByID(l.ID); got != nil {
		t.Error("expected list gone")
	}
}
