package store

import (
	"testing"

	"hearth/internal/database"
	"hearth/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, *model.User) {
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
	return NewPushStore(db), user
}

func TestPushUpsertRefreshesKeys(t *testing.T) {
	ps, user := setupPushTestDB(t)

	sub, err := ps.Upsert(user.ID, "https://push.example/ep1", "p256-old", "auth-old", "phone")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	again, err := ps.Upsert(user.ID, "https://push.example/ep1", "p256-new", "auth-new", "phone")
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if again.ID != sub.ID {
		t.Errorf("re-upsert created a new row: %d vs %d", again.ID, sub.ID)
	}
	if again.P256dhKey != "p256-new" || again.AuthKey != "auth-new" {
		t.Errorf("keys not refreshed: %q / %q", again.P256dhKey, again.AuthKey)
	}

	subs, err := ps.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("len = %d, want 1", len(subs))
	}
}

func TestPushDeleteForUser(t *testing.T) {
	ps, user := setupPushTestDB(t)

	if _, err := ps.Upsert(user.ID, "https://push.example/ep1", "p", "a", "phone"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := ps.Upsert(user.ID, "https://push.example/ep2", "p", "a", "laptop"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := ps.DeleteForUser(user.ID, "https://push.example/ep1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	subs, _ := ps.ListByUser(user.ID)
	if len(subs) != 1 || subs[0].Endpoint != "https://push.example/ep2" {
		t.Errorf("unexpected subscriptions after delete: %+v", subs)
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	ps, user := setupPushTestDB(t)

	if _, err := ps.Upsert(user.ID, "https://push.example/gone", "p", "a", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := ps.DeleteByEndpoint("https://push.example/gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	subs, _ := ps.ListByUser(user.ID)
	if len(subs) != 0 {
		t.Errorf("expected no subscriptions, got %d", len(subs))
	}
}
