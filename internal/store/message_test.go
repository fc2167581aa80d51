package store

import (
	"testing"

	"hearth/internal/database"
	"hearth/internal/model"
)

func setupMessageTestDB(t *testing.T) (*MessageStore, *model.User, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	alice, err := us.Create("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := us.Create("bob", "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	return NewMessageStore(db), alice, bob
}

func TestMessageCreateResolvesNames(t *testing.T) {
	ms, alice, bob := setupMessageTestDB(t)

	m, err := ms.Create(alice.ID, bob.ID, "pick up milk please")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Status != model.MessageSent {
		t.Errorf("status = %q, want Sent", m.Status)
	}
	if m.SenderName != "alice" || m.RecipientName != "bob" {
		t.Errorf("names = %q -> %q", m.SenderName, m.RecipientName)
	}
}

func TestMessageListForUser(t *testing.T) {
	ms, alice, bob := setupMessageTestDB(t)

	sent, _ := ms.Create(alice.ID, bob.ID, "hello")
	if _, err := ms.db.Exec(`UPDATE messages SET created_at = datetime('now', '-1 hour') WHERE id = ?`, sent.ID); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	received, _ := ms.Create(bob.ID, alice.ID, "hi back")

	msgs, err := ms.ListForUser(alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2 (sent and received)", len(msgs))
	}
	// Newest first.
	if msgs[0].ID != received.ID || msgs[1].ID != sent.ID {
		t.Errorf("order = [%d %d], want [%d %d]", msgs[0].ID, msgs[1].ID, received.ID, sent.ID)
	}
}

func TestMessageStatusLifecycle(t *testing.T) {
	ms, alice, bob := setupMessageTestDB(t)
	m, _ := ms.Create(alice.ID, bob.ID, "hello")

	if err := ms.UpdateStatus(m.ID, model.MessageRead); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	got, _ := ms.GetByID(m.ID)
	if got.Status != model.MessageRead {
		t.Errorf("status = %q, want Read", got.Status)
	}

	if err := ms.Delete(m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := ms.GetByID(m.ID); got != nil {
		t.Error("expected message gone")
	}
}
