package store

import (
	"testing"

	"hearth/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreateIsVerified(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !u.IsVerified {
		t.Error("expected created user to be verified")
	}
	if u.FamilyID != nil {
		t.Error("expected no family on a fresh user")
	}

	got, err := us.GetByUsername("alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Errorf("get by username = %+v, want id %d", got, u.ID)
	}
}

func TestUserGetMissing(t *testing.T) {
	us := setupUserTestDB(t)

	if got, _ := us.GetByID(999); got != nil {
		t.Error("expected nil for missing id")
	}
	if got, _ := us.GetByUsername("nobody"); got != nil {
		t.Error("expected nil for missing username")
	}
}

func TestVerifiedTaken(t *testing.T) {
	us := setupUserTestDB(t)
	if _, err := us.Create("alice", "alice@example.com", "hash"); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		username, email, want string
	}{
		{"alice", "other@example.com", "username"},
		{"other", "alice@example.com", "email"},
		{"bob", "bob@example.com", ""},
	}
	for _, tt := range tests {
		got, err := us.VerifiedTaken(tt.username, tt.email)
		if err != nil {
			t.Fatalf("VerifiedTaken(%q, %q): %v", tt.username, tt.email, err)
		}
		if got != tt.want {
			t.Errorf("VerifiedTaken(%q, %q) = %q, want %q", tt.username, tt.email, got, tt.want)
		}
	}
}

func TestSetAndClearFamily(t *testing.T) {
	us := setupUserTestDB(t)
	fs := NewFamilyStore(us.db)

	u, _ := us.Create("alice", "alice@example.com", "hash")
	fam, err := fs.Create("The Does", u.ID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}

	got, _ := us.GetByID(u.ID)
	if got.FamilyID == nil || *got.FamilyID != fam.ID {
		t.Fatalf("family id = %v, want %d", got.FamilyID, fam.ID)
	}

	if err := us.ClearFamilyForMembers(fam.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = us.GetByID(u.ID)
	if got.FamilyID != nil {
		t.Error("expected family cleared")
	}
}
