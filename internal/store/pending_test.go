package store

import (
	"database/sql"
	"testing"

	"hearth/internal/database"
)

func setupPendingTestDB(t *testing.T) (*PendingStore, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPendingStore(db), db
}

func TestPendingCreateGeneratesCode(t *testing.T) {
	ps, _ := setupPendingTestDB(t)

	pv, err := ps.Create("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create pending: %v", err)
	}

	if len(pv.Code) != 6 {
		t.Errorf("code length = %d, want 6", len(pv.Code))
	}
	for _, c := range pv.Code {
		if c < '0' || c > '9' {
			t.Errorf("code %q contains non-digit %q", pv.Code, c)
		}
	}
	if pv.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", pv.Attempts)
	}
}

func TestPendingCreateReplacesPrior(t *testing.T) {
	ps, _ := setupPendingTestDB(t)

	first, _ := ps.Create("alice", "alice@example.com", "hash")
	second, err := ps.Create("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID == second.ID {
		t.Error("expected a fresh record on re-sign-up")
	}

	got, err := ps.GetByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != second.ID {
		t.Error("expected only the latest pending record to survive")
	}
}

func TestPendingIncrementAttempts(t *testing.T) {
	ps, _ := setupPendingTestDB(t)

	pv, _ := ps.Create("alice", "alice@example.com", "hash")
	for want := 1; want <= 3; want++ {
		got, err := ps.IncrementAttempts(pv.ID)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if got != want {
			t.Errorf("attempts = %d, want %d", got, want)
		}
	}
}

func TestPendingExpiryPurgedOnLookup(t *testing.T) {
	ps, db := setupPendingTestDB(t)

	pv, _ := ps.Create("alice", "alice@example.com", "hash")
	_, err := db.Exec(`UPDATE pending_verifications SET expires_at = datetime('now', '-1 minute') WHERE id = ?`, pv.ID)
	if err != nil {
		t.Fatalf("backdate expiry: %v", err)
	}

	got, err := ps.GetByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got != nil {
		t.Error("expected expired record to be invisible")
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM pending_verifications`).Scan(&count)
	if count != 0 {
		t.Errorf("expected lazy purge to delete the row, found %d", count)
	}
}
