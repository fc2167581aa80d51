package store

import (
	"testing"
	"time"

	"hearth/internal/database"
)

func setupMedicineTestDB(t *testing.T) (*MedicineStore, int64) {
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
	return NewMedicineStore(db), u.ID
}

func TestMedicineCreate(t *testing.T) {
	ms, userID := setupMedicineTestDB(t)

	m, err := ms.Create(userID, "Ibuprofen", 30, 2, "09:00")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Quantity != 30 || m.UsePerDay != 2 || m.RemindAt != "09:00" {
		t.Errorf("medicine = %+v", m)
	}
	if m.DateAdded.IsZero() {
		t.Error("date_added should default to now")
	}
}

func TestMedicineUpdateQuantityResetsClock(t *testing.T) {
	ms, userID := setupMedicineTestDB(t)
	m, _ := ms.Create(userID, "Ibuprofen", 30, 2, "")

	// Start the projection a week in the past.
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	if _, err := ms.db.Exec(`UPDATE medicines SET date_added = ? WHERE id = ?`, weekAgo, m.ID); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	// A name-only update leaves the clock alone.
	newName := "Ibuprofen 200mg"
	renamed, err := ms.Update(m.ID, MedicineUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if renamed.DateAdded.After(weekAgo.Add(time.Minute)) {
		t.Errorf("date_added moved on a name-only update: %v", renamed.DateAdded)
	}

	// A restock resets it.
	qty := 60.0
	restocked, err := ms.Update(m.ID, MedicineUpdate{Quantity: &qty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if restocked.Quantity != 60 {
		t.Errorf("quantity = %v, want 60", restocked.Quantity)
	}
	if !restocked.DateAdded.After(weekAgo.Add(time.Hour)) {
		t.Errorf("date_added not reset on restock: %v", restocked.DateAdded)
	}
}

func TestMedicineDelete(t *testing.T) {
	ms, userID := setupMedicineTestDB(t)
	m, _ := ms.Create(userID, "Ibuprofen", 30, 2, "")

	if err := ms.Delete(m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := ms.GetByID(m.ID); got != nil {
		t.Error("expected medicine gone")
	}
}
