package store

import (
	"database/sql"
	"testing"
	"time"

	"hearth/internal/database"
	"hearth/internal/model"
)

func setupNotificationTestDB(t *testing.T) (*NotificationStore, int64, *sql.DB) {
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
	return NewNotificationStore(db), u.ID, db
}

func TestNotificationCreateDefaults(t *testing.T) {
	ns, userID, _ := setupNotificationTestDB(t)

	n, err := ns.Create(NewNotification{
		UserID:  userID,
		Type:    model.NotifMessage,
		Title:   "New Message",
		Message: "bob sent you a message",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.Priority != "medium" {
		t.Errorf("priority = %q, want medium", n.Priority)
	}
	if n.IsRead {
		t.Error("new notification should start unread")
	}
	if n.BillType != "" || n.DueDate != nil || n.DeletedAt != nil {
		t.Errorf("unexpected bill fields on plain notification: %+v", n)
	}
}

func TestLatestBillEvent(t *testing.T) {
	ns, userID, _ := setupNotificationTestDB(t)
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	slotID := int64(7)

	if got, _ := ns.LatestBillEvent(userID, "electricity", due, slotID); got != nil {
		t.Error("expected no prior event")
	}

	_, err := ns.Create(NewNotification{
		UserID:    userID,
		Type:      model.NotifBill,
		Title:     "Bill Due Soon",
		Message:   "electricity due in 3 days",
		Priority:  "high",
		RelatedID: &slotID,
		BillType:  "electricity",
		DueDate:   &due,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := ns.LatestBillEvent(userID, "electricity", due, slotID)
	if err != nil {
		t.Fatalf("latest bill event: %v", err)
	}
	if got == nil {
		t.Fatal("expected a matching event")
	}

	// A different due date means the slot was rescheduled, so no match.
	moved := due.AddDate(0, 0, 5)
	if got, _ := ns.LatestBillEvent(userID, "electricity", moved, slotID); got != nil {
		t.Error("expected no match for a rescheduled due date")
	}
	if got, _ := ns.LatestBillEvent(userID, "water", due, slotID); got != nil {
		t.Error("expected no match for a different bill type")
	}
}

func TestDismissKeepsRow(t *testing.T) {
	ns, userID, _ := setupNotificationTestDB(t)
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	slotID := int64(7)

	n, _ := ns.Create(NewNotification{
		UserID: userID, Type: model.NotifBill, Title: "Bill Due Soon",
		Message: "rent due", RelatedID: &slotID, BillType: "rent", DueDate: &due,
	})

	if err := ns.Dismiss(n.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	list, _ := ns.List(userID, 0, false)
	if len(list) != 0 {
		t.Errorf("dismissed notification still listed: %d rows", len(list))
	}

	got, _ := ns.LatestBillEvent(userID, "rent", due, slotID)
	if got == nil {
		t.Fatal("expected the dismissed row to remain visible to LatestBillEvent")
	}
	if got.DeletedAt == nil {
		t.Error("expected DeletedAt set after dismissal")
	}
}

func TestMarkAllRead(t *testing.T) {
	ns, userID, _ := setupNotificationTestDB(t)
	for i := 0; i < 3; i++ {
		ns.Create(NewNotification{UserID: userID, Type: model.NotifTask, Title: "t", Message: "m"})
	}
	n, _ := ns.Create(NewNotification{UserID: userID, Type: model.NotifTask, Title: "t", Message: "m"})
	ns.MarkRead(n.ID)

	count, err := ns.MarkAllRead(userID)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 3 {
		t.Errorf("marked = %d, want 3", count)
	}
	unread, _ := ns.CountUnread(userID)
	if unread != 0 {
		t.Errorf("unread after mark all = %d, want 0", unread)
	}
}

func TestPurgeExpired(t *testing.T) {
	ns, userID, db := setupNotificationTestDB(t)

	stale, _ := ns.Create(NewNotification{UserID: userID, Type: model.NotifTask, Title: "old", Message: "m"})
	fresh, _ := ns.Create(NewNotification{UserID: userID, Type: model.NotifTask, Title: "new", Message: "m"})

	// A row created long ago but dismissed just now must survive the
	// purge, or a dismissal could re-arm early.
	dismissed, _ := ns.Create(NewNotification{UserID: userID, Type: model.NotifTask, Title: "dismissed", Message: "m"})
	ns.Dismiss(dismissed.ID)

	_, err := db.Exec(
		`UPDATE notifications SET created_at = datetime('now', '-2 days') WHERE id IN (?, ?)`,
		stale.ID, dismissed.ID,
	)
	if err != nil {
		t.Fatalf("backdate: %v", err)
	}

	// List runs the purge before returning rows.
	list, err := ns.List(userID, 0, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != fresh.ID {
		t.Errorf("list after purge = %+v, want only the fresh row", list)
	}

	if got, _ := ns.GetByID(stale.ID); got != nil {
		t.Error("expected the stale row hard-deleted")
	}
	if got, _ := ns.GetByID(dismissed.ID); got == nil {
		t.Error("expected the recently dismissed row to survive the purge")
	}
}
