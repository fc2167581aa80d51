package bill

import (
	"testing"
	"time"

	"hearth/internal/model"
)

var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func slot(dueInDays int, paid bool) model.BillSlot {
	return model.BillSlot{
		DueDate: testToday.Add(time.Duration(dueInDays) * 24 * time.Hour),
		IsPaid:  paid,
	}
}

func TestDerivePaidWinsOverEverything(t *testing.T) {
	d := Derive(slot(-10, true), testToday)
	if d.Status != StatusPaid {
		t.Errorf("status = %q, want %q", d.Status, StatusPaid)
	}
}

func TestDeriveOverdue(t *testing.T) {
	d := Derive(slot(-1, false), testToday)
	if d.Status != StatusOverdue {
		t.Errorf("status = %q, want %q", d.Status, StatusOverdue)
	}
	if d.DaysUntilDue != -1 {
		t.Errorf("days = %d, want -1", d.DaysUntilDue)
	}
}

func TestDeriveDueSoonBoundaries(t *testing.T) {
	for _, days := range []int{0, 1, 2, 3} {
		d := Derive(slot(days, false), testToday)
		if d.Status != StatusDueSoon {
			t.Errorf("due in %d days: status = %q, want %q", days, d.Status, StatusDueSoon)
		}
	}

	d := Derive(slot(4, false), testToday)
	if d.Status != StatusPending {
		t.Errorf("due in 4 days: status = %q, want %q", d.Status, StatusPending)
	}
}

func TestDeriveCeilRounding(t *testing.T) {
	// Due 2.5 days out rounds up to 3, still inside the window.
	due := testToday.Add(60 * time.Hour)
	d := Derive(model.BillSlot{DueDate: due}, testToday)
	if d.DaysUntilDue != 3 {
		t.Errorf("days = %d, want 3", d.DaysUntilDue)
	}
	if d.Status != StatusDueSoon {
		t.Errorf("status = %q, want %q", d.Status, StatusDueSoon)
	}
}

func TestNeedsReminder(t *testing.T) {
	tests := []struct {
		name string
		d    Derived
		want bool
	}{
		{"due soon", Derived{Status: StatusDueSoon, DaysUntilDue: 2}, true},
		{"due today", Derived{Status: StatusDueSoon, DaysUntilDue: 0}, true},
		{"pending", Derived{Status: StatusPending, DaysUntilDue: 10}, false},
		{"overdue", Derived{Status: StatusOverdue, DaysUntilDue: -2}, false},
		{"paid", Derived{Status: StatusPaid, DaysUntilDue: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsReminder(tt.d); got != tt.want {
				t.Errorf("NeedsReminder = %v, want %v", got, tt.want)
			}
		})
	}
}
