package bill

import (
	"math"
	"time"

	"hearth/internal/model"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusDueSoon Status = "due-soon"
	StatusOverdue Status = "overdue"
)

// dueSoonDays is the window, in days, before the due date during which an
// unpaid bill counts as due-soon.
const dueSoonDays = 3

// Derived is a slot's lifecycle state computed from due date and payment
// flag, independent of whatever status string is stored.
type Derived struct {
	Status       Status
	DaysUntilDue int
}

// Derive computes a bill slot's status as of today. Payment wins over
// everything; otherwise the due-date distance decides.
func Derive(slot model.BillSlot, today time.Time) Derived {
	days := int(math.Ceil(slot.DueDate.Sub(today).Hours() / 24))

	d := Derived{DaysUntilDue: days}
	switch {
	case slot.IsPaid:
		d.Status = StatusPaid
	case days < 0:
		d.Status = StatusOverdue
	case days <= dueSoonDays:
		d.Status = StatusDueSoon
	default:
		d.Status = StatusPending
	}
	return d
}

// NeedsReminder reports whether the slot should generate a due-soon
// notification: unpaid and due within the window, but not already past due.
func NeedsReminder(d Derived) bool {
	return d.Status == StatusDueSoon && d.DaysUntilDue >= 0
}
