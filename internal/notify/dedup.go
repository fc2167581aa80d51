package notify

import (
	"time"

	"hearth/internal/model"
)

// RearmWindow is how long after a user dismisses a bill reminder before an
// equivalent reminder may be recreated.
const RearmWindow = 24 * time.Hour

// ShouldCreate decides whether a new bill due-soon notification is
// warranted given the most recent notification for the same event tuple
// (user, bill type, due date, related bill), or nil if none exists.
//
// The window keys off dismissal, not creation: a notification that is
// never dismissed suppresses the event forever, however long it sits
// unread.
func ShouldCreate(latest *model.Notification, now time.Time) bool {
	if latest == nil {
		return true
	}
	if latest.DeletedAt == nil {
		return false
	}
	return now.Sub(*latest.DeletedAt) > RearmWindow
}
