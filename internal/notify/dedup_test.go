package notify

import (
	"testing"
	"time"

	"hearth/internal/model"
)

func TestShouldCreateNoPrior(t *testing.T) {
	if !ShouldCreate(nil, time.Now()) {
		t.Error("expected create with no prior notification")
	}
}

func TestShouldCreateLiveNotificationSuppresses(t *testing.T) {
	now := time.Now()
	prior := &model.Notification{CreatedAt: now.Add(-48 * time.Hour)}

	// Undismissed, however old: never repeat.
	if ShouldCreate(prior, now) {
		t.Error("expected suppression while prior notification is undismissed")
	}
}

func TestShouldCreateRearmAfterDismissal(t *testing.T) {
	now := time.Now()

	dismissed25h := now.Add(-25 * time.Hour)
	prior := &model.Notification{DeletedAt: &dismissed25h}
	if !ShouldCreate(prior, now) {
		t.Error("expected create 25h after dismissal")
	}

	dismissed23h := now.Add(-23 * time.Hour)
	prior = &model.Notification{DeletedAt: &dismissed23h}
	if ShouldCreate(prior, now) {
		t.Error("expected suppression 23h after dismissal")
	}
}

func TestShouldCreateDismissalExactlyAtWindow(t *testing.T) {
	now := time.Now()
	dismissed := now.Add(-RearmWindow)
	prior := &model.Notification{DeletedAt: &dismissed}

	// Exactly 24h is not yet past the window.
	if ShouldCreate(prior, now) {
		t.Error("expected suppression exactly at the re-arm boundary")
	}
}
