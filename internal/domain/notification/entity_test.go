package notification

import (
	"database/sql"
	"testing"
	"time"
)

func TestCanSend(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	n := &Notification{Status: StatusPending}
	if !n.CanSend(now) {
		t.Fatalf("pending notification without schedule should be sendable")
	}

	n.ScheduledFor = sql.NullTime{Time: now.Add(time.Hour), Valid: true}
	if n.CanSend(now) {
		t.Fatalf("future schedule must hold the notification back")
	}

	n.ScheduledFor = sql.NullTime{Time: now.Add(-time.Hour), Valid: true}
	if !n.CanSend(now) {
		t.Fatalf("elapsed schedule should release the notification")
	}

	for _, status := range []string{StatusSent, StatusFailed, StatusRead} {
		n := &Notification{Status: status}
		if n.CanSend(now) {
			t.Fatalf("status %s must not be sendable", status)
		}
	}
}
