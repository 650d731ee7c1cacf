package payment

import (
	"database/sql"
	"testing"
)

func TestCanValidate(t *testing.T) {
	p := &Payment{Status: StatusPending}
	if !p.CanValidate() {
		t.Fatalf("pending payment should be validatable")
	}

	p.Status = StatusCompleted
	if p.CanValidate() {
		t.Fatalf("completed payment must not validate twice")
	}

	p = &Payment{
		Status:      StatusPending,
		ValidatedBy: sql.NullInt64{Int64: 7, Valid: true},
	}
	if p.CanValidate() {
		t.Fatalf("already validated payment must not validate again")
	}
}

func TestCanEdit(t *testing.T) {
	for status, want := range map[string]bool{
		StatusPending:   true,
		StatusRejected:  true,
		StatusCompleted: false,
		StatusReversed:  false,
	} {
		p := &Payment{Status: status}
		if got := p.CanEdit(); got != want {
			t.Fatalf("CanEdit() with status %s = %v, want %v", status, got, want)
		}
	}
}
