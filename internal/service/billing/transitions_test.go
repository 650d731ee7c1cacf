package billing

import (
	"regexp"
	"testing"

	"cobramax-service/internal/config"
	"cobramax-service/internal/domain/customer"
	"cobramax-service/internal/domain/payment"
)

var testBillingCfg = config.BillingConfig{
	AlertDayFrom: 8,
	AlertDayTo:   10,
	CutoffDay:    10,
}

func TestEvaluateCycle(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		debt       float64
		day        int
		wantStatus string
		wantEvent  string
	}{
		{
			name:   "no debt, nothing happens",
			status: customer.StatusActive, debt: 0, day: 9,
		},
		{
			name:   "before the alert window",
			status: customer.StatusActive, debt: 50, day: 5,
		},
		{
			name:   "day 8 opens the alert window",
			status: customer.StatusActive, debt: 50, day: 8,
			wantStatus: customer.StatusDefaulter, wantEvent: payment.EventAlert,
		},
		{
			name:   "day 9 inside the alert window",
			status: customer.StatusActive, debt: 50, day: 9,
			wantStatus: customer.StatusDefaulter, wantEvent: payment.EventAlert,
		},
		{
			name:   "already moroso, alert does not repeat",
			status: customer.StatusDefaulter, debt: 50, day: 9,
		},
		{
			name:   "day 11 cuts an active account",
			status: customer.StatusActive, debt: 50, day: 11,
			wantStatus: customer.StatusSuspended, wantEvent: payment.EventCutoff,
		},
		{
			name:   "day 11 cuts a moroso account",
			status: customer.StatusDefaulter, debt: 50, day: 11,
			wantStatus: customer.StatusSuspended, wantEvent: payment.EventCutoff,
		},
		{
			name:   "already suspendido, cut does not repeat",
			status: customer.StatusSuspended, debt: 50, day: 11,
		},
		{
			name:   "inactivo accounts are never touched",
			status: customer.StatusInactive, debt: 50, day: 11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := EvaluateCycle(tt.status, tt.debt, tt.day, testBillingCfg)
			if tt.wantStatus == "" {
				if tr != nil {
					t.Fatalf("expected no transition, got %+v", tr)
				}
				return
			}
			if tr == nil {
				t.Fatalf("expected transition to %s, got none", tt.wantStatus)
			}
			if tr.NewStatus != tt.wantStatus {
				t.Fatalf("status = %s, want %s", tr.NewStatus, tt.wantStatus)
			}
			if tr.Event != tt.wantEvent {
				t.Fatalf("event = %s, want %s", tr.Event, tt.wantEvent)
			}
		})
	}
}

func TestEvaluateReconnection(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		debt      float64
		reconnect bool
	}{
		{name: "suspendido settles", status: customer.StatusSuspended, debt: 0, reconnect: true},
		{name: "moroso settles", status: customer.StatusDefaulter, debt: 0, reconnect: true},
		{name: "overpayment settles", status: customer.StatusSuspended, debt: -10, reconnect: true},
		{name: "debt remains", status: customer.StatusSuspended, debt: 5, reconnect: false},
		{name: "already activo", status: customer.StatusActive, debt: 0, reconnect: false},
		{name: "inactivo stays manual", status: customer.StatusInactive, debt: 0, reconnect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := EvaluateReconnection(tt.status, tt.debt)
			if tt.reconnect {
				if tr == nil {
					t.Fatalf("expected reconnection")
				}
				if tr.NewStatus != customer.StatusActive || tr.Event != payment.EventReconnect {
					t.Fatalf("unexpected transition %+v", tr)
				}
				return
			}
			if tr != nil {
				t.Fatalf("expected no transition, got %+v", tr)
			}
		})
	}
}

func TestGenerateTransactionCode(t *testing.T) {
	pattern := regexp.MustCompile(`^PAGO-[0-9A-F]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateTransactionCode()
		if !pattern.MatchString(code) {
			t.Fatalf("code %q does not match PAGO-XXXXXXXX", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
}
