package authz

import "testing"

func TestAllow(t *testing.T) {
	tests := []struct {
		role   string
		action string
		want   bool
	}{
		{RoleCustomer, ActionChatSend, true},
		{RoleCustomer, ActionPaymentValidate, false},
		{RoleCollector, ActionPaymentCreate, true},
		{RoleCollector, ActionPaymentRevert, false},
		{RoleOffice, ActionPaymentValidate, true},
		{RoleOffice, ActionTicketManage, true},
		{RoleAdmin, ActionPaymentRevert, true},
		{RoleAdmin, ActionChatSend, false},
		{"", ActionChatSend, false},
	}

	for _, tt := range tests {
		if got := Allow(tt.role, tt.action); got != tt.want {
			t.Fatalf("Allow(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestAllowUnknownAction(t *testing.T) {
	if Allow(RoleAdmin, "nonsense.action") {
		t.Fatal("unknown actions must be denied")
	}
}
