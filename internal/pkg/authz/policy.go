// internal/pkg/authz/policy.go
package authz

// Roles mirror the tipo_usuario values stored on each user.
const (
	RoleAdmin     = "admin"
	RoleOffice    = "oficina"
	RoleCollector = "cobrador"
	RoleCustomer  = "cliente"
)

// Actions guarded by the policy. Handlers never check role names directly,
// they ask Allow(role, action).
const (
	ActionChatSend        = "chatbot.send"
	ActionChatHistory     = "chatbot.history"
	ActionChatTicket      = "chatbot.ticket"
	ActionChatSearch      = "chatbot.search"
	ActionAccountView     = "account.view"
	ActionPaymentCreate   = "payment.create"
	ActionPaymentValidate = "payment.validate"
	ActionPaymentRevert   = "payment.revert"
	ActionTicketManage    = "ticket.manage"
	ActionNotifyDispatch  = "notification.dispatch"
	ActionEventsView      = "events.view"
	ActionFAQManage       = "faq.manage"
)

var policy = map[string]map[string]bool{
	ActionChatSend:        roles(RoleCustomer),
	ActionChatHistory:     roles(RoleCustomer),
	ActionChatTicket:      roles(RoleCustomer),
	ActionChatSearch:      roles(RoleCustomer),
	ActionAccountView:     roles(RoleCustomer),
	ActionPaymentCreate:   roles(RoleCollector, RoleOffice, RoleAdmin),
	ActionPaymentValidate: roles(RoleOffice, RoleAdmin),
	ActionPaymentRevert:   roles(RoleAdmin),
	ActionTicketManage:    roles(RoleOffice, RoleAdmin),
	ActionNotifyDispatch:  roles(RoleOffice, RoleAdmin),
	ActionEventsView:      roles(RoleCollector, RoleOffice, RoleAdmin),
	ActionFAQManage:       roles(RoleOffice, RoleAdmin),
}

// Allow reports whether the given role may perform the action. Unknown
// actions are always denied.
func Allow(role, action string) bool {
	allowed, ok := policy[action]
	if !ok {
		return false
	}
	return allowed[role]
}

func roles(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
