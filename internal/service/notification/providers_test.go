package notification

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

// Simulated delivery must always succeed so unconfigured environments never
// mark notifications fallido.
func TestSimulatedProviderDelivers(t *testing.T) {
	p := NewSimulatedProvider("whatsapp", zap.NewNop())

	sid, err := p.Send(context.Background(), "+51999888777", "hola")
	if err != nil {
		t.Fatalf("simulated send failed: %v", err)
	}
	if sid != "" {
		t.Fatalf("simulated send returned external id %q", sid)
	}
}

func TestSimulatedMailSenderDelivers(t *testing.T) {
	var m MailSender = NewSimulatedMailSender(zap.NewNop())

	if err := m.Send("ana@cobramax.pe", "Notificación de COBRA-MAX", "<p>hola</p>"); err != nil {
		t.Fatalf("simulated mail send failed: %v", err)
	}
}
