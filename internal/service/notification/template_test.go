package notification

import (
	"testing"

	"cobramax-service/internal/domain/notification"
	"cobramax-service/internal/domain/payment"

	"github.com/stretchr/testify/assert"
)

func TestPersonalize(t *testing.T) {
	data := TemplateData{
		Nombre:      "María Quispe",
		Deuda:       85.5,
		Zona:        "San Juan Norte",
		Cobrador:    "Carlos Rojas",
		FechaLimite: "día 10 de cada mes",
		MontoPagado: 85.5,
	}

	got := Personalize(
		"Hola {nombre}, tu deuda es S/ {deuda}. Tu cobrador en {zona} es {cobrador}. Vence el {fecha_limite}.",
		data,
	)
	assert.Equal(t,
		"Hola María Quispe, tu deuda es S/ 85.50. Tu cobrador en San Juan Norte es Carlos Rojas. Vence el día 10 de cada mes.",
		got,
	)
}

func TestPersonalizePaymentConfirmation(t *testing.T) {
	got := Personalize("Recibimos tu pago de S/ {monto_pagado}. ¡Gracias {nombre}!", TemplateData{
		Nombre:      "Luis",
		MontoPagado: 50,
	})
	assert.Equal(t, "Recibimos tu pago de S/ 50.00. ¡Gracias Luis!", got)
}

func TestPersonalizeMissingFields(t *testing.T) {
	got := Personalize("Zona: {zona}, cobrador: {cobrador}", TemplateData{})
	assert.Equal(t, "Zona: , cobrador: ", got)
}

func TestPersonalizeNoPlaceholders(t *testing.T) {
	content := "Mensaje sin variables"
	assert.Equal(t, content, Personalize(content, TemplateData{Nombre: "Ana"}))
}

func TestEventNotificationType(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{kind: payment.EventAlert, want: notification.TypeDueDate},
		{kind: payment.EventCutoff, want: notification.TypeGeneral},
		{kind: payment.EventReconnect, want: notification.TypeConfirmation},
		{kind: "otro", want: notification.TypeGeneral},
	}

	for _, tt := range tests {
		if got := eventNotificationType(tt.kind); got != tt.want {
			t.Fatalf("eventNotificationType(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
