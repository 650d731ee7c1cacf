package chatbot

import (
	"testing"

	"cobramax-service/internal/domain/chatbot"

	"github.com/lib/pq"
)

func testFAQs() []chatbot.FAQ {
	return []chatbot.FAQ{
		{
			ID:         1,
			Question:   "¿Cómo puedo pagar mi recibo?",
			Answer:     "Puedes pagar por Yape, Plin o transferencia bancaria.",
			Category:   chatbot.CategoryPayments,
			Keywords:   pq.StringArray{"pagar", "recibo", "yape"},
			TimesAsked: 40,
		},
		{
			ID:         2,
			Question:   "¿Por qué mi internet está lento?",
			Answer:     "Reinicia tu router y verifica los cables.",
			Category:   chatbot.CategoryTechnical,
			Keywords:   pq.StringArray{"internet", "lento", "router"},
			TimesAsked: 25,
		},
		{
			ID:         3,
			Question:   "¿Cuándo vence mi factura?",
			Answer:     "Tu factura vence según el día de pago asignado a tu cuenta.",
			Category:   chatbot.CategoryPayments,
			Keywords:   pq.StringArray{"vencimiento", "factura"},
			TimesAsked: 10,
		},
	}
}

func TestRouteGreeting(t *testing.T) {
	e := NewEngine()

	for _, msg := range []string{"hola", "Hola!", "buenos días", "hey, que tal"} {
		res := e.Route(msg, testFAQs())
		if !res.Matched {
			t.Fatalf("Route(%q) not matched", msg)
		}
		if res.Reply != greetingReply {
			t.Fatalf("Route(%q) = %q, want greeting", msg, res.Reply)
		}
		if res.FAQ != nil {
			t.Fatalf("Route(%q) attributed a FAQ to a greeting", msg)
		}
	}
}

// A greeting that also mentions a payment word still resolves as a greeting;
// the greeting check runs before any FAQ matching.
func TestRouteGreetingWinsOverKeywords(t *testing.T) {
	e := NewEngine()

	res := e.Route("hola quiero pagar", testFAQs())
	if res.Reply != greetingReply {
		t.Fatalf("got %q, want greeting reply", res.Reply)
	}
}

func TestRouteFarewell(t *testing.T) {
	e := NewEngine()

	res := e.Route("muchas gracias", testFAQs())
	if !res.Matched || res.Reply != farewellReply {
		t.Fatalf("got %q, want farewell reply", res.Reply)
	}
}

func TestRouteAgentRequest(t *testing.T) {
	e := NewEngine()

	for _, msg := range []string{"quiero hablar con un agente", "necesito un asesor humano", "hablar con una persona"} {
		res := e.Route(msg, testFAQs())
		if !res.Escalate {
			t.Fatalf("Route(%q) did not escalate", msg)
		}
		if !res.Matched || res.Reply != escalateReply {
			t.Fatalf("Route(%q) = %q, want escalate reply", msg, res.Reply)
		}
	}
}

func TestRouteContactInfo(t *testing.T) {
	e := NewEngine()

	res := e.Route("cual es el telefono de la oficina", testFAQs())
	if !res.Matched || res.Reply != contactReply {
		t.Fatalf("got %q, want contact reply", res.Reply)
	}
	if res.Escalate {
		t.Fatalf("contact info request must not escalate")
	}
}

func TestRouteFAQByKeyword(t *testing.T) {
	e := NewEngine()

	res := e.Route("quiero pagar con yape", testFAQs())
	if res.FAQ == nil || res.FAQ.ID != 1 {
		t.Fatalf("expected FAQ 1, got %+v", res.FAQ)
	}
	if res.Reply != "Puedes pagar por Yape, Plin o transferencia bancaria." {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
}

func TestRouteFAQByQuestionSimilarity(t *testing.T) {
	e := NewEngine()

	res := e.Route("como puedo pagar mi recibo", testFAQs())
	if res.FAQ == nil || res.FAQ.ID != 1 {
		t.Fatalf("expected FAQ 1 by similarity, got %+v", res.FAQ)
	}
}

func TestRouteCategoryFallback(t *testing.T) {
	e := NewEngine()

	// "deuda" is a payments category keyword but matches no FAQ directly;
	// routing lands on the most consulted payments FAQ.
	res := e.Route("tengo una deuda", testFAQs())
	if res.FAQ == nil || res.FAQ.ID != 1 {
		t.Fatalf("expected top payments FAQ, got %+v", res.FAQ)
	}
}

func TestRouteFallback(t *testing.T) {
	e := NewEngine()

	res := e.Route("quiero adoptar un gato", testFAQs())
	if res.Matched {
		t.Fatalf("off-topic message should not match")
	}
	if !res.SuggestTicket {
		t.Fatalf("fallback should suggest a ticket")
	}
}

func TestRouteEmptyMessage(t *testing.T) {
	e := NewEngine()

	res := e.Route("   ", testFAQs())
	if res.Matched {
		t.Fatalf("blank message should not match")
	}
}

func TestRouteNoFAQs(t *testing.T) {
	e := NewEngine()

	res := e.Route("problema con mi cuenta", nil)
	if res.Matched {
		t.Fatalf("no FAQ base, nothing to match")
	}
	if !res.SuggestTicket {
		t.Fatalf("expected ticket suggestion")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "¿Cómo PAGO?", want: "como pago"},
		{in: "  señal   débil  ", want: "senal debil"},
		{in: "hola!!!", want: "hola"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Fatalf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
