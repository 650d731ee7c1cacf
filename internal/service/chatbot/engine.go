// internal/service/chatbot/engine.go
package chatbot

import (
	"strings"

	"cobramax-service/internal/domain/chatbot"
	"cobramax-service/internal/pkg/textmatch"
)

// matchThreshold is the minimum similarity for a fuzzy FAQ hit.
const matchThreshold = 0.6

var greetings = []string{
	"hola", "buenos dias", "buenas tardes", "buenas noches",
	"buen dia", "saludos", "hey", "ola",
}

var farewells = []string{
	"adios", "chau", "chao", "hasta luego", "nos vemos",
	"gracias", "muchas gracias", "bye",
}

var agentRequests = []string{
	"agente", "humano", "asesor", "operador", "hablar con alguien",
	"hablar con una persona", "atencion personal",
}

var contactRequests = []string{
	"telefono", "contacto", "oficina", "horario", "direccion",
	"donde estan", "donde quedan",
}

// categoryOrder fixes the precedence when a message mentions keywords from
// more than one category.
var categoryOrder = []string{
	chatbot.CategoryPayments,
	chatbot.CategoryTechnical,
	chatbot.CategoryService,
	chatbot.CategoryAccount,
}

// categoryKeywords routes messages with no direct FAQ hit towards the FAQs of
// a category.
var categoryKeywords = map[string][]string{
	chatbot.CategoryPayments:  {"pago", "pagar", "pague", "factura", "deuda", "debo", "monto", "cuota", "recibo", "yape", "plin", "deposito", "transferencia"},
	chatbot.CategoryTechnical: {"internet", "lento", "lenta", "senal", "router", "modem", "wifi", "conexion", "cable", "intermitente", "cortes", "velocidad"},
	chatbot.CategoryService:   {"plan", "megas", "cambio", "contratar", "instalacion", "mudanza", "traslado", "upgrade"},
	chatbot.CategoryAccount:   {"cuenta", "estado", "suspendido", "suspension", "corte", "reconexion", "reactivar", "moroso"},
}

const (
	greetingReply = "¡Hola! Soy el asistente virtual de COBRA-MAX. Puedo ayudarte con consultas sobre pagos, tu servicio de internet o el estado de tu cuenta. ¿En qué puedo ayudarte?"
	farewellReply = "¡Gracias por escribirnos! Si necesitas algo más, aquí estaré. Que tengas un buen día."
	escalateReply = "Entendido, derivaré tu consulta a uno de nuestros agentes. Te contactaremos a la brevedad."
	contactReply  = "Puedes comunicarte con nuestra oficina de lunes a sábado de 9:00 a 18:00. También puedes escribirnos por este chat o crear un ticket de soporte."
	fallbackReply = "Lo siento, no encontré una respuesta para tu consulta. ¿Deseas crear un ticket de soporte para que un agente te atienda?"
)

// MatchResult is the outcome of routing one message against the FAQ base.
type MatchResult struct {
	Reply         string
	FAQ           *chatbot.FAQ // set when a FAQ answered the message
	SuggestTicket bool
	Escalate      bool // the customer asked for a human agent
	Matched       bool // false means the local router gave up
}

// Engine routes messages against a FAQ snapshot without touching storage. The
// caller loads the active FAQs and applies counter updates for hits.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// normalize lowercases, strips accents and keeps only letters, digits and
// spaces so "¿Cómo PAGO?" and "como pago" compare equal.
func normalize(s string) string {
	s = accentReplacer.Replace(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsPhrase(msg string, phrases []string) bool {
	for _, p := range phrases {
		if msg == p || strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// Route answers a message from the local knowledge base. Precedence: greeting,
// farewell, agent request, contact info, fuzzy FAQ match, category keywords,
// fallback. A fallback result has Matched=false so the caller can try the AI
// backend.
func (e *Engine) Route(message string, faqs []chatbot.FAQ) MatchResult {
	msg := normalize(message)
	if msg == "" {
		return MatchResult{Reply: fallbackReply, SuggestTicket: true}
	}

	if containsPhrase(msg, greetings) {
		return MatchResult{Reply: greetingReply, Matched: true}
	}
	if containsPhrase(msg, farewells) {
		return MatchResult{Reply: farewellReply, Matched: true}
	}
	if containsPhrase(msg, agentRequests) {
		return MatchResult{Reply: escalateReply, Escalate: true, Matched: true}
	}
	if containsPhrase(msg, contactRequests) {
		return MatchResult{Reply: contactReply, Matched: true}
	}

	if best := bestFAQ(msg, faqs); best != nil {
		return MatchResult{Reply: best.Answer, FAQ: best, Matched: true}
	}

	if faq := categoryFAQ(msg, faqs); faq != nil {
		return MatchResult{Reply: faq.Answer, FAQ: faq, Matched: true}
	}

	return MatchResult{Reply: fallbackReply, SuggestTicket: true}
}

// bestFAQ fuzzy matches the message against every question and keyword,
// returning the highest scoring FAQ above the threshold.
func bestFAQ(msg string, faqs []chatbot.FAQ) *chatbot.FAQ {
	var best *chatbot.FAQ
	bestScore := matchThreshold

	for i := range faqs {
		f := &faqs[i]
		score := textmatch.Ratio(msg, normalize(f.Question))
		for _, kw := range f.Keywords {
			if s := textmatch.Ratio(msg, normalize(kw)); s > score {
				score = s
			}
			// a keyword contained whole in the message is a strong hit
			if kw := normalize(kw); kw != "" && strings.Contains(" "+msg+" ", " "+kw+" ") {
				score = 1.0
			}
		}
		if score > bestScore {
			bestScore = score
			best = f
		}
	}
	return best
}

// categoryFAQ falls back to the most consulted FAQ of the category whose
// keywords appear in the message.
func categoryFAQ(msg string, faqs []chatbot.FAQ) *chatbot.FAQ {
	words := strings.Fields(msg)
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}

	for _, category := range categoryOrder {
		matched := false
		for _, kw := range categoryKeywords[category] {
			if _, ok := wordSet[kw]; ok {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		var top *chatbot.FAQ
		for i := range faqs {
			f := &faqs[i]
			if f.Category != category {
				continue
			}
			if top == nil || f.TimesAsked > top.TimesAsked {
				top = f
			}
		}
		if top != nil {
			return top
		}
	}
	return nil
}
