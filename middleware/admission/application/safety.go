package application

import (
	"strings"

	"guru-gateway/middleware/admission/domain"
)

// FallbackText é a mensagem genérica que o gateway entrega quando o filtro
// devolve unsafe sem redação aproveitável.
const FallbackText = "The stars are quiet on this matter. Please try asking in a different way."

const (
	defaultDisclaimer = "Remember: this reading is for reflection only. If you are struggling, please reach out to someone you trust or to a professional."
	defaultTrailer    = "Take a deep breath. You are exactly where you need to be."
)

// Filter é o motor de regras de segurança sobre o texto GERADO.
//
// Stateless e puro. As categorias são avaliadas em ordem fixa e a PRIMEIRA
// que disparar vence (só a redação dela é aplicada, mesmo que outras também
// casassem).
//
// O estado emocional do usuário modula o desfecho: com o usuário abalado a
// política é suavizar, não silenciar — o texto redigido sai como seguro, com
// um aviso anexado.
type Filter struct {
	Rules      []domain.Rule
	Disclaimer string
	Trailer    string
}

func NewFilter(rules []domain.Rule) *Filter {
	return &Filter{
		Rules:      rules,
		Disclaimer: defaultDisclaimer,
		Trailer:    defaultTrailer,
	}
}

// Evaluate roda todas as regras contra o texto.
//
// Entrada inválida (vazia) retorna Safe=false sem texto sanitizado; o
// chamador precisa fornecer o próprio fallback.
func (f *Filter) Evaluate(text string, state domain.EmotionalState) domain.Verdict {
	if strings.TrimSpace(text) == "" {
		return domain.Verdict{Safe: false}
	}

	for _, r := range f.Rules {
		if !r.Matches(text) {
			continue
		}
		redacted := r.Redact(text)
		if state == domain.StateDistressed {
			return domain.Verdict{
				Safe:      true,
				Category:  r.Category(),
				Sanitized: redacted + "\n\n" + f.Disclaimer,
			}
		}
		return domain.Verdict{
			Safe:      false,
			Category:  r.Category(),
			Sanitized: redacted,
		}
	}

	if state == domain.StateDistressed {
		return domain.Verdict{Safe: true, Sanitized: text + "\n\n" + f.Trailer}
	}
	return domain.Verdict{Safe: true, Sanitized: text}
}

// Listas do classificador emocional, avaliadas sobre o texto de ENTRADA do
// usuário (não sobre a resposta gerada).
var (
	distressedTerms = []string{
		"hopeless", "desperate", "terrified", "panic", "can't take",
		"cannot take", "give up", "end it", "unbearable", "suicidal",
	}
	concernedTerms = []string{
		"worried", "anxious", "afraid", "scared", "nervous", "stressed",
		"uneasy",
	}
	calmTerms = []string{
		"calm", "peaceful", "grateful", "thankful", "content", "serene",
	}
)

// ClassifyEmotion é o classificador por keywords do estado emocional.
// Primeira lista que casar vence; sem match é neutral.
func ClassifyEmotion(input string) domain.EmotionalState {
	lower := strings.ToLower(input)
	for _, t := range distressedTerms {
		if strings.Contains(lower, t) {
			return domain.StateDistressed
		}
	}
	for _, t := range concernedTerms {
		if strings.Contains(lower, t) {
			return domain.StateConcerned
		}
	}
	for _, t := range calmTerms {
		if strings.Contains(lower, t) {
			return domain.StateCalm
		}
	}
	return domain.StateNeutral
}
