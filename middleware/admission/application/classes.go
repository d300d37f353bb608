package application

import (
	"strings"
	"time"

	"guru-gateway/middleware/admission/domain"
)

// Resolver resolve o path da requisição para uma classe de endpoint:
// match exato primeiro, depois o prefixo mais longo, depois a default.
type Resolver struct {
	classes  []domain.Class
	fallback domain.Class
}

func NewResolver(classes []domain.Class, fallback domain.Class) *Resolver {
	return &Resolver{classes: classes, fallback: fallback}
}

func (r *Resolver) Resolve(path string) domain.Class {
	for _, c := range r.classes {
		for _, p := range c.Paths {
			if path == p {
				return c
			}
		}
	}

	var best *domain.Class
	bestLen := -1
	for i := range r.classes {
		for _, p := range r.classes[i].Prefixes {
			if strings.HasPrefix(path, p) && len(p) > bestLen {
				best = &r.classes[i]
				bestLen = len(p)
			}
		}
	}
	if best != nil {
		return *best
	}
	return r.fallback
}

// DefaultClasses retorna a tabela padrão por classe de endpoint.
// Valores concretos são decisão de deploy (sobrescrevíveis via arquivo de
// limites), não invariante arquitetural.
func DefaultClasses() []domain.Class {
	return []domain.Class{
		{
			Name:    "magic-link",
			Paths:   []string{"/api/auth/magic-link"},
			Window:  15 * time.Minute,
			Max:     5,
			Message: "Too many sign-in attempts. Please try again later.",
		},
		{
			Name:        "ai-chat",
			Prefixes:    []string{"/api/chat"},
			Window:      15 * time.Minute,
			Max:         50,
			Message:     "The Guru needs a short rest. Please slow down.",
			Guidance:    true,
			InspectBody: true,
		},
		{
			Name:     "report",
			Prefixes: []string{"/api/report"},
			Window:   60 * time.Minute,
			Max:      5,
			Message:  "Report generation is limited. Please try again later.",
			Guidance: true,
		},
		{
			Name:     "upload",
			Prefixes: []string{"/api/upload"},
			Window:   60 * time.Minute,
			Max:      20,
			Message:  "Too many uploads. Please try again later.",
		},
	}
}

// DefaultFallback é a classe pega-tudo.
func DefaultFallback() domain.Class {
	return domain.Class{
		Name:    "default",
		Window:  15 * time.Minute,
		Max:     100,
		Message: "Too many requests. Please slow down.",
	}
}
