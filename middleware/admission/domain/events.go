package domain

import (
	"context"
	"time"
)

// EventKind classifica um evento de segurança do gateway.
type EventKind string

const (
	EventAllowed     EventKind = "allowed"
	EventRateLimited EventKind = "rate_limited"
	EventCooldown    EventKind = "cooldown"
	EventBotDetected EventKind = "bot_detected"
	EventSanitized   EventKind = "sanitized"
	EventSaturated   EventKind = "saturated"
)

// SecurityEvent registra uma decisão do gateway para observabilidade.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings
// genéricas. Cuidado com cardinalidade ao habilitar rastreio por Key em uma
// base como Redis.
type SecurityEvent struct {
	Key   Key
	Kind  EventKind
	Class string

	Method string
	Path   string

	At time.Time
}

// EventStore é a estratégia de persistência para eventos de segurança.
//
// Implementações podem armazenar em Redis, memória, etc. O middleware trata
// erro como best-effort (não derruba request).
type EventStore interface {
	Record(ctx context.Context, ev SecurityEvent) error
}
