package infra

import (
	"context"
	"sync"

	"guru-gateway/middleware/admission/domain"
)

// MemoryEventStore é uma implementação simples em memória do EventStore.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryEventStore struct {
	mu      sync.Mutex
	byKind  map[domain.EventKind]int64
	byClass map[string]int64
	byKey   map[string]int64

	trackKeys bool
}

type MemoryEventOption func(*MemoryEventStore)

func WithEventTrackKeys(track bool) MemoryEventOption {
	return func(s *MemoryEventStore) { s.trackKeys = track }
}

func NewMemoryEventStore(opts ...MemoryEventOption) *MemoryEventStore {
	s := &MemoryEventStore{
		byKind:  make(map[domain.EventKind]int64),
		byClass: make(map[string]int64),
		byKey:   make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryEventStore) Record(_ context.Context, ev domain.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byKind[ev.Kind]++
	if ev.Class != "" {
		s.byClass[ev.Class+":"+string(ev.Kind)]++
	}
	if s.trackKeys && ev.Key != "" {
		s.byKey[string(ev.Key)+":"+string(ev.Kind)]++
	}
	return nil
}

func (s *MemoryEventStore) ByKind() map[domain.EventKind]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.EventKind]int64, len(s.byKind))
	for k, v := range s.byKind {
		out[k] = v
	}
	return out
}

func (s *MemoryEventStore) ByClass() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.byClass))
	for k, v := range s.byClass {
		out[k] = v
	}
	return out
}

func (s *MemoryEventStore) ByKey() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
