package infra

import (
	"context"
	"sync"
	"time"

	"guru-gateway/middleware/admission/domain"
)

// MemoryCooldownStore guarda a marca de cooldown por fingerprint em memória.
type MemoryCooldownStore struct {
	mu           sync.Mutex
	until        map[domain.Key]time.Time
	cleanupEvery time.Duration
}

type CooldownOption func(*MemoryCooldownStore)

func WithCooldownCleanupEvery(d time.Duration) CooldownOption {
	return func(s *MemoryCooldownStore) { s.cleanupEvery = d }
}

func NewMemoryCooldownStore(opts ...CooldownOption) *MemoryCooldownStore {
	s := &MemoryCooldownStore{
		until:        make(map[domain.Key]time.Time),
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Remaining implementa domain.CooldownStore. Retorna 0 quando não há cooldown
// ativo.
func (s *MemoryCooldownStore) Remaining(_ context.Context, key domain.Key) (time.Duration, error) {
	s.mu.Lock()
	until, ok := s.until[key]
	s.mu.Unlock()
	if !ok {
		return 0, nil
	}
	rem := time.Until(until)
	if rem <= 0 {
		return 0, nil
	}
	return rem, nil
}

// Set sobrescreve a expiração; cooldowns não acumulam.
func (s *MemoryCooldownStore) Set(_ context.Context, key domain.Key, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		delete(s.until, key)
		return nil
	}
	s.until[key] = time.Now().Add(d)
	return nil
}

// Cleanup remove marcas já expiradas (snapshot + rechecagem por chave, sem
// segurar o lock na iteração inteira).
func (s *MemoryCooldownStore) Cleanup() {
	s.mu.Lock()
	keys := make([]domain.Key, 0, len(s.until))
	for k := range s.until {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	now := time.Now()
	for _, k := range keys {
		s.mu.Lock()
		if until, ok := s.until[k]; ok && now.After(until) {
			delete(s.until, k)
		}
		s.mu.Unlock()
	}
}

func (s *MemoryCooldownStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.until)
}

// StartJanitor inicia a limpeza periódica. Pare cancelando o contexto.
func (s *MemoryCooldownStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
