package infra

import (
	"context"
	"sync"
	"time"

	"guru-gateway/middleware/admission/domain"
)

// MemoryWindowStore é uma implementação em memória de janela fixa por
// (fingerprint, classe), com limpeza periódica e varredura oportunista quando
// o mapa cresce demais.
//
// Correto apenas dentro de um processo; para deployments horizontais use
// RedisWindowStore.
type MemoryWindowStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	cleanupEvery time.Duration
	// maxEntries dispara uma varredura inline no próximo Incr quando o mapa
	// passa desse tamanho.
	maxEntries int
}

type windowEntry struct {
	count   int64
	start   time.Time
	window  time.Duration
	resetAt time.Time
}

type WindowOption func(*MemoryWindowStore)

func WithWindowCleanupEvery(d time.Duration) WindowOption {
	return func(s *MemoryWindowStore) { s.cleanupEvery = d }
}

func WithWindowMaxEntries(n int) WindowOption {
	return func(s *MemoryWindowStore) { s.maxEntries = n }
}

func NewMemoryWindowStore(opts ...WindowOption) *MemoryWindowStore {
	s := &MemoryWindowStore{
		entries:      make(map[string]*windowEntry),
		cleanupEvery: 2 * time.Minute,
		maxEntries:   10000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Incr implementa domain.WindowStore.
//
// Janela expirada reinicia atomicamente (count=1, novo start) no próximo
// acesso. Nunca retorna erro.
func (s *MemoryWindowStore) Incr(_ context.Context, key domain.Key, class string, window time.Duration) (int64, time.Time, error) {
	now := time.Now()
	k := class + ":" + string(key)

	s.mu.Lock()
	ent, ok := s.entries[k]
	if !ok || now.After(ent.resetAt) || now.Equal(ent.resetAt) {
		ent = &windowEntry{
			count:   1,
			start:   now,
			window:  window,
			resetAt: now.Add(window),
		}
		s.entries[k] = ent
		needSweep := s.maxEntries > 0 && len(s.entries) > s.maxEntries
		count, resetAt := ent.count, ent.resetAt
		s.mu.Unlock()
		if needSweep {
			s.Cleanup()
		}
		return count, resetAt, nil
	}
	ent.count++
	count, resetAt := ent.count, ent.resetAt
	s.mu.Unlock()
	return count, resetAt, nil
}

// Cleanup remove janelas já expiradas.
//
// A varredura é incremental: tira um snapshot das chaves e deleta em
// rechecagem chave a chave, para não segurar o lock principal durante a
// iteração inteira.
func (s *MemoryWindowStore) Cleanup() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	now := time.Now()
	for _, k := range keys {
		s.mu.Lock()
		if ent, ok := s.entries[k]; ok && now.After(ent.resetAt) {
			delete(s.entries, k)
		}
		s.mu.Unlock()
	}
}

func (s *MemoryWindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor inicia uma goroutine que limpa janelas expiradas
// periodicamente. Pare cancelando o contexto.
func (s *MemoryWindowStore) StartJanitor(ctx DoneContext) {
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

// DoneContext é o mínimo necessário para aceitar context.Context sem importar
// context nos janitors. (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
