package infra

import (
	"sync"
	"time"

	"guru-gateway/middleware/admission/domain"
)

// historyCap limita o histórico por fingerprint às últimas entradas.
const historyCap = 20

// MemoryHistoryStore guarda o histórico recente de mensagens por fingerprint
// para o detector de bot. Cada append trunca para as últimas 20 entradas.
type MemoryHistoryStore struct {
	mu           sync.Mutex
	entries      map[domain.Key][]domain.Message
	retention    time.Duration
	cleanupEvery time.Duration
}

type HistoryOption func(*MemoryHistoryStore)

func WithHistoryRetention(d time.Duration) HistoryOption {
	return func(s *MemoryHistoryStore) { s.retention = d }
}

func WithHistoryCleanupEvery(d time.Duration) HistoryOption {
	return func(s *MemoryHistoryStore) { s.cleanupEvery = d }
}

func NewMemoryHistoryStore(opts ...HistoryOption) *MemoryHistoryStore {
	s := &MemoryHistoryStore{
		entries:      make(map[domain.Key][]domain.Message),
		retention:    1 * time.Hour,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe implementa domain.HistoryStore: registra a mensagem (sempre) e
// retorna uma cópia das entradas anteriores a ela.
func (s *MemoryHistoryStore) Observe(key domain.Key, m domain.Message) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.entries[key]
	prior := make([]domain.Message, len(cur))
	copy(prior, cur)

	cur = append(cur, m)
	if len(cur) > historyCap {
		cur = cur[len(cur)-historyCap:]
	}
	s.entries[key] = cur
	return prior
}

// Sweep implementa domain.HistoryStore: remove entradas mais antigas que o
// horizonte e descarta fingerprints sem entradas restantes.
func (s *MemoryHistoryStore) Sweep(horizon time.Duration) {
	s.mu.Lock()
	keys := make([]domain.Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	cutoff := time.Now().Add(-horizon)
	for _, k := range keys {
		s.mu.Lock()
		cur, ok := s.entries[k]
		if !ok {
			s.mu.Unlock()
			continue
		}
		// entradas são mais-recente-por-último; acha o primeiro índice vivo
		i := 0
		for i < len(cur) && cur[i].At.Before(cutoff) {
			i++
		}
		switch {
		case i == len(cur):
			delete(s.entries, k)
		case i > 0:
			s.entries[k] = append([]domain.Message(nil), cur[i:]...)
		}
		s.mu.Unlock()
	}
}

// StartJanitor varre o histórico no horizonte de retenção configurado.
// Pare cancelando o contexto.
func (s *MemoryHistoryStore) StartJanitor(ctx DoneContext) {
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
				s.Sweep(s.retention)
			}
		}
	}()
}
