package infra

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"guru-gateway/middleware/admission/domain"
)

// RedisCooldownStore guarda a marca de cooldown no Redis (SET com TTL),
// compartilhada entre instâncias do gateway.
type RedisCooldownStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisCooldownOption func(*RedisCooldownStore)

func WithCooldownPrefix(prefix string) RedisCooldownOption {
	return func(s *RedisCooldownStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func NewRedisCooldownStore(rdb *redis.Client, opts ...RedisCooldownOption) *RedisCooldownStore {
	s := &RedisCooldownStore{
		rdb:    rdb,
		prefix: "admission:cooldown",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisCooldownStore) key(key domain.Key) string {
	return s.prefix + ":" + string(key)
}

// Remaining implementa domain.CooldownStore via PTTL.
func (s *RedisCooldownStore) Remaining(ctx context.Context, key domain.Key) (time.Duration, error) {
	ttl, err := s.rdb.PTTL(ctx, s.key(key)).Result()
	if err != nil {
		return 0, err
	}
	// PTTL negativo = chave inexistente ou sem expiração
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

// Set sobrescreve a expiração; d <= 0 remove a marca.
func (s *RedisCooldownStore) Set(ctx context.Context, key domain.Key, d time.Duration) error {
	if d <= 0 {
		return s.rdb.Del(ctx, s.key(key)).Err()
	}
	return s.rdb.Set(ctx, s.key(key), "1", d).Err()
}
