package infra

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"guru-gateway/middleware/admission/domain"
)

// RedisWindowStore é a janela fixa compartilhada entre instâncias do gateway
// (INCR + PEXPIRE por chave). É o caminho de upgrade para deployments
// horizontais: o contador é atômico no Redis, então duas instâncias nunca
// perdem incrementos.
type RedisWindowStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisWindowOption func(*RedisWindowStore)

func WithWindowPrefix(prefix string) RedisWindowOption {
	return func(s *RedisWindowStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func NewRedisWindowStore(rdb *redis.Client, opts ...RedisWindowOption) *RedisWindowStore {
	s := &RedisWindowStore{
		rdb:    rdb,
		prefix: "admission:window",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Incr implementa domain.WindowStore.
func (s *RedisWindowStore) Incr(ctx context.Context, key domain.Key, class string, window time.Duration) (int64, time.Time, error) {
	k := s.prefix + ":" + class + ":" + string(key)
	now := time.Now()

	pipe := s.rdb.TxPipeline()
	counter := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}

	count := counter.Val()
	remaining := ttl.Val()
	if count == 1 || remaining <= 0 {
		// primeira requisição da janela (ou chave órfã sem TTL): arma o reset
		if err := s.rdb.PExpire(ctx, k, window).Err(); err != nil {
			return count, now.Add(window), err
		}
		remaining = window
	}
	return count, now.Add(remaining), nil
}
