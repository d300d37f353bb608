package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"guru-gateway/middleware/admission/domain"
)

type RedisEventStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas em chaves de série temporal / por key.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisEventOption func(*RedisEventStore)

func WithEventPrefix(prefix string) RedisEventOption {
	return func(s *RedisEventStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithEventTTL(d time.Duration) RedisEventOption {
	return func(s *RedisEventStore) { s.ttl = d }
}

func WithEventBucket(bucket string) RedisEventOption {
	return func(s *RedisEventStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithEventTrackKeysRedis(track bool) RedisEventOption {
	return func(s *RedisEventStore) { s.trackKeys = track }
}

func NewRedisEventStore(rdb *redis.Client, opts ...RedisEventOption) *RedisEventStore {
	s := &RedisEventStore{
		rdb:    rdb,
		prefix: "admission:events",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisEventStore) Record(ctx context.Context, ev domain.SecurityEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := string(ev.Kind)
	if field == "" {
		field = string(domain.EventAllowed)
	}

	totalKey := s.prefix + ":total"

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, totalKey, field, 1)

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if ev.Class != "" {
		pipe.HIncrBy(ctx, s.prefix+":class", ev.Class+":"+field, 1)
	}

	if s.trackKeys {
		k := strings.TrimSpace(string(ev.Key))
		if k != "" {
			keyKey := s.prefix + ":key:" + k
			pipe.HIncrBy(ctx, keyKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
