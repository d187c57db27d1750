package rate

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps attempt counters in Redis using INCR with a first-hit
// EXPIRE, so the window TTL is set exactly once per window and the counter
// is replaced automatically when the key expires.
type RedisStore struct {
	redis  redis.UniversalClient
	cfg    Config
	prefix string
}

// NewRedisStore creates a Redis-backed attempt store. prefix namespaces the
// keys so multiple engines can share one Redis.
func NewRedisStore(client redis.UniversalClient, cfg Config, prefix string) *RedisStore {
	return &RedisStore{redis: client, cfg: cfg, prefix: prefix}
}

func (s *RedisStore) key(identity string) string {
	return s.prefix + "att:" + identity
}

// Check implements [Store]. The counter advances even past the cap; the TTL
// is never extended after the first hit, so the deny result and the window
// reset match fixed-window semantics exactly.
func (s *RedisStore) Check(ctx context.Context, identity string) (Decision, error) {
	key := s.key(identity)

	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.cfg.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return Decision{Allowed: true, Remaining: s.cfg.MaxAttempts - 1, RetryAfter: s.cfg.Window}, nil
	}

	retryAfter := s.cfg.Window
	if ttl, err := s.redis.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
		retryAfter = ttl
	}

	if count > int64(s.cfg.MaxAttempts) {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	remaining := s.cfg.MaxAttempts - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Remaining: remaining, RetryAfter: retryAfter}, nil
}

// Reset implements [Store].
func (s *RedisStore) Reset(ctx context.Context, identity string) error {
	if err := s.redis.Del(ctx, s.key(identity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}
