package authtrust

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shareflow/authtrust/internal/rate"
)

// TwoFactorRateLimiter enforces the per-identity verification attempt
// budget. A denied decision never advances the in-memory counter, so the
// window is not extended by hammering a locked identity.
type TwoFactorRateLimiter struct {
	store rate.Store
}

// NewTwoFactorRateLimiter creates an in-process limiter. Suitable for a
// single instance; use [NewRedisTwoFactorRateLimiter] when the budget must
// hold across a fleet.
func NewTwoFactorRateLimiter(cfg RateLimitConfig) *TwoFactorRateLimiter {
	return newTwoFactorRateLimiter(cfg, nil)
}

func newTwoFactorRateLimiter(cfg RateLimitConfig, now func() time.Time) *TwoFactorRateLimiter {
	return &TwoFactorRateLimiter{
		store: rate.NewMemoryStore(rate.Config{
			MaxAttempts: cfg.MaxAttempts,
			Window:      cfg.Window,
		}, now),
	}
}

// NewRedisTwoFactorRateLimiter creates a limiter backed by Redis so the
// attempt budget is shared across instances.
func NewRedisTwoFactorRateLimiter(client redis.UniversalClient, cfg RateLimitConfig) *TwoFactorRateLimiter {
	prefix := cfg.RedisPrefix
	if prefix != "" {
		prefix += ":"
	}
	return &TwoFactorRateLimiter{
		store: rate.NewRedisStore(client, rate.Config{
			MaxAttempts: cfg.MaxAttempts,
			Window:      cfg.Window,
		}, prefix),
	}
}

// CheckAttempt records one verification attempt for identity and decides
// it. Remaining counts down from MaxAttempts-1 on the first attempt of a
// window to 0 on the last allowed one; further attempts are denied until
// the window resets. Errors wrap [ErrLimiterUnavailable].
func (l *TwoFactorRateLimiter) CheckAttempt(ctx context.Context, identity string) (AttemptDecision, error) {
	if l == nil || l.store == nil {
		return AttemptDecision{}, ErrEngineNotReady
	}
	return l.store.Check(ctx, identity)
}

// Reset clears the identity's window, typically after a successful
// verification.
func (l *TwoFactorRateLimiter) Reset(ctx context.Context, identity string) error {
	if l == nil || l.store == nil {
		return ErrEngineNotReady
	}
	return l.store.Reset(ctx, identity)
}

func (l *TwoFactorRateLimiter) sweep() int {
	if l == nil {
		return 0
	}
	if mem, ok := l.store.(*rate.MemoryStore); ok {
		return mem.Sweep()
	}
	return 0
}
