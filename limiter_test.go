package authtrust

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryLimiterDecisionSequence(t *testing.T) {
	clock := newFakeClock()
	limiter := newTwoFactorRateLimiter(RateLimitConfig{MaxAttempts: 5, Window: 15 * time.Minute}, clock.Now)
	ctx := context.Background()

	for want := 4; want >= 0; want-- {
		dec, err := limiter.CheckAttempt(ctx, "alice")
		if err != nil {
			t.Fatalf("CheckAttempt failed: %v", err)
		}
		if !dec.Allowed || dec.Remaining != want {
			t.Fatalf("expected allowed with remaining %d, got %+v", want, dec)
		}
	}

	dec, err := limiter.CheckAttempt(ctx, "alice")
	if err != nil {
		t.Fatalf("CheckAttempt failed: %v", err)
	}
	if dec.Allowed {
		t.Fatal("expected sixth attempt denied")
	}
	if dec.RetryAfter <= 0 || dec.RetryAfter > 15*time.Minute {
		t.Fatalf("expected retry-after within the window, got %v", dec.RetryAfter)
	}

	// Other identities keep their own budget.
	if dec, _ := limiter.CheckAttempt(ctx, "bob"); !dec.Allowed || dec.Remaining != 4 {
		t.Fatalf("expected fresh budget for bob, got %+v", dec)
	}
}

func TestMemoryLimiterWindowElapses(t *testing.T) {
	clock := newFakeClock()
	limiter := newTwoFactorRateLimiter(RateLimitConfig{MaxAttempts: 2, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	limiter.CheckAttempt(ctx, "alice")
	limiter.CheckAttempt(ctx, "alice")
	if dec, _ := limiter.CheckAttempt(ctx, "alice"); dec.Allowed {
		t.Fatal("expected budget exhausted")
	}

	clock.Advance(time.Minute + time.Second)
	dec, err := limiter.CheckAttempt(ctx, "alice")
	if err != nil {
		t.Fatalf("CheckAttempt failed: %v", err)
	}
	if !dec.Allowed || dec.Remaining != 1 {
		t.Fatalf("expected fresh window after elapse, got %+v", dec)
	}
}

func TestMemoryLimiterReset(t *testing.T) {
	clock := newFakeClock()
	limiter := newTwoFactorRateLimiter(RateLimitConfig{MaxAttempts: 2, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	limiter.CheckAttempt(ctx, "alice")
	limiter.CheckAttempt(ctx, "alice")
	if err := limiter.Reset(ctx, "alice"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if dec, _ := limiter.CheckAttempt(ctx, "alice"); !dec.Allowed || dec.Remaining != 1 {
		t.Fatalf("expected full budget after reset, got %+v", dec)
	}
}

func TestMemoryLimiterDenialDoesNotExtendWindow(t *testing.T) {
	clock := newFakeClock()
	limiter := newTwoFactorRateLimiter(RateLimitConfig{MaxAttempts: 1, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	limiter.CheckAttempt(ctx, "alice")

	clock.Advance(50 * time.Second)
	if dec, _ := limiter.CheckAttempt(ctx, "alice"); dec.Allowed {
		t.Fatal("expected denial inside the window")
	}

	clock.Advance(11 * time.Second)
	if dec, _ := limiter.CheckAttempt(ctx, "alice"); !dec.Allowed {
		t.Fatal("denied attempts must not push the window reset out")
	}
}

func TestRedisLimiterDecisionSequence(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedisTwoFactorRateLimiter(client, RateLimitConfig{
		MaxAttempts: 3,
		Window:      15 * time.Minute,
		RedisPrefix: "at",
	})
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		dec, err := limiter.CheckAttempt(ctx, "alice")
		if err != nil {
			t.Fatalf("CheckAttempt failed: %v", err)
		}
		if !dec.Allowed || dec.Remaining != want {
			t.Fatalf("expected allowed with remaining %d, got %+v", want, dec)
		}
	}

	dec, err := limiter.CheckAttempt(ctx, "alice")
	if err != nil {
		t.Fatalf("CheckAttempt failed: %v", err)
	}
	if dec.Allowed || dec.RetryAfter <= 0 {
		t.Fatalf("expected denial with positive retry-after, got %+v", dec)
	}
}

func TestRedisLimiterWindowExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedisTwoFactorRateLimiter(client, RateLimitConfig{
		MaxAttempts: 1,
		Window:      time.Minute,
		RedisPrefix: "at",
	})
	ctx := context.Background()

	limiter.CheckAttempt(ctx, "alice")
	if dec, _ := limiter.CheckAttempt(ctx, "alice"); dec.Allowed {
		t.Fatal("expected denial inside the window")
	}

	mr.FastForward(time.Minute + time.Second)
	if dec, _ := limiter.CheckAttempt(ctx, "alice"); !dec.Allowed {
		t.Fatal("expected fresh budget after the key expired")
	}
}

func TestRedisLimiterReset(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedisTwoFactorRateLimiter(client, RateLimitConfig{
		MaxAttempts: 1,
		Window:      time.Minute,
		RedisPrefix: "at",
	})
	ctx := context.Background()

	limiter.CheckAttempt(ctx, "alice")
	if err := limiter.Reset(ctx, "alice"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if dec, _ := limiter.CheckAttempt(ctx, "alice"); !dec.Allowed {
		t.Fatal("expected full budget after reset")
	}
}

func TestRedisLimiterBackendError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedisTwoFactorRateLimiter(client, RateLimitConfig{
		MaxAttempts: 1,
		Window:      time.Minute,
	})

	mr.Close()
	if _, err := limiter.CheckAttempt(context.Background(), "alice"); err == nil {
		t.Fatal("expected error when the backend is down")
	}
}

func TestMemoryLimiterSweep(t *testing.T) {
	clock := newFakeClock()
	limiter := newTwoFactorRateLimiter(RateLimitConfig{MaxAttempts: 1, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	limiter.CheckAttempt(ctx, "alice")
	limiter.CheckAttempt(ctx, "bob")

	if got := limiter.sweep(); got != 0 {
		t.Fatalf("expected nothing evicted inside the window, got %d", got)
	}
	clock.Advance(2 * time.Minute)
	if got := limiter.sweep(); got != 2 {
		t.Fatalf("expected both records evicted, got %d", got)
	}
}
