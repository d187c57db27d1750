package authtrust

import (
	"testing"
	"time"
)

func storedChallenge(clock *fakeClock, id, identity, code string, ttl time.Duration) AuthFactor {
	return AuthFactor{
		ChallengeID: id,
		Identity:    identity,
		Method:      MethodSMS,
		Code:        code,
		ExpiresAt:   clock.Now().Add(ttl),
	}
}

func TestChallengeStoreConsumeHappyPath(t *testing.T) {
	clock := newFakeClock()
	store := newChallengeStore(clock.Now)
	store.Put(storedChallenge(clock, "c1", "alice", "123456", 5*time.Minute))

	if got := store.Consume("c1", "alice", "123456"); got != challengeOK {
		t.Fatalf("expected challengeOK, got %v", got)
	}

	f, ok := store.Get("c1")
	if !ok || !f.Consumed || !f.Verified {
		t.Fatalf("expected consumed+verified challenge, got %+v ok=%v", f, ok)
	}
}

func TestChallengeStoreConsumeReplay(t *testing.T) {
	clock := newFakeClock()
	store := newChallengeStore(clock.Now)
	store.Put(storedChallenge(clock, "c1", "alice", "123456", 5*time.Minute))

	store.Consume("c1", "alice", "123456")
	if got := store.Consume("c1", "alice", "123456"); got != challengeReplayed {
		t.Fatalf("expected challengeReplayed, got %v", got)
	}
}

func TestChallengeStoreConsumeMismatchKeepsChallenge(t *testing.T) {
	clock := newFakeClock()
	store := newChallengeStore(clock.Now)
	store.Put(storedChallenge(clock, "c1", "alice", "123456", 5*time.Minute))

	if got := store.Consume("c1", "alice", "654321"); got != challengeMismatch {
		t.Fatalf("expected challengeMismatch, got %v", got)
	}
	// A wrong guess does not burn the challenge.
	if got := store.Consume("c1", "alice", "123456"); got != challengeOK {
		t.Fatalf("expected correct code to still verify, got %v", got)
	}
}

func TestChallengeStoreConsumeExpiredDeletes(t *testing.T) {
	clock := newFakeClock()
	store := newChallengeStore(clock.Now)
	store.Put(storedChallenge(clock, "c1", "alice", "123456", time.Minute))

	clock.Advance(2 * time.Minute)
	if got := store.Consume("c1", "alice", "123456"); got != challengeExpired {
		t.Fatalf("expected challengeExpired, got %v", got)
	}
	if got := store.Consume("c1", "alice", "123456"); got != challengeNotFound {
		t.Fatalf("expected expired challenge deleted, got %v", got)
	}
}

func TestChallengeStoreConsumeWrongIdentityReadsAsNotFound(t *testing.T) {
	clock := newFakeClock()
	store := newChallengeStore(clock.Now)
	store.Put(storedChallenge(clock, "c1", "alice", "123456", 5*time.Minute))

	if got := store.Consume("c1", "mallory", "123456"); got != challengeNotFound {
		t.Fatalf("expected challengeNotFound for wrong identity, got %v", got)
	}
	if got := store.Consume("missing", "alice", "123456"); got != challengeNotFound {
		t.Fatalf("expected challengeNotFound for unknown id, got %v", got)
	}
}

func TestChallengeStoreSweep(t *testing.T) {
	clock := newFakeClock()
	store := newChallengeStore(clock.Now)
	store.Put(storedChallenge(clock, "live", "alice", "111111", 10*time.Minute))
	store.Put(storedChallenge(clock, "stale", "alice", "222222", time.Minute))
	store.Put(storedChallenge(clock, "spent", "alice", "333333", 10*time.Minute))
	store.Consume("spent", "alice", "333333")

	clock.Advance(2 * time.Minute)
	if evicted := store.Sweep(); evicted != 2 {
		t.Fatalf("expected 2 evicted, got %d", evicted)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 challenge left, got %d", store.Len())
	}
	if _, ok := store.Get("live"); !ok {
		t.Fatal("expected live challenge retained")
	}
}
