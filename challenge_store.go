package authtrust

import (
	"crypto/subtle"
	"sync"
	"time"
)

type challengeResult uint8

const (
	challengeOK challengeResult = iota
	challengeNotFound
	challengeExpired
	challengeMismatch
	challengeReplayed
)

// challengeStore holds issued challenges in memory. Consume is the only
// verification path and runs entirely under the lock, so a code can be
// spent exactly once no matter how many goroutines race on it.
type challengeStore struct {
	mu         sync.Mutex
	challenges map[string]*AuthFactor
	now        func() time.Time
}

func newChallengeStore(now func() time.Time) *challengeStore {
	if now == nil {
		now = time.Now
	}
	return &challengeStore{
		challenges: make(map[string]*AuthFactor),
		now:        now,
	}
}

func (s *challengeStore) Put(f AuthFactor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[f.ChallengeID] = &f
}

func (s *challengeStore) Get(challengeID string) (AuthFactor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.challenges[challengeID]
	if !ok {
		return AuthFactor{}, false
	}
	return *f, true
}

// Consume checks code against the challenge and marks it spent on success.
// Expired challenges are deleted on sight. A challenge issued to a
// different identity reads as not found.
func (s *challengeStore) Consume(challengeID, identity, code string) challengeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.challenges[challengeID]
	if !ok || f.Identity != identity {
		return challengeNotFound
	}

	if s.now().After(f.ExpiresAt) {
		delete(s.challenges, challengeID)
		return challengeExpired
	}

	if f.Consumed {
		return challengeReplayed
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(f.Code)) != 1 {
		return challengeMismatch
	}

	f.Consumed = true
	f.Verified = true
	return challengeOK
}

// Sweep drops expired and consumed challenges and returns the eviction
// count.
func (s *challengeStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, f := range s.challenges {
		if f.Consumed || now.After(f.ExpiresAt) {
			delete(s.challenges, id)
			evicted++
		}
	}
	return evicted
}

func (s *challengeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.challenges)
}
