package rate

import (
	"context"
	"sync"
	"time"
)

type record struct {
	count   int
	resetAt time.Time
}

// MemoryStore is the in-process attempt store: one guarded map, one record
// per identity, replaced wholesale on the first attempt after the window.
type MemoryStore struct {
	mu      sync.Mutex
	cfg     Config
	records map[string]*record
	now     func() time.Time
}

// NewMemoryStore creates a memory store. now may be nil, in which case
// time.Now is used.
func NewMemoryStore(cfg Config, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		cfg:     cfg,
		records: make(map[string]*record),
		now:     now,
	}
}

// Check implements [Store].
func (s *MemoryStore) Check(_ context.Context, identity string) (Decision, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identity]
	if !ok || !now.Before(rec.resetAt) {
		rec = &record{count: 1, resetAt: now.Add(s.cfg.Window)}
		s.records[identity] = rec
		return Decision{Allowed: true, Remaining: s.cfg.MaxAttempts - 1, RetryAfter: s.cfg.Window}, nil
	}

	if rec.count >= s.cfg.MaxAttempts {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: rec.resetAt.Sub(now)}, nil
	}

	rec.count++
	return Decision{Allowed: true, Remaining: s.cfg.MaxAttempts - rec.count, RetryAfter: rec.resetAt.Sub(now)}, nil
}

// Reset implements [Store].
func (s *MemoryStore) Reset(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identity)
	return nil
}

// Sweep drops records whose window has elapsed and returns the eviction
// count.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for identity, rec := range s.records {
		if !now.Before(rec.resetAt) {
			delete(s.records, identity)
			evicted++
		}
	}
	return evicted
}
