package session

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no session matches the given identifier.
	ErrNotFound = errors.New("session not found")
	// ErrDuplicateID is returned when a session identifier is already tracked.
	ErrDuplicateID = errors.New("duplicate session id")
)

// Store is a mutex-guarded in-memory session tracker keyed by identity.
//
// All methods are safe for concurrent use. Locks are held only for the
// in-memory update; no I/O happens under the lock.
type Store struct {
	mu           sync.RWMutex
	byIdentity   map[string][]*Session
	byID         map[string]*Session
	activeWindow time.Duration
	now          func() time.Time
}

// NewStore creates a session store. activeWindow bounds how long after its
// last activity a session still counts as active. now may be nil, in which
// case time.Now is used.
func NewStore(activeWindow time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		byIdentity:   make(map[string][]*Session),
		byID:         make(map[string]*Session),
		activeWindow: activeWindow,
		now:          now,
	}
}

// Add appends a session to its identity's history. The stored copy is
// normalized: a zero LastActivity inherits CreatedAt, and the session starts
// in the active state.
func (s *Store) Add(sess Session) error {
	if sess.SessionID == "" || sess.Identity == "" {
		return ErrNotFound
	}
	if sess.LastActivity.IsZero() {
		sess.LastActivity = sess.CreatedAt
	}
	sess.Active = true
	stored := sess.clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[stored.SessionID]; exists {
		return ErrDuplicateID
	}
	s.byID[stored.SessionID] = &stored
	s.byIdentity[stored.Identity] = append(s.byIdentity[stored.Identity], &stored)
	return nil
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(sessionID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byID[sessionID]
	if !ok {
		return Session{}, false
	}
	return sess.clone(), true
}

// Touch refreshes the session's last-activity timestamp. Touching an
// inactive session is a no-op error: inactive is terminal.
func (s *Store) Touch(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[sessionID]
	if !ok {
		return ErrNotFound
	}
	if !sess.Active {
		return ErrNotFound
	}
	sess.LastActivity = s.now()
	return nil
}

// Active returns copies of the identity's sessions whose active flag is set
// and whose last activity falls within the store's activity window.
func (s *Store) Active(identity string) []Session {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Session
	for _, sess := range s.byIdentity[identity] {
		if s.isActiveLocked(sess, now) {
			out = append(out, sess.clone())
		}
	}
	return out
}

// CreatedSince returns copies of the identity's sessions created at or after
// cutoff, ordered by creation time.
func (s *Store) CreatedSince(identity string, cutoff time.Time) []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Session
	for _, sess := range s.byIdentity[identity] {
		if !sess.CreatedAt.Before(cutoff) {
			out = append(out, sess.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Terminate clears the session's active flag. The session stays in history.
// Terminating an already-inactive session succeeds; termination is
// idempotent.
func (s *Store) Terminate(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[sessionID]
	if !ok {
		return ErrNotFound
	}
	sess.Active = false
	return nil
}

// TerminateAll clears the active flag on every session of the identity and
// returns how many were still active.
func (s *Store) TerminateAll(identity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	terminated := 0
	for _, sess := range s.byIdentity[identity] {
		if sess.Active {
			terminated++
		}
		sess.Active = false
	}
	return terminated
}

// Stats summarizes the identity's session history: totals, actives, and the
// distinct device classes and city labels seen.
func (s *Store) Stats(identity string) Stats {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.byIdentity[identity]
	stats := Stats{TotalSessions: len(sessions)}

	classes := make(map[DeviceClass]struct{})
	cities := make(map[string]struct{})
	for _, sess := range sessions {
		if s.isActiveLocked(sess, now) {
			stats.ActiveSessions++
		}
		if _, seen := classes[sess.DeviceClass]; !seen && sess.DeviceClass != "" {
			classes[sess.DeviceClass] = struct{}{}
			stats.DeviceClasses = append(stats.DeviceClasses, string(sess.DeviceClass))
		}
		if _, seen := cities[sess.Location.City]; !seen && sess.Location.City != "" {
			cities[sess.Location.City] = struct{}{}
			stats.Cities = append(stats.Cities, sess.Location.City)
		}
	}
	return stats
}

// Sweep evicts sessions whose last activity is older than retention,
// returning the eviction count. Active sessions inside the activity window
// are never evicted regardless of retention.
func (s *Store) Sweep(retention time.Duration) int {
	now := s.now()
	cutoff := now.Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for identity, sessions := range s.byIdentity {
		kept := sessions[:0]
		for _, sess := range sessions {
			if sess.LastActivity.Before(cutoff) && !s.isActiveLocked(sess, now) {
				delete(s.byID, sess.SessionID)
				evicted++
				continue
			}
			kept = append(kept, sess)
		}
		if len(kept) == 0 {
			delete(s.byIdentity, identity)
			continue
		}
		s.byIdentity[identity] = kept
	}
	return evicted
}

func (s *Store) isActiveLocked(sess *Session, now time.Time) bool {
	if !sess.Active {
		return false
	}
	return now.Sub(sess.LastActivity) <= s.activeWindow
}
