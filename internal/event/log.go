package event

import (
	"errors"
	"sync"
	"time"
)

// ErrEventNotFound is returned when no event matches the given identifier.
var ErrEventNotFound = errors.New("security event not found")

// Log is the mutex-guarded append-mostly event store. Appends come from the
// anomaly detector; the only external mutation is resolving by identifier.
type Log struct {
	mu     sync.RWMutex
	events []*Event
	byID   map[string]*Event
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{byID: make(map[string]*Event)}
}

// Append stores a copy of the event.
func (l *Log) Append(e Event) {
	stored := e.clone()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, &stored)
	l.byID[stored.ID] = &stored
}

// ForIdentity returns copies of all events recorded for the identity, in
// append order.
func (l *Log) ForIdentity(identity string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, e := range l.events {
		if e.Identity == identity {
			out = append(out, e.clone())
		}
	}
	return out
}

// Unresolved returns copies of all events whose resolved flag is unset.
func (l *Log) Unresolved() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, e := range l.events {
		if !e.Resolved {
			out = append(out, e.clone())
		}
	}
	return out
}

// Resolve sets the resolved flag on the event with the given id.
func (l *Log) Resolve(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byID[id]
	if !ok {
		return ErrEventNotFound
	}
	e.Resolved = true
	return nil
}

// PurgeResolved drops resolved events older than the cutoff and returns the
// purge count. Unresolved events are retained regardless of age.
func (l *Log) PurgeResolved(before time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	purged := 0
	kept := l.events[:0]
	for _, e := range l.events {
		if e.Resolved && e.Timestamp.Before(before) {
			delete(l.byID, e.ID)
			purged++
			continue
		}
		kept = append(kept, e)
	}
	l.events = kept
	return purged
}
