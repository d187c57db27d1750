// Package session holds the tracked-session model and its in-memory store.
//
// The store is the only mutator of session state: activity refreshes and
// terminations go through it, and every read returns a deep copy so callers
// can never mutate tracked state behind the store's lock. Termination is a
// one-way transition; history is retained until swept.
package session
