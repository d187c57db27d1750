// Package rate implements the fixed-window attempt budget behind the
// two-factor rate limiter: a capped number of verification attempts per
// identity per window, with the whole record replaced once the window
// elapses.
//
// Two stores exist: a mutex-guarded in-memory map for single-process
// deployments and tests, and a Redis-backed store for fleets, where Redis
// command atomicity makes concurrent checks for the same identity
// linearizable.
package rate
