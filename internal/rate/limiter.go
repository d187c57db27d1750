package rate

import (
	"context"
	"errors"
	"time"
)

// ErrBackendUnavailable wraps store failures so callers can distinguish
// infrastructure trouble from an exhausted attempt budget.
var ErrBackendUnavailable = errors.New("rate limit backend unavailable")

// Config holds the fixed-window policy.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// Decision is the outcome of one attempt check. RetryAfter is the time left
// until the current window resets and is meaningful on both allowed and
// denied decisions.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Store counts attempts per identity within a fixed window.
//
// Check records the attempt and decides it in one step; two concurrent
// checks for the same identity must never both observe the same count.
type Store interface {
	Check(ctx context.Context, identity string) (Decision, error)
	Reset(ctx context.Context, identity string) error
}
