package authtrust

import (
	"errors"

	internalevent "github.com/shareflow/authtrust/internal/event"
	"github.com/shareflow/authtrust/internal/rate"
	"github.com/shareflow/authtrust/session"
)

var (
	// ErrEngineNotReady is returned when an engine method is called on a
	// builder that was never built, or after Close.
	ErrEngineNotReady = errors.New("engine not ready")

	// ErrRateLimited is returned when an identity's verification attempt
	// budget is exhausted. The accompanying result carries RetryAfter.
	ErrRateLimited = errors.New("too many verification attempts")

	// ErrInvalidIdentity is returned when a required identity is empty.
	ErrInvalidIdentity = errors.New("identity must not be empty")

	// ErrInvalidMethod is returned when a delivery method is unknown or
	// not valid for the requested operation.
	ErrInvalidMethod = errors.New("invalid delivery method")

	// ErrDeliveryUnavailable is returned when a challenge is issued for a
	// method that has no configured sender.
	ErrDeliveryUnavailable = errors.New("no sender configured for delivery method")

	// ErrInvalidCodeCount is returned when a non-positive backup code
	// count is requested.
	ErrInvalidCodeCount = errors.New("backup code count must be positive")

	// ErrInvalidSession is returned when a tracked session is missing its
	// session ID or identity.
	ErrInvalidSession = errors.New("session id and identity must not be empty")

	// ErrGrantsDisabled is returned when grant operations are used with
	// grants disabled in the configuration.
	ErrGrantsDisabled = errors.New("verification grants disabled")

	// ErrGrantInvalid is returned when a verification grant fails
	// signature, issuer, or expiry validation.
	ErrGrantInvalid = errors.New("invalid verification grant")
)

// ErrSessionNotFound is returned when a session ID is unknown to the store.
var ErrSessionNotFound = session.ErrNotFound

// ErrDuplicateSession is returned when a session ID is tracked twice.
var ErrDuplicateSession = session.ErrDuplicateID

// ErrEventNotFound is returned when resolving an unknown event ID.
var ErrEventNotFound = internalevent.ErrEventNotFound

// ErrLimiterUnavailable wraps rate limit backend failures.
var ErrLimiterUnavailable = rate.ErrBackendUnavailable
