package authtrust

import (
	"context"
	"io"
	"time"

	internalevent "github.com/shareflow/authtrust/internal/event"
	"github.com/shareflow/authtrust/internal/rate"
	"github.com/shareflow/authtrust/session"
)

// DeliveryMethod selects how a second-factor code reaches the user.
type DeliveryMethod string

const (
	// MethodSMS delivers one-time codes over SMS.
	MethodSMS DeliveryMethod = "sms"
	// MethodEmail delivers one-time codes over email.
	MethodEmail DeliveryMethod = "email"
	// MethodAuthenticator verifies codes from a provisioned TOTP app;
	// nothing is delivered.
	MethodAuthenticator DeliveryMethod = "authenticator"
)

// AuthFactor is one issued second-factor challenge. It is created per
// challenge and discarded after expiry or successful verification. A
// consumed factor never validates again, even before its expiry.
type AuthFactor struct {
	ChallengeID string
	Identity    string
	Method      DeliveryMethod

	// Secret is set only for authenticator factors.
	Secret []byte

	Code      string
	ExpiresAt time.Time
	Verified  bool
	Consumed  bool

	// BackupCodeHashes holds SHA-256 hashes of recovery codes.
	// Plaintext codes are never stored.
	BackupCodeHashes [][32]byte
}

// Session is one tracked device session for an identity.
type Session = session.Session

// DeviceClass is the coarse device category reported at login.
type DeviceClass = session.DeviceClass

const (
	// DeviceMobile is a phone-class device.
	DeviceMobile = session.DeviceMobile
	// DeviceTablet is a tablet-class device.
	DeviceTablet = session.DeviceTablet
	// DeviceDesktop is a desktop or laptop browser.
	DeviceDesktop = session.DeviceDesktop
)

// Location is the geolocation resolved for a session's IP address.
type Location = session.Location

// Coordinates is a resolved latitude/longitude pair in decimal degrees.
type Coordinates = session.Coordinates

// SessionStats summarizes an identity's session history.
type SessionStats = session.Stats

// ViewingActivity is one playback record reported by the application. The
// engine uses it only for the unusual-hours check; StartedAt must carry the
// viewer's local time zone.
type ViewingActivity struct {
	Identity    string
	ContentID   string
	ContentType string
	StartedAt   time.Time
	EndedAt     time.Time
	Quality     string
	DeviceID    string
	IPAddress   string
	Location    Location
}

// SecurityEvent is a structured security event emitted by the anomaly
// detector. Created once; immutable except for the resolved flag.
type SecurityEvent = internalevent.Event

// ActivityType classifies what kind of suspicious activity an event records.
type ActivityType = internalevent.ActivityType

const (
	ActivityMultipleLocations = internalevent.ActivityMultipleLocations
	ActivityRapidLogins       = internalevent.ActivityRapidLogins
	ActivityUnusualHours      = internalevent.ActivityUnusualHours
	ActivityImpossibleTravel  = internalevent.ActivityImpossibleTravel
	ActivityMultipleDevices   = internalevent.ActivityMultipleDevices
	ActivityFailed2FA         = internalevent.ActivityFailed2FA
	ActivityPasswordChange    = internalevent.ActivityPasswordChange
	ActivityUnusualPayment    = internalevent.ActivityUnusualPayment
)

// Severity grades a security event.
type Severity = internalevent.Severity

const (
	SeverityLow      = internalevent.SeverityLow
	SeverityMedium   = internalevent.SeverityMedium
	SeverityHigh     = internalevent.SeverityHigh
	SeverityCritical = internalevent.SeverityCritical
)

// RecommendedAction is the engine's recommendation to the external
// alerting/lockout consumer.
type RecommendedAction = internalevent.Action

const (
	ActionNone   = internalevent.ActionNone
	ActionAlert  = internalevent.ActionAlert
	ActionLock   = internalevent.ActionLock
	ActionVerify = internalevent.ActionVerify
)

// EventSink receives high-severity [SecurityEvent] values from the engine's
// dispatcher.
type EventSink = internalevent.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = internalevent.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = internalevent.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalevent.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalevent.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalevent.NewJSONWriterSink(w)
}

// AttemptDecision is the outcome of one rate-limiter check. RetryAfter is
// the time left until the identity's window resets.
type AttemptDecision = rate.Decision

// Sender delivers a one-time code to a destination over an external channel
// (SMS gateway, mail relay). Implementations must return an error for
// failed delivery and must not panic on network trouble.
type Sender interface {
	Send(ctx context.Context, destination, code string) error
}

// SenderFunc adapts a function to the [Sender] interface.
type SenderFunc func(ctx context.Context, destination, code string) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, destination, code string) error {
	return f(ctx, destination, code)
}

// ChallengeInfo describes an issued challenge. Delivered reports whether the
// code reached the delivery channel; on false the caller may retry or fall
// back to another method.
type ChallengeInfo struct {
	ChallengeID string
	Method      DeliveryMethod
	ExpiresAt   time.Time
	Delivered   bool
}

// VerifyResult is the outcome of a second-factor verification. Grant is set
// only when verification succeeded and grants are enabled.
type VerifyResult struct {
	Verified   bool
	Grant      string
	Remaining  int
	RetryAfter time.Duration
}

// AuthenticatorProvision holds the base32 secret and otpauth:// URI returned
// by [Engine.ProvisionAuthenticator] for QR display.
type AuthenticatorProvision struct {
	SecretBase32 string
	URI          string
}

// GrantClaims are the validated contents of a verification grant.
type GrantClaims struct {
	Identity  string
	Method    DeliveryMethod
	GrantID   string
	ExpiresAt time.Time
}
