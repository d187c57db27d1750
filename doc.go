// Package authtrust provides the authentication-factor and session-trust
// engine behind a subscription-sharing platform: one-time-password and TOTP
// issuance and verification with backup-code recovery, per-identity attempt
// rate limiting, session lifecycle tracking, and an anomaly detector that
// flags suspicious account activity (impossible travel, excessive concurrent
// sessions, rapid login attempts, unusual viewing hours).
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authtrust is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (SecurityEvent, AttemptDecision, SessionStats, etc.).
// Internal coordination — attempt-window accounting, event-log storage,
// security-event dispatch — lives under internal/ and is never exported.
// Session storage is the session subpackage; metric export bridges live
// under metrics/export/ and event-sink adapters under sink/.
//
// # What this package must NOT do
//
//   - Persist anything durably, resolve IP geolocation, or deliver codes
//     itself. Storage backends, geolocation, and SMS/email transport are
//     caller concerns injected through the Builder.
//   - Raise errors for expected verification failures. Expired, mismatched,
//     and rate-limited attempts surface as boolean/decision results; errors
//     are reserved for backend unavailability and programmer mistakes.
//
// # Performance contract
//
// Code verification is the hot path. Comparisons are constant-time, locks are
// held only for in-memory updates, and no blocking I/O happens inside a
// critical section.
package authtrust
