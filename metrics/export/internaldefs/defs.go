package internaldefs

import (
	authtrust "github.com/shareflow/authtrust"
)

// CounterDef binds an engine counter to its exported name and help text.
type CounterDef struct {
	ID   authtrust.MetricID
	Name string
	Help string
}

// HistogramDef binds an engine histogram to its exported name and help text.
type HistogramDef struct {
	ID   authtrust.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter, in engine order.
var CounterDefs = []CounterDef{
	{ID: authtrust.MetricOTPIssued, Name: "authtrust_otp_issued_total", Help: "Issued one-time code challenges."},
	{ID: authtrust.MetricOTPDeliveryFailure, Name: "authtrust_otp_delivery_failure_total", Help: "One-time code deliveries rejected by the sender."},
	{ID: authtrust.MetricOTPVerified, Name: "authtrust_otp_verified_total", Help: "Successful challenge verifications."},
	{ID: authtrust.MetricOTPInvalid, Name: "authtrust_otp_invalid_total", Help: "Challenge verifications with a wrong or unknown code."},
	{ID: authtrust.MetricOTPExpired, Name: "authtrust_otp_expired_total", Help: "Codes presented after their TTL."},
	{ID: authtrust.MetricOTPReplay, Name: "authtrust_otp_replay_total", Help: "Re-use attempts on consumed challenges."},
	{ID: authtrust.MetricTOTPSuccess, Name: "authtrust_totp_success_total", Help: "Accepted authenticator codes."},
	{ID: authtrust.MetricTOTPFailure, Name: "authtrust_totp_failure_total", Help: "Rejected authenticator codes."},
	{ID: authtrust.MetricBackupCodesGenerated, Name: "authtrust_backup_codes_generated_total", Help: "Generated recovery code batches."},
	{ID: authtrust.MetricBackupCodeUsed, Name: "authtrust_backup_code_used_total", Help: "Consumed recovery codes."},
	{ID: authtrust.MetricBackupCodeFailed, Name: "authtrust_backup_code_failed_total", Help: "Rejected recovery codes."},
	{ID: authtrust.MetricAttemptRateLimited, Name: "authtrust_attempt_rate_limited_total", Help: "Verifications denied by the attempt budget."},
	{ID: authtrust.MetricSessionTracked, Name: "authtrust_session_tracked_total", Help: "Tracked device sessions."},
	{ID: authtrust.MetricSessionTerminated, Name: "authtrust_session_terminated_total", Help: "Terminated device sessions."},
	{ID: authtrust.MetricImpossibleTravel, Name: "authtrust_impossible_travel_total", Help: "Impossible-travel events."},
	{ID: authtrust.MetricMultipleDevices, Name: "authtrust_multiple_devices_total", Help: "Multiple-devices events."},
	{ID: authtrust.MetricRapidLogins, Name: "authtrust_rapid_logins_total", Help: "Rapid-login events."},
	{ID: authtrust.MetricUnusualHours, Name: "authtrust_unusual_hours_total", Help: "Unusual-hours events."},
	{ID: authtrust.MetricEventEmitted, Name: "authtrust_event_emitted_total", Help: "Security events appended to the log."},
	{ID: authtrust.MetricEventDispatched, Name: "authtrust_event_dispatched_total", Help: "Security events handed to the sink dispatcher."},
	{ID: authtrust.MetricGrantIssued, Name: "authtrust_grant_issued_total", Help: "Issued verification grants."},
	{ID: authtrust.MetricGrantRejected, Name: "authtrust_grant_rejected_total", Help: "Verification grants that failed validation."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authtrust.MetricVerifyLatency, Name: "authtrust_verify_latency_seconds", Help: "Verification latency histogram."},
}

// HistogramBounds are the bucket upper bounds in Prometheus `le` form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bucket bounds in instrument-name-safe form.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets widens a raw snapshot slice to the fixed bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
