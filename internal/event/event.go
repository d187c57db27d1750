package event

import "time"

// ActivityType classifies what kind of suspicious activity an event records.
type ActivityType string

const (
	ActivityMultipleLocations ActivityType = "multiple_locations"
	ActivityRapidLogins       ActivityType = "rapid_logins"
	ActivityUnusualHours      ActivityType = "unusual_hours"
	ActivityImpossibleTravel  ActivityType = "impossible_travel"
	ActivityMultipleDevices   ActivityType = "multiple_devices"
	ActivityFailed2FA         ActivityType = "failed_2fa"
	ActivityPasswordChange    ActivityType = "password_change"
	ActivityUnusualPayment    ActivityType = "unusual_payment"
)

// Severity grades an event. High and critical events are pushed to the
// external sink in addition to the event log.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Alertable reports whether the severity warrants a sink dispatch.
func (s Severity) Alertable() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Action is the engine's recommendation to the external alerting/lockout
// consumer. The consumer decides the user-visible consequence.
type Action string

const (
	ActionNone   Action = "none"
	ActionAlert  Action = "alert"
	ActionLock   Action = "lock"
	ActionVerify Action = "verify"
)

// Event is a structured security event emitted by the anomaly detector.
type Event struct {
	ID        string            `json:"id"`
	Identity  string            `json:"identity"`
	Activity  ActivityType      `json:"activity_type"`
	Severity  Severity          `json:"severity"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
	Resolved  bool              `json:"resolved"`
	Action    Action            `json:"recommended_action"`
}

func (e *Event) clone() Event {
	out := *e
	if e.Details != nil {
		out.Details = make(map[string]string, len(e.Details))
		for k, v := range e.Details {
			out.Details[k] = v
		}
	}
	return out
}
