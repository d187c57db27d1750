package authtrust

import (
	"errors"
	"strings"
	"time"
)

// Config holds the engine configuration. Configure once before Build and
// treat as immutable afterwards; Build takes a defensive copy.
type Config struct {
	OTP         OTPConfig
	TOTP        TOTPConfig
	BackupCodes BackupCodeConfig
	RateLimit   RateLimitConfig
	Sessions    SessionConfig
	Anomaly     AnomalyConfig
	Grants      GrantConfig
	Events      EventConfig
	Metrics     MetricsConfig
}

// OTPConfig controls delivered one-time codes (SMS, email).
type OTPConfig struct {
	// TTL is the validity window of an issued code.
	TTL time.Duration
}

// TOTPConfig controls authenticator-app codes and provisioning.
type TOTPConfig struct {
	Issuer    string
	Digits    int
	Period    int
	Algorithm string // "SHA1" (default), "SHA256", "SHA512"
	Skew      int
}

// BackupCodeConfig controls recovery code generation.
type BackupCodeConfig struct {
	Count int
}

// RateLimitConfig is the fixed-window verification attempt budget per
// identity.
type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
	// RedisPrefix namespaces limiter keys when a Redis client is attached.
	RedisPrefix string
}

// SessionConfig controls session tracking and expiry.
type SessionConfig struct {
	// ActivityWindow is how long after its last activity a session still
	// counts as active.
	ActivityWindow time.Duration
	// SweepInterval is how often the background sweeper runs. Zero
	// disables the sweeper.
	SweepInterval time.Duration
	// Retention is how long inactive sessions are kept for the travel
	// check and stats before the sweeper evicts them.
	Retention time.Duration
}

// AnomalyConfig holds the suspicious-activity thresholds.
type AnomalyConfig struct {
	// MaxActiveSessions is the active-session count above which a
	// multiple-devices event fires.
	MaxActiveSessions int
	// TravelWindow bounds how far back session pairs are compared for
	// impossible travel.
	TravelWindow time.Duration
	// MaxTravelSpeedKmH is the implied-speed threshold in km/h.
	MaxTravelSpeedKmH float64
	// UnusualHourStart/UnusualHourEnd bound the local-time window
	// [start, end) that flags viewing activity.
	UnusualHourStart int
	UnusualHourEnd   int
	// RapidLoginThreshold is the attempt count above which a rapid-logins
	// event fires.
	RapidLoginThreshold int
}

// GrantConfig controls short-lived signed verification grants.
type GrantConfig struct {
	Enabled    bool
	TTL        time.Duration
	SigningKey []byte
}

// EventConfig controls the asynchronous dispatch of alertable events to the
// attached sink.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// RetainResolved is how long resolved events are kept before the
	// sweeper purges them. Zero keeps them forever.
	RetainResolved time.Duration
}

// MetricsConfig controls the in-process atomic counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration the engine runs with when the
// builder is given none.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			TTL: 5 * time.Minute,
		},
		TOTP: TOTPConfig{
			Issuer:    "",
			Digits:    6,
			Period:    30,
			Algorithm: "SHA1",
			Skew:      1,
		},
		BackupCodes: BackupCodeConfig{
			Count: 10,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: 5,
			Window:      15 * time.Minute,
			RedisPrefix: "at",
		},
		Sessions: SessionConfig{
			ActivityWindow: 30 * time.Minute,
			SweepInterval:  5 * time.Minute,
			Retention:      24 * time.Hour,
		},
		Anomaly: AnomalyConfig{
			MaxActiveSessions:   3,
			TravelWindow:        60 * time.Minute,
			MaxTravelSpeedKmH:   800,
			UnusualHourStart:    2,
			UnusualHourEnd:      6,
			RapidLoginThreshold: 5,
		},
		Grants: GrantConfig{
			Enabled: false,
			TTL:     10 * time.Minute,
		},
		Events: EventConfig{
			Enabled:        true,
			BufferSize:     1024,
			DropIfFull:     true,
			RetainResolved: 7 * 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Grants.SigningKey = cloneBytes(cfg.Grants.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks the configuration for internal consistency. Build calls
// it; callers mutating a Config by hand may call it directly.
func (c *Config) Validate() error {
	if c.OTP.TTL <= 0 {
		return errors.New("OTP TTL must be > 0")
	}

	if c.TOTP.Digits != 6 && c.TOTP.Digits != 8 {
		return errors.New("TOTP Digits must be 6 or 8")
	}
	if c.TOTP.Period < 15 {
		return errors.New("TOTP Period must be >= 15 seconds")
	}
	if c.TOTP.Skew < 0 || c.TOTP.Skew > 2 {
		return errors.New("TOTP Skew must be between 0 and 2")
	}
	switch strings.ToUpper(c.TOTP.Algorithm) {
	case "", "SHA1", "SHA256", "SHA512":
		// valid (empty treated as SHA1)
	default:
		return errors.New("TOTP Algorithm must be SHA1, SHA256, or SHA512")
	}

	if c.BackupCodes.Count <= 0 {
		return errors.New("BackupCodes Count must be > 0")
	}

	if c.RateLimit.MaxAttempts <= 0 {
		return errors.New("RateLimit MaxAttempts must be > 0")
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("RateLimit Window must be > 0")
	}

	if c.Sessions.ActivityWindow <= 0 {
		return errors.New("Sessions ActivityWindow must be > 0")
	}
	if c.Sessions.SweepInterval < 0 {
		return errors.New("Sessions SweepInterval must be >= 0")
	}
	if c.Sessions.Retention < c.Sessions.ActivityWindow {
		return errors.New("Sessions Retention must be >= ActivityWindow")
	}

	if c.Anomaly.MaxActiveSessions <= 0 {
		return errors.New("Anomaly MaxActiveSessions must be > 0")
	}
	if c.Anomaly.TravelWindow <= 0 {
		return errors.New("Anomaly TravelWindow must be > 0")
	}
	if c.Anomaly.MaxTravelSpeedKmH <= 0 {
		return errors.New("Anomaly MaxTravelSpeedKmH must be > 0")
	}
	if c.Anomaly.UnusualHourStart < 0 || c.Anomaly.UnusualHourStart > 23 {
		return errors.New("Anomaly UnusualHourStart must be between 0 and 23")
	}
	if c.Anomaly.UnusualHourEnd < 0 || c.Anomaly.UnusualHourEnd > 24 {
		return errors.New("Anomaly UnusualHourEnd must be between 0 and 24")
	}
	if c.Anomaly.UnusualHourStart >= c.Anomaly.UnusualHourEnd {
		return errors.New("Anomaly UnusualHourStart must be before UnusualHourEnd")
	}
	if c.Anomaly.RapidLoginThreshold <= 0 {
		return errors.New("Anomaly RapidLoginThreshold must be > 0")
	}

	if c.Grants.Enabled {
		if c.Grants.TTL <= 0 {
			return errors.New("Grants TTL must be > 0")
		}
		if len(c.Grants.SigningKey) < 32 {
			return errors.New("Grants SigningKey must be >= 256 bits")
		}
	}

	if c.Events.Enabled {
		if c.Events.BufferSize <= 0 {
			return errors.New("Events BufferSize must be > 0 when events are enabled")
		}
		if c.Events.RetainResolved < 0 {
			return errors.New("Events RetainResolved must be >= 0")
		}
	}

	return nil
}
