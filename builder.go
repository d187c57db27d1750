package authtrust

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	internalevent "github.com/shareflow/authtrust/internal/event"
	"github.com/shareflow/authtrust/session"
)

// Builder assembles an [Engine]. Configure it once, call Build once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	sink        EventSink
	smsSender   Sender
	emailSender Sender
	logger      *zap.Logger
	now         func() time.Time

	built bool
}

// New returns a builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis attaches a Redis client. The attempt budget then lives in
// Redis and holds across instances; without a client it is in-process.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithEventSink attaches the sink that receives alertable security events.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// WithSMSSender attaches the SMS delivery channel.
func (b *Builder) WithSMSSender(s Sender) *Builder {
	b.smsSender = s
	return b
}

// WithEmailSender attaches the email delivery channel.
func (b *Builder) WithEmailSender(s Sender) *Builder {
	b.emailSender = s
	return b
}

// WithLogger attaches a structured logger. Without one the engine logs
// nothing.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides the engine's time source. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles the metric counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and assembles the engine. The builder
// cannot be reused afterwards.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *TwoFactorRateLimiter
	if b.redis != nil {
		limiter = NewRedisTwoFactorRateLimiter(b.redis, cfg.RateLimit)
	} else {
		limiter = newTwoFactorRateLimiter(cfg.RateLimit, now)
	}

	sink := b.sink
	if sink == nil {
		sink = internalevent.NoOpSink{}
	}

	engine := &Engine{
		config:      cloneConfig(cfg),
		limiter:     limiter,
		sessions:    session.NewStore(cfg.Sessions.ActivityWindow, now),
		challenges:  newChallengeStore(now),
		eventLog:    internalevent.NewLog(),
		metrics:     NewMetrics(cfg.Metrics),
		totp:        newTOTPManager(cfg.TOTP),
		smsSender:   b.smsSender,
		emailSender: b.emailSender,
		logger:      logger,
		now:         now,
		sweepStop:   make(chan struct{}),
	}

	if cfg.Events.Enabled {
		engine.dispatcher = internalevent.NewDispatcher(internalevent.DispatcherConfig{
			BufferSize: cfg.Events.BufferSize,
			DropIfFull: cfg.Events.DropIfFull,
		}, sink)
	}

	if cfg.Grants.Enabled {
		engine.grants = newGrantIssuer(cfg.Grants, now)
	}

	if cfg.Sessions.SweepInterval > 0 {
		engine.sweepWG.Add(1)
		go engine.sweepLoop(cfg.Sessions.SweepInterval)
	}

	b.built = true

	return engine, nil
}
