package authtrust

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	internalevent "github.com/shareflow/authtrust/internal/event"
	"github.com/shareflow/authtrust/session"
)

// Engine is the authentication-factor and session-trust engine. Build one
// through [New]; all methods are safe for concurrent use.
type Engine struct {
	config Config

	limiter    *TwoFactorRateLimiter
	sessions   *session.Store
	challenges *challengeStore
	eventLog   *internalevent.Log
	dispatcher *internalevent.Dispatcher
	metrics    *Metrics
	totp       *totpManager
	grants     *grantIssuer

	smsSender   Sender
	emailSender Sender
	logger      *zap.Logger
	now         func() time.Time

	sweepStop chan struct{}
	sweepOnce sync.Once
	sweepWG   sync.WaitGroup
}

// Close stops the background sweeper and shuts down the event dispatcher
// after draining buffered events. Safe to call more than once.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.sweepOnce.Do(func() {
		close(e.sweepStop)
	})
	e.sweepWG.Wait()
	e.dispatcher.Close()
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}, Histograms: map[MetricID][]uint64{}}
	}
	return e.metrics.Snapshot()
}

// MetricValue returns one counter's current value.
func (e *Engine) MetricValue(id MetricID) uint64 {
	if e == nil {
		return 0
	}
	return e.metrics.Value(id)
}

// EventsDropped reports how many alertable events were discarded because
// the dispatch buffer was full.
func (e *Engine) EventsDropped() uint64 {
	if e == nil || e.dispatcher == nil {
		return 0
	}
	return e.dispatcher.Dropped()
}

// emitEvent is the single funnel for security events. Every event is
// appended to the log; alertable severities are additionally handed to the
// dispatcher.
func (e *Engine) emitEvent(ctx context.Context, identity string, activity ActivityType, severity Severity, action RecommendedAction, details map[string]string) SecurityEvent {
	ev := SecurityEvent{
		ID:        uuid.NewString(),
		Identity:  identity,
		Activity:  activity,
		Severity:  severity,
		Timestamp: e.now(),
		Details:   details,
		Action:    action,
	}

	e.eventLog.Append(ev)
	e.metrics.Inc(MetricEventEmitted)

	e.logger.Info("security event",
		zap.String("event_id", ev.ID),
		zap.String("identity", identity),
		zap.String("activity", string(activity)),
		zap.String("severity", string(severity)),
		zap.String("action", string(action)),
	)

	if severity.Alertable() && e.dispatcher != nil {
		e.dispatcher.Emit(ctx, ev)
		e.metrics.Inc(MetricEventDispatched)
	}

	return ev
}

func (e *Engine) sweepLoop(interval time.Duration) {
	defer e.sweepWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.sweep()
		case <-e.sweepStop:
			return
		}
	}
}

// sweep evicts expired state from every in-memory store.
func (e *Engine) sweep() {
	now := e.now()

	sessions := e.sessions.Sweep(e.config.Sessions.Retention)
	challenges := e.challenges.Sweep()
	attempts := e.limiter.sweep()

	events := 0
	if e.config.Events.RetainResolved > 0 {
		events = e.eventLog.PurgeResolved(now.Add(-e.config.Events.RetainResolved))
	}

	if sessions+challenges+attempts+events > 0 {
		e.logger.Debug("sweep",
			zap.Int("sessions", sessions),
			zap.Int("challenges", challenges),
			zap.Int("attempt_windows", attempts),
			zap.Int("resolved_events", events),
		)
	}
}
