package authtrust

import (
	"context"
)

// TrackSession records a new device session for its identity and runs the
// login-time anomaly checks synchronously: multiple devices and impossible
// travel. Raised events are in the log before TrackSession returns. A zero
// CreatedAt is stamped with the engine clock.
func (e *Engine) TrackSession(ctx context.Context, sess Session) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if sess.SessionID == "" || sess.Identity == "" {
		return ErrInvalidSession
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = e.now()
	}

	if err := e.sessions.Add(sess); err != nil {
		return err
	}
	e.metrics.Inc(MetricSessionTracked)

	e.checkMultipleDevices(ctx, sess)
	e.checkImpossibleTravel(ctx, sess)

	return nil
}

// GetSession returns the tracked session with the given id.
func (e *Engine) GetSession(sessionID string) (Session, error) {
	if e == nil {
		return Session{}, ErrEngineNotReady
	}
	sess, ok := e.sessions.Get(sessionID)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// GetActiveSessions returns the identity's sessions that are flagged active
// and whose last activity falls within the configured activity window.
func (e *Engine) GetActiveSessions(identity string) []Session {
	if e == nil {
		return nil
	}
	return e.sessions.Active(identity)
}

// RefreshActivity stamps the session's last-activity time with now. A
// terminated session cannot be refreshed back to life.
func (e *Engine) RefreshActivity(sessionID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.sessions.Touch(sessionID)
}

// TerminateSession marks the session inactive. The session is retained in
// history for the travel check and stats; termination is idempotent.
func (e *Engine) TerminateSession(sessionID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.sessions.Terminate(sessionID); err != nil {
		return err
	}
	e.metrics.Inc(MetricSessionTerminated)
	return nil
}

// TerminateAllSessions marks every session of the identity inactive and
// returns how many were still active.
func (e *Engine) TerminateAllSessions(identity string) int {
	if e == nil {
		return 0
	}
	terminated := e.sessions.TerminateAll(identity)
	for i := 0; i < terminated; i++ {
		e.metrics.Inc(MetricSessionTerminated)
	}
	return terminated
}

// GetSessionStats summarizes the identity's session history.
func (e *Engine) GetSessionStats(identity string) SessionStats {
	if e == nil {
		return SessionStats{}
	}
	return e.sessions.Stats(identity)
}
