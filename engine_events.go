package authtrust

import "time"

// GetSuspiciousActivities returns every security event recorded for the
// identity, in append order.
func (e *Engine) GetSuspiciousActivities(identity string) []SecurityEvent {
	if e == nil {
		return nil
	}
	return e.eventLog.ForIdentity(identity)
}

// GetUnresolvedActivities returns all events across identities whose
// resolved flag is unset.
func (e *Engine) GetUnresolvedActivities() []SecurityEvent {
	if e == nil {
		return nil
	}
	return e.eventLog.Unresolved()
}

// ResolveActivity marks the event with the given id resolved. Returns
// [ErrEventNotFound] for an unknown id.
func (e *Engine) ResolveActivity(eventID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.eventLog.Resolve(eventID)
}

// PurgeResolvedActivities drops resolved events older than the cutoff and
// returns the purge count. Unresolved events are kept regardless of age.
func (e *Engine) PurgeResolvedActivities(before time.Time) int {
	if e == nil {
		return 0
	}
	return e.eventLog.PurgeResolved(before)
}
