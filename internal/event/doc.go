// Package event holds the security-event model, the append-mostly event log,
// and the asynchronous sink dispatcher.
//
// Events are created once by the anomaly detector and are immutable except
// for the resolved flag, which is flipped by identifier through [Log.Resolve]
// so external operators never race concurrent appends.
package event
