package event

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// Sink receives high-severity security events from the engine's dispatcher.
// Implementations must be safe for concurrent use and must not block longer
// than the supplied context allows.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// NoOpSink silently discards all events.
type NoOpSink struct{}

// Emit discards the event.
func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink forwards events into a buffered channel, for consumers that
// want to drain events on their own goroutine.
type ChannelSink struct {
	events chan Event
}

// NewChannelSink creates a ChannelSink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

// Emit delivers the event, blocking until the channel accepts it or ctx is
// cancelled.
func (s *ChannelSink) Emit(ctx context.Context, e Event) {
	select {
	case s.events <- e:
	case <-ctx.Done():
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes events as newline-delimited JSON to an io.Writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a JSONWriterSink that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

// Emit marshals and writes the event. Marshal failures are dropped silently;
// the dispatcher must never fail the emitting operation.
func (s *JSONWriterSink) Emit(_ context.Context, e Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
