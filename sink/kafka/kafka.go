// Package kafka provides an [authtrust.EventSink] that publishes alertable
// security events to a Kafka topic.
//
// Events are JSON-encoded and keyed by identity, so all events for one
// identity land on the same partition in order. Write failures are logged
// and counted, never surfaced to the engine's verification or tracking
// paths.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	authtrust "github.com/shareflow/authtrust"
)

// Config tunes the Kafka sink.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Sink publishes security events to Kafka.
type Sink struct {
	writer *kafkago.Writer
	cfg    Config
	logger *zap.Logger
	failed atomic.Uint64
}

// NewSink creates a Kafka-backed sink. logger may be nil.
func NewSink(cfg Config, logger *zap.Logger) *Sink {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		MaxAttempts:  3,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafkago.RequireOne,
	}

	return &Sink{writer: writer, cfg: cfg, logger: logger}
}

// Emit implements [authtrust.EventSink].
func (s *Sink) Emit(ctx context.Context, e authtrust.SecurityEvent) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.failed.Add(1)
		s.logger.Error("encode security event", zap.Error(err))
		return
	}

	msg := kafkago.Message{
		Key:   []byte(e.Identity),
		Value: payload,
		Time:  e.Timestamp,
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.failed.Add(1)
		s.logger.Error("publish security event",
			zap.String("event_id", e.ID),
			zap.String("topic", s.cfg.Topic),
			zap.Error(err),
		)
	}
}

// Failed reports how many events could not be published.
func (s *Sink) Failed() uint64 {
	return s.failed.Load()
}

// Close flushes and closes the underlying writer.
func (s *Sink) Close() error {
	return s.writer.Close()
}
