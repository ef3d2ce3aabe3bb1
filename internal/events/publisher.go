// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/match/engine"
	"github.com/tomtom215/roommatch/internal/metrics"
)

// Metadata keys set on every published message.
const (
	MetadataEventType     = "event_type"
	MetadataKey           = "key"
	MetadataCorrelationID = "correlation_id"
)

// Publish results recorded in metrics.
const (
	resultSuccess  = "success"
	resultFailure  = "failure"
	resultRejected = "rejected"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher adapts a Watermill publisher to engine.Publisher with circuit
// breaker protection.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[interface{}]
	prefix    string
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ engine.Publisher = (*Publisher)(nil)

// NewPublisher wraps pub. Topics are prefix + "." + event type.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublisher(pub message.Publisher, prefix string, cb config.CircuitBreakerConfig, logger zerolog.Logger) *Publisher {
	logger = logger.With().Str("component", "events").Logger()
	return &Publisher{
		publisher: pub,
		breaker:   newCircuitBreaker("events-"+prefix, cb, logger),
		prefix:    prefix,
		logger:    logger,
	}
}

// Topic returns the topic for an event type.
func (p *Publisher) Topic(eventType string) string {
	return Topic(p.prefix, eventType)
}

// Topic joins a prefix and an event type.
func Topic(prefix, eventType string) string {
	return prefix + "." + eventType
}

// Publish encodes event and sends it to its topic.
//
//nolint:gocritic // event passed by value as a snapshot
func (p *Publisher) Publish(ctx context.Context, event engine.Event) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}

	if event.CorrelationID == "" {
		event.CorrelationID = logging.CorrelationIDFromContext(ctx)
	}

	msg, err := newMessage(ctx, &event)
	if err != nil {
		metrics.RecordEventPublish(event.Type, resultFailure)
		return err
	}

	topic := p.Topic(event.Type)
	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(topic, msg)
	})

	switch {
	case err == nil:
		metrics.RecordEventPublish(event.Type, resultSuccess)
		p.logger.Debug().
			Str("topic", topic).
			Str("message_id", msg.UUID).
			Msg("Published event")
		return nil
	case isRejected(err):
		metrics.RecordEventPublish(event.Type, resultRejected)
		return fmt.Errorf("publish %s: %w", topic, err)
	default:
		metrics.RecordEventPublish(event.Type, resultFailure)
		return fmt.Errorf("publish %s: %w", topic, err)
	}
}

func newMessage(ctx context.Context, event *engine.Event) (*message.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataEventType, event.Type)
	msg.Metadata.Set(MetadataKey, event.Key)
	if event.CorrelationID != "" {
		msg.Metadata.Set(MetadataCorrelationID, event.CorrelationID)
	}
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	return msg, nil
}

// BreakerState reports the circuit breaker state.
func (p *Publisher) BreakerState() gobreaker.State {
	return p.breaker.State()
}

// Close closes the underlying publisher. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

// DecodeEvent parses a message published by Publisher. Payload decodes
// into a generic JSON value.
func DecodeEvent(msg *message.Message) (engine.Event, error) {
	var event engine.Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return engine.Event{}, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return event, nil
}
