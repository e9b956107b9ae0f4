// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Metadata keys set on every model event message.
const (
	MetadataContentType = "content_type"
	MetadataJobID       = "job_id"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus is closed")

// Handler processes one decoded model event.
type Handler func(ctx context.Context, ev recommend.ModelEvent) error

// Bus publishes and consumes model events on a single topic.
type Bus struct {
	backend   string
	topic     string
	publisher message.Publisher
	sub       message.Subscriber
	breaker   *gobreaker.CircuitBreaker[interface{}]
	closers   []func() error
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open builds the bus selected by cfg.Backend.
func Open(cfg *config.EventsConfig, logger zerolog.Logger) (*Bus, error) {
	logger = logger.With().Str("component", "events").Str("backend", cfg.Backend).Logger()
	adapter := NewZerologAdapter(logger)

	switch cfg.Backend {
	case "memory":
		return NewMemoryBus(cfg.Topic, logger), nil
	case "nats":
		pub, sub, closers, err := openNATS(cfg, adapter)
		if err != nil {
			return nil, err
		}
		return newBus("nats", cfg.Topic, pub, sub, closers, logger), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// NewMemoryBus returns an in-process bus. Events published before a
// consumer subscribes are dropped.
func NewMemoryBus(topic string, logger zerolog.Logger) *Bus {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, NewZerologAdapter(logger))
	return newBus("memory", topic, ch, ch, nil, logger)
}

func newBus(backend, topic string, pub message.Publisher, sub message.Subscriber, closers []func() error, logger zerolog.Logger) *Bus {
	settings := gobreaker.Settings{
		Name:        "events-" + backend,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("event publisher circuit breaker changed state")
		},
	}
	return &Bus{
		backend:   backend,
		topic:     topic,
		publisher: pub,
		sub:       sub,
		breaker:   gobreaker.NewCircuitBreaker[interface{}](settings),
		closers:   closers,
		logger:    logger,
	}
}

// Backend returns "memory" or "nats".
func (b *Bus) Backend() string { return b.backend }

// Topic returns the topic model events are published on.
func (b *Bus) Topic() string { return b.topic }

// BreakerState reports the publish circuit breaker state.
func (b *Bus) BreakerState() string { return b.breaker.State().String() }

// PublishModel implements recommend.ModelPublisher.
func (b *Bus) PublishModel(ctx context.Context, ev recommend.ModelEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode model event: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(MetadataContentType, string(ev.ContentType))
	msg.Metadata.Set(MetadataJobID, ev.JobID)
	msg.SetContext(ctx)

	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.publisher.Publish(b.topic, msg)
	})
	metrics.RecordEventPublished(b.topic, err)
	if err != nil {
		return fmt.Errorf("publish model event %s: %w", ev.JobID, err)
	}

	b.logger.Debug().Str("job_id", ev.JobID).Str("content_type", string(ev.ContentType)).
		Str("message_id", msg.UUID).Msg("model event published")
	return nil
}

// Consume delivers model events to fn until ctx is canceled or the bus is
// closed. Messages are acked whether or not fn succeeds: a failed reload
// falls back to lazy loading on the next request, and redelivering would
// only repeat the failure. Undecodable payloads are dropped.
func (b *Bus) Consume(ctx context.Context, fn Handler) error {
	messages, err := b.sub.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.handle(ctx, msg, fn)
		}
	}
}

func (b *Bus) handle(ctx context.Context, msg *message.Message, fn Handler) {
	defer msg.Ack()

	logger := b.logger.With().Str("message_id", msg.UUID).Logger()

	var ev recommend.ModelEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		metrics.RecordEventConsumed(b.topic, err)
		logger.Warn().Err(err).Msg("dropping undecodable model event")
		return
	}
	ct, err := recommend.ParseContentType(string(ev.ContentType))
	if err == nil && ev.JobID == "" {
		err = errors.New("missing job id")
	}
	if err != nil {
		metrics.RecordEventConsumed(b.topic, err)
		logger.Warn().Err(err).Msg("dropping invalid model event")
		return
	}
	ev.ContentType = ct

	err = fn(ctx, ev)
	metrics.RecordEventConsumed(b.topic, err)
	if err != nil {
		logger.Error().Err(err).Str("job_id", ev.JobID).Str("content_type", string(ev.ContentType)).
			Msg("model event handler failed")
	}
}

// Close shuts down the publisher, the subscriber and any embedded broker.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if b.sub != nil && any(b.sub) != any(b.publisher) {
		if err := b.sub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
