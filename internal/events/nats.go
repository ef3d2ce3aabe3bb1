// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/logging"
)

const (
	reconnectBufSize = 8 * 1024 * 1024
	streamMaxAge     = 7 * 24 * time.Hour
	dedupeWindow     = 2 * time.Minute
)

// StreamName derives the JetStream stream name from a topic prefix.
func StreamName(prefix string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(prefix)) + "_EVENTS"
}

// natsOptions returns connection options with reconnect handling.
func natsOptions(cfg *config.NATSConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("roommatch"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(reconnectBufSize),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
		natsgo.ErrorHandler(func(_ *natsgo.Conn, sub *natsgo.Subscription, err error) {
			fields := watermill.LogFields{}
			if sub != nil {
				fields["subject"] = sub.Subject
			}
			logger.Error("NATS error", err, fields)
		}),
	}
}

// NewNATSPublisher creates a Watermill JetStream publisher for url. The
// stream must already exist; see EnsureStream.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNATSPublisher(cfg *config.NATSConfig, url string, logger zerolog.Logger) (message.Publisher, error) {
	wmLogger := logging.NewWatermillAdapter(logger)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(cfg, wmLogger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

// EnsureStream creates or updates the stream capturing every topic under
// prefix and returns its current info. It is idempotent.
func EnsureStream(ctx context.Context, url, prefix string) (*jetstream.StreamInfo, error) {
	nc, err := natsgo.Connect(url, natsgo.Name("roommatch-provisioner"))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	name := StreamName(prefix)
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{prefix + ".>"},
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     streamMaxAge,
		Duplicates: dedupeWindow,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", name, err)
	}

	// The handle is bound to nc, which closes on return.
	info, err := stream.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("stream %s info: %w", name, err)
	}
	return info, nil
}

// Connect provisions the stream and returns a ready Publisher for url.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Connect(ctx context.Context, cfg *config.NATSConfig, url string, logger zerolog.Logger) (*Publisher, error) {
	if _, err := EnsureStream(ctx, url, cfg.TopicPrefix); err != nil {
		return nil, err
	}
	pub, err := NewNATSPublisher(cfg, url, logger)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("url", url).Str("stream", StreamName(cfg.TopicPrefix)).Msg("Event publisher connected")
	return NewPublisher(pub, cfg.TopicPrefix, cfg.CircuitBreaker, logger), nil
}
