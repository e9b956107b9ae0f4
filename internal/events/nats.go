// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

//go:build nats

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/reelmatch/internal/config"
)

// openNATS connects a JetStream publisher and subscriber. With
// cfg.Embedded an in-process nats-server is started first and its client
// URL replaces cfg.NATSURL.
func openNATS(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, []func() error, error) {
	url := cfg.NATSURL
	var closers []func() error

	if cfg.Embedded {
		srv, err := NewEmbeddedServer(&ServerConfig{
			Host:     "127.0.0.1",
			Port:     -1,
			StoreDir: cfg.StoreDir,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		url = srv.ClientURL()
		logger.Info("Embedded NATS server started", watermill.LogFields{"url": url})
		// closed after the clients
		closers = append(closers, srv.Close)
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("reelmatch"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		closeAll(closers)
		return nil, nil, nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	// No queue group and no durable name: every replica gets its own
	// ephemeral consumer and sees every event.
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.DeliverNew(),
				natsgo.AckExplicit(),
			},
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		closeAll(closers)
		return nil, nil, nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	return pub, sub, closers, nil
}

func closeAll(closers []func() error) {
	for _, c := range closers {
		_ = c()
	}
}
