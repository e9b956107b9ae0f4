// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package events distributes model events between reelmatch processes.

When a training run persists a new model the trainer publishes a
recommend.ModelEvent. Every serving process consumes the topic and hot
reloads the model for that content type, so replicas converge on the
latest run without polling the registry.

Two backends are available, both built on Watermill:

  - memory: an in-process gochannel pub/sub. Training and serving share
    one process. This is the default.
  - nats: NATS JetStream through watermill-nats, optionally with an
    embedded nats-server. Requires building with -tags=nats.

Publishing goes through a circuit breaker so an unreachable broker never
stalls a training run; the event is dropped and the failure is logged
and counted.

Usage:

	bus, err := events.Open(&cfg.Events, logger)
	if err != nil {
	    return err
	}
	defer bus.Close()

	trainer.SetPublisher(bus)
	go bus.Consume(ctx, func(ctx context.Context, ev recommend.ModelEvent) error {
	    _, err := recommender.Reload(ctx, ev.ContentType)
	    return err
	})
*/
package events
