// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

//go:build nats

package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

func TestNATSEmbeddedRoundTrip(t *testing.T) {
	bus, err := Open(&config.EventsConfig{
		Backend:  "nats",
		Embedded: true,
		StoreDir: t.TempDir(),
		Topic:    "reelmatch.models",
	}, logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })

	c := newCollector()
	startConsumer(t, bus, c.handle)

	ev := recommend.ModelEvent{JobID: "202601010000-nats", ContentType: recommend.Shows, MAPAtK: 0.1}
	// the ephemeral consumer delivers new messages only; retry until it is attached
	deadline := time.Now().Add(10 * time.Second)
	for {
		if err := bus.PublishModel(context.Background(), ev); err != nil {
			t.Fatalf("PublishModel: %v", err)
		}
		select {
		case <-c.got:
			c.mu.Lock()
			got := c.events[0]
			c.mu.Unlock()
			if got.JobID != ev.JobID || got.ContentType != recommend.Shows {
				t.Fatalf("got %+v", got)
			}
			return
		case <-time.After(500 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("no event received from embedded NATS")
		}
	}
}
