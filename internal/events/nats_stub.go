// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

//go:build !nats

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/reelmatch/internal/config"
)

// openNATS is unavailable without the nats build tag.
func openNATS(_ *config.EventsConfig, _ watermill.LoggerAdapter) (message.Publisher, message.Subscriber, []func() error, error) {
	return nil, nil, nil, fmt.Errorf("NATS events backend not available: build with -tags=nats")
}
