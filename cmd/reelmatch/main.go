// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Command reelmatch trains, inspects and queries recommendation models
// from the command line. It reads the same configuration as the server.
//
//	reelmatch schema
//	reelmatch train -c movies -k 10 --metric cosine
//	reelmatch runs -c movies --latest
//	reelmatch recommend -c shows -f items.json
//	reelmatch token -u ops
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/reelmatch/internal/cli"
	"github.com/tomtom215/reelmatch/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.RootCommand(config.LoadWithKoanf).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
