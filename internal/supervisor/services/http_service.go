// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPServer is the subset of *http.Server the service drives.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server as a supervised service.
//
// The listener is bound inside Serve so a restart after a crash rebinds the
// port, and Addr reports the bound address once it is known (useful with
// port 0).
type HTTPServerService struct {
	server          HTTPServer
	addr            string
	shutdownTimeout time.Duration

	mu    sync.Mutex
	bound net.Addr
	ready chan struct{}
}

// NewHTTPServerService serves server on addr. shutdownTimeout bounds how
// long in-flight requests may take to finish.
func NewHTTPServerService(server HTTPServer, addr string, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		ready:           make(chan struct{}),
	}
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.addr, err)
	}
	h.setBound(ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)

	case <-ctx.Done():
		// ctx is already canceled
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPServerService) setBound(addr net.Addr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bound = addr
	select {
	case <-h.ready:
	default:
		close(h.ready)
	}
}

// Addr waits until the listener is bound and returns its address.
func (h *HTTPServerService) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-h.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bound, nil
}

// String implements fmt.Stringer for suture's logs.
func (h *HTTPServerService) String() string {
	return "http-server"
}
