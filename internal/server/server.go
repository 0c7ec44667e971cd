// Package server exposes the fetched counters as a Prometheus scrape
// endpoint for serve mode.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/export"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP server backing the scrape endpoint.
type Server struct {
	addr   string
	path   string
	server *http.Server
}

// New creates a server exposing the store's latest counters on addr+path.
func New(addr, path string, store *counters.Store) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(export.NewCollector(func() *counters.ResultSet {
		rs, _ := store.Snapshot()
		return rs
	}))

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	))

	return &Server{
		addr: addr,
		path: path,
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start begins serving HTTP requests and blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting scrape endpoint", "addr", s.addr, "path", s.path)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return s.shutdown()
	}
}

// shutdown gracefully stops the server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down scrape endpoint")
	return s.server.Shutdown(ctx)
}
