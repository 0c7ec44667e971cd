// Package app wires the application components together.
package app

import (
	"context"
	"log/slog"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/backend"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/config"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
)

// App holds initialized application components.
type App struct {
	Config   *config.Config
	Client   *backend.Client
	Fetcher  *counters.Fetcher
	Criteria counters.Criteria
}

// New initializes the application from a validated configuration.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	client, err := backend.New(cfg.Backend, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Client:  client,
		Fetcher: counters.NewFetcher(client, logger),
		Criteria: counters.Criteria{
			Hosts:    counters.SplitList(cfg.Query.Hosts),
			Services: counters.SplitList(cfg.Query.Services),
			Metrics:  counters.SplitList(cfg.Query.Metrics),
		},
	}, nil
}

// Extract authenticates and runs one counter extraction.
func (a *App) Extract(ctx context.Context) (*counters.ResultSet, error) {
	if err := a.Client.Login(ctx); err != nil {
		return nil, err
	}
	return a.Fetcher.Fetch(ctx, a.Criteria)
}
