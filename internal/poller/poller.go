// Package poller periodically re-runs the counter extraction for serve mode.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
)

// Poller refreshes the counter store on a fixed interval.
type Poller struct {
	fetcher  *counters.Fetcher
	store    *counters.Store
	criteria counters.Criteria
	interval time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// New creates a poller writing into the given store.
func New(fetcher *counters.Fetcher, store *counters.Store, criteria counters.Criteria, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher:  fetcher,
		store:    store,
		criteria: criteria,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the polling loop in a background goroutine. The loop keeps the
// previous result set on fetch failure so scrapes stay consistent.
func (p *Poller) Run(ctx context.Context) {
	p.wg.Go(func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.refresh(ctx)

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("poller shutdown complete")
				return
			case <-ticker.C:
				p.refresh(ctx)
			}
		}
	})
}

// Wait blocks until the polling goroutine exits.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) refresh(ctx context.Context) {
	start := time.Now()

	rs, err := p.fetcher.Fetch(ctx, p.criteria)
	if err != nil {
		p.logger.Error("refresh failed", "error", err)
		return
	}

	p.store.Set(rs)
	p.logger.Debug("counters refreshed",
		"counters", rs.Len(),
		"duration", time.Since(start).Round(time.Millisecond))
}
