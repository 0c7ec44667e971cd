package counters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/backend"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/perfdata"
)

// Fetcher extracts counters from a backend by walking the matching hosts,
// their services and the logged check results.
type Fetcher struct {
	client *backend.Client
	logger *slog.Logger
}

// NewFetcher creates a fetcher on top of an authenticated backend client.
func NewFetcher(client *backend.Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

type hostItem struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type serviceItem struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type checkResultItem struct {
	LastCheck float64 `json:"last_check"`
	State     string  `json:"state"`
	StateType string  `json:"state_type"`
	PerfData  string  `json:"perf_data"`
}

// Fetch runs one extraction and returns the deterministically ordered
// result set. A well formed query that matches nothing yields an empty set,
// not an error.
func (f *Fetcher) Fetch(ctx context.Context, crit Criteria) (*ResultSet, error) {
	hosts, err := f.hosts(ctx, crit)
	if err != nil {
		return nil, err
	}
	f.logger.Info("matching hosts", "count", len(hosts))

	rs := &ResultSet{}
	for _, host := range hosts {
		services, err := f.services(ctx, host.ID, crit)
		if err != nil {
			return nil, err
		}
		f.logger.Debug("matching services", "host", host.Name, "count", len(services))

		for _, svc := range services {
			if err := f.collectCheckResults(ctx, host.Name, svc, crit, rs); err != nil {
				return nil, err
			}
		}
	}

	rs.Sort()
	f.logger.Info("extraction done", "counters", rs.Len())
	return rs, nil
}

func (f *Fetcher) hosts(ctx context.Context, crit Criteria) ([]hostItem, error) {
	params := url.Values{}
	params.Set("sort", "name")
	params.Set("projection", encodeProjection("_id", "name"))

	if !matchesAll(crit.Hosts) {
		where, err := encodeWhere(map[string]any{"name": nameClause(crit.Hosts)})
		if err != nil {
			return nil, fmt.Errorf("encode host filter: %w", err)
		}
		params.Set("where", where)
	}

	items, err := f.client.GetAll(ctx, "host", params)
	if err != nil {
		return nil, err
	}

	hosts := make([]hostItem, 0, len(items))
	for _, raw := range items {
		var h hostItem
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, fmt.Errorf("decode host item: %w", err)
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

func (f *Fetcher) services(ctx context.Context, hostID string, crit Criteria) ([]serviceItem, error) {
	clause := map[string]any{"host": hostID}
	if !matchesAll(crit.Services) {
		clause = map[string]any{"$and": []map[string]any{
			{"host": hostID},
			{"name": nameClause(crit.Services)},
		}}
	}
	where, err := encodeWhere(clause)
	if err != nil {
		return nil, fmt.Errorf("encode service filter: %w", err)
	}

	params := url.Values{}
	params.Set("sort", "name")
	params.Set("where", where)
	params.Set("projection", encodeProjection("_id", "host", "name"))

	items, err := f.client.GetAll(ctx, "service", params)
	if err != nil {
		return nil, err
	}

	services := make([]serviceItem, 0, len(items))
	for _, raw := range items {
		var s serviceItem
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode service item: %w", err)
		}
		services = append(services, s)
	}
	return services, nil
}

func (f *Fetcher) collectCheckResults(ctx context.Context, hostName string, svc serviceItem, crit Criteria, rs *ResultSet) error {
	where, err := encodeWhere(map[string]any{"service": svc.ID})
	if err != nil {
		return fmt.Errorf("encode check result filter: %w", err)
	}

	params := url.Values{}
	params.Set("sort", "-last_check")
	params.Set("where", where)
	params.Set("projection", encodeProjection("last_check", "state", "state_type", "perf_data"))

	items, err := f.client.GetAll(ctx, "logcheckresult", params)
	if err != nil {
		return err
	}

	for _, raw := range items {
		var cr checkResultItem
		if err := json.Unmarshal(raw, &cr); err != nil {
			f.logger.Warn("skipping undecodable check result", "host", hostName, "service", svc.Name, "error", err)
			continue
		}

		for _, m := range perfdata.Parse(cr.PerfData) {
			if !crit.WantsMetric(m.Name) {
				continue
			}
			rs.Counters = append(rs.Counters, Counter{
				Host:      hostName,
				Service:   svc.Name,
				Metric:    m.Name,
				Value:     m.Value,
				UOM:       m.UOM,
				Warn:      m.Warn.String(),
				Crit:      m.Crit.String(),
				Min:       m.Min,
				Max:       m.Max,
				Timestamp: int64(cr.LastCheck),
				State:     cr.State,
				StateType: cr.StateType,
			})
		}
	}
	return nil
}
