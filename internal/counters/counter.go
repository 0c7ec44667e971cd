// Package counters holds the counter data model and the fetch orchestration
// that extracts performance data counters from an Alignak Backend.
package counters

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Counter is one performance data sample attached to a monitored host or
// service. Counters are read-only; their lifecycle is owned by the backend.
type Counter struct {
	Host      string   `json:"host"`
	Service   string   `json:"service"`
	Metric    string   `json:"metric"`
	Value     float64  `json:"value"`
	UOM       string   `json:"uom,omitempty"`
	Warn      string   `json:"warn,omitempty"`
	Crit      string   `json:"crit,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Timestamp int64    `json:"timestamp"`
	State     string   `json:"state,omitempty"`
	StateType string   `json:"state_type,omitempty"`
}

// Sample is one (timestamp, value) pair of a counter series. It marshals to
// the [timestamp, value] array shape the original export format uses.
type Sample struct {
	Timestamp int64
	Value     float64
}

// MarshalJSON encodes the sample as a two element array.
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]json.Number{
		json.Number(fmt.Sprintf("%d", s.Timestamp)),
		json.Number(formatFloat(s.Value)),
	})
}

// UnmarshalJSON decodes the two element array form.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var arr [2]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	s.Timestamp = int64(arr[0])
	s.Value = arr[1]
	return nil
}

// ResultSet is the ordered collection of counters returned by one query.
type ResultSet struct {
	Counters []Counter
}

// Len returns the number of counters in the set.
func (rs *ResultSet) Len() int { return len(rs.Counters) }

// Empty reports whether the query matched nothing.
func (rs *ResultSet) Empty() bool { return len(rs.Counters) == 0 }

// Sort orders the set by host, service, metric and timestamp so that every
// export of the same set is byte identical.
func (rs *ResultSet) Sort() {
	sort.SliceStable(rs.Counters, func(i, j int) bool {
		a, b := rs.Counters[i], rs.Counters[j]
		if a.Host != b.Host {
			return a.Host < b.Host
		}
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		if a.Metric != b.Metric {
			return a.Metric < b.Metric
		}
		return a.Timestamp < b.Timestamp
	})
}

// Latest reduces the set to the most recent sample of each
// (host, service, metric) series, keeping the set order. The receiver must
// already be sorted.
func (rs *ResultSet) Latest() []Counter {
	var latest []Counter
	for _, c := range rs.Counters {
		n := len(latest)
		if n > 0 && latest[n-1].Host == c.Host && latest[n-1].Service == c.Service && latest[n-1].Metric == c.Metric {
			latest[n-1] = c
			continue
		}
		latest = append(latest, c)
	}
	return latest
}

// Grouped is the nested host -> service -> metric -> samples shape.
type Grouped map[string]map[string]map[string][]Sample

// Grouped rearranges the set into the nested export shape.
func (rs *ResultSet) Grouped() Grouped {
	g := make(Grouped)
	for _, c := range rs.Counters {
		services, ok := g[c.Host]
		if !ok {
			services = make(map[string]map[string][]Sample)
			g[c.Host] = services
		}
		metrics, ok := services[c.Service]
		if !ok {
			metrics = make(map[string][]Sample)
			services[c.Service] = metrics
		}
		metrics[c.Metric] = append(metrics[c.Metric], Sample{
			Timestamp: c.Timestamp,
			Value:     c.Value,
		})
	}
	return g
}

func formatFloat(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
