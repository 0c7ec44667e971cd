package export

import (
	"fmt"
	"io"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const (
	promMetricName = "alignak_counter"
	promMetricHelp = "Performance data counter extracted from the Alignak backend."
)

var promDesc = prometheus.NewDesc(
	promMetricName,
	promMetricHelp,
	[]string{"host", "service", "metric", "uom"},
	nil,
)

// Collector exposes the latest sample of each counter series as a
// Prometheus gauge. The snapshot function is called on every scrape.
type Collector struct {
	snapshot func() *counters.ResultSet
}

// NewCollector creates a collector reading from the given snapshot source.
func NewCollector(snapshot func() *counters.ResultSet) *Collector {
	return &Collector{snapshot: snapshot}
}

// Describe sends the metric descriptor to the channel.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- promDesc
}

// Collect sends the latest sample of every counter series.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, cnt := range c.snapshot().Latest() {
		m, err := prometheus.NewConstMetric(
			promDesc,
			prometheus.GaugeValue,
			cnt.Value,
			cnt.Host, cnt.Service, cnt.Metric, cnt.UOM,
		)
		if err != nil {
			continue
		}
		ch <- m
	}
}

// writeProm emits the Prometheus text exposition format. Only the latest
// sample of each series is exported since a series cannot carry several
// samples in one exposition.
func writeProm(w io.Writer, rs *counters.ResultSet) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector(func() *counters.ResultSet { return rs })); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather counters: %w", err)
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode exposition: %w", err)
		}
	}
	return nil
}
