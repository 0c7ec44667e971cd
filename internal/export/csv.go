package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
)

var csvHeader = []string{
	"host", "service", "metric", "value", "uom",
	"warn", "crit", "min", "max", "timestamp", "state", "state_type",
}

// writeCSV emits one row per counter sample, in set order.
func writeCSV(w io.Writer, rs *counters.ResultSet) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range rs.Counters {
		row := []string{
			c.Host,
			c.Service,
			c.Metric,
			formatFloat(c.Value),
			c.UOM,
			c.Warn,
			c.Crit,
			formatOptFloat(c.Min),
			formatOptFloat(c.Max),
			strconv.FormatInt(c.Timestamp, 10),
			c.State,
			c.StateType,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
