package export

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
)

const tableTimeFormat = "2006-01-02 15:04:05"

// writeTable emits an aligned human readable listing. Timestamps render in
// UTC so the output does not depend on the local zone.
func writeTable(w io.Writer, rs *counters.ResultSet) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "HOST\tSERVICE\tMETRIC\tVALUE\tUOM\tTIME\tSTATE")
	for _, c := range rs.Counters {
		ts := time.Unix(c.Timestamp, 0).UTC().Format(tableTimeFormat)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Host, c.Service, c.Metric, formatFloat(c.Value), c.UOM, ts, c.State)
	}

	return tw.Flush()
}
