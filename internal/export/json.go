package export

import (
	"encoding/json"
	"io"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
)

// writeJSON emits the nested host -> service -> metric -> samples document.
// Map keys marshal in sorted order, so the output is deterministic.
func writeJSON(w io.Writer, rs *counters.ResultSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs.Grouped())
}
