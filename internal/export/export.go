// Package export serializes result sets into the supported output formats
// and forwards them to OTLP collectors.
package export

import (
	"fmt"
	"io"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
)

// Format selects an output serialization.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
	FormatProm  Format = "prom"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatTable, FormatProm}
}

// FormatError indicates an unsupported output format was requested.
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported output format %q (supported: json, csv, table, prom)", e.Format)
}

// Write serializes the result set to w. Output is byte identical for
// repeated exports of the same set in the same format.
func Write(w io.Writer, rs *counters.ResultSet, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rs)
	case FormatCSV:
		return writeCSV(w, rs)
	case FormatTable:
		return writeTable(w, rs)
	case FormatProm:
		return writeProm(w, rs)
	default:
		return &FormatError{Format: string(format)}
	}
}
