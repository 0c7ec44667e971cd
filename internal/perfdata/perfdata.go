// Package perfdata parses Nagios plugin performance data strings as found in
// the perf_data field of Alignak check results.
//
// The format is a space separated list of datums:
//
//	'label'=value[UOM];[warn];[crit];[min];[max]
//
// Labels containing spaces or special characters are single-quoted. Warn and
// crit are threshold ranges in the Nagios range syntax ([@][start:]end).
package perfdata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Metric is a single parsed performance data datum.
type Metric struct {
	Name  string
	Value float64
	UOM   string
	Warn  *Range
	Crit  *Range
	Min   *float64
	Max   *float64
}

// Range is a Nagios threshold range. A value is an alert when it falls
// outside [Start, End], or inside when Inside is set (the "@" prefix).
type Range struct {
	Start  float64
	End    float64
	Inside bool
}

// ParseRange parses the Nagios range syntax: "10" means 0:10, "10:" means
// 10:+inf, "~:10" means -inf:10, "10:20" a closed range and a leading "@"
// inverts the alerting condition.
func ParseRange(s string) (*Range, error) {
	if s == "" {
		return nil, nil
	}

	r := &Range{Start: 0, End: math.Inf(1)}
	if strings.HasPrefix(s, "@") {
		r.Inside = true
		s = s[1:]
	}

	start, end, found := strings.Cut(s, ":")
	if !found {
		end = start
		start = ""
		r.Start = 0
	}

	switch start {
	case "", "~":
		if start == "~" {
			r.Start = math.Inf(-1)
		}
	default:
		v, err := strconv.ParseFloat(start, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range start %q: %w", start, err)
		}
		r.Start = v
	}

	if end != "" {
		v, err := strconv.ParseFloat(end, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q: %w", end, err)
		}
		r.End = v
	}

	if r.Start > r.End {
		return nil, fmt.Errorf("invalid range %q: start greater than end", s)
	}

	return r, nil
}

// Alerts reports whether v violates the threshold.
func (r *Range) Alerts(v float64) bool {
	if r == nil {
		return false
	}
	if r.Inside {
		return v >= r.Start && v <= r.End
	}
	return v < r.Start || v > r.End
}

func (r *Range) String() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	if r.Inside {
		sb.WriteByte('@')
	}
	switch {
	case math.IsInf(r.Start, -1):
		sb.WriteString("~:")
	case r.Start != 0:
		sb.WriteString(strconv.FormatFloat(r.Start, 'f', -1, 64))
		sb.WriteByte(':')
	default:
		sb.WriteString("0:")
	}
	if !math.IsInf(r.End, 1) {
		sb.WriteString(strconv.FormatFloat(r.End, 'f', -1, 64))
	}
	return sb.String()
}

// Parse splits a perf_data string into its metrics. Datums that cannot be
// parsed are skipped, matching the lenient behavior of monitoring plugins
// that emit sloppy performance data.
func Parse(s string) []Metric {
	var metrics []Metric
	for _, tok := range tokenize(s) {
		m, err := parseDatum(tok)
		if err != nil {
			continue
		}
		metrics = append(metrics, m)
	}
	return metrics
}

// tokenize splits on spaces, keeping single-quoted labels intact.
func tokenize(s string) []string {
	var (
		toks   []string
		cur    strings.Builder
		quoted bool
	)
	for _, r := range s {
		switch {
		case r == '\'':
			quoted = !quoted
			cur.WriteRune(r)
		case (r == ' ' || r == '\t' || r == '\n') && !quoted:
			if cur.Len() > 0 {
				toks = append(toks, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		toks = append(toks, cur.String())
	}
	return toks
}

func parseDatum(tok string) (Metric, error) {
	var m Metric

	name, rest, err := splitLabel(tok)
	if err != nil {
		return m, err
	}
	m.Name = name

	fields := strings.Split(rest, ";")

	m.Value, m.UOM, err = parseValue(fields[0])
	if err != nil {
		return m, err
	}

	if len(fields) > 1 {
		if m.Warn, err = ParseRange(fields[1]); err != nil {
			return m, err
		}
	}
	if len(fields) > 2 {
		if m.Crit, err = ParseRange(fields[2]); err != nil {
			return m, err
		}
	}
	if len(fields) > 3 && fields[3] != "" {
		v, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return m, fmt.Errorf("invalid min %q: %w", fields[3], err)
		}
		m.Min = &v
	}
	if len(fields) > 4 && fields[4] != "" {
		v, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return m, fmt.Errorf("invalid max %q: %w", fields[4], err)
		}
		m.Max = &v
	}

	return m, nil
}

// splitLabel separates the (possibly quoted) label from the value part.
func splitLabel(tok string) (name, rest string, err error) {
	if strings.HasPrefix(tok, "'") {
		end := strings.LastIndex(tok, "'")
		if end == 0 {
			return "", "", fmt.Errorf("unterminated quoted label in %q", tok)
		}
		name = tok[1:end]
		rest = tok[end+1:]
		if !strings.HasPrefix(rest, "=") {
			return "", "", fmt.Errorf("missing '=' after label in %q", tok)
		}
		return name, rest[1:], nil
	}

	name, rest, found := strings.Cut(tok, "=")
	if !found || name == "" {
		return "", "", fmt.Errorf("missing '=' in datum %q", tok)
	}
	return name, rest, nil
}

// parseValue splits the numeric value from its trailing unit of measurement.
func parseValue(s string) (float64, string, error) {
	if s == "" || s == "U" {
		return 0, "", fmt.Errorf("no value in %q", s)
	}

	cut := len(s)
	for cut > 0 {
		c := s[cut-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		cut--
	}

	v, err := strconv.ParseFloat(s[:cut], 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, s[cut:], nil
}
