package perfdata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		input string
		want  []Metric
	}{
		"single metric": {
			input: "time=0.25s",
			want:  []Metric{{Name: "time", Value: 0.25, UOM: "s"}},
		},
		"full datum": {
			input: "load1=0.66;2;4;0;8",
			want: []Metric{{
				Name:  "load1",
				Value: 0.66,
				Warn:  &Range{Start: 0, End: 2},
				Crit:  &Range{Start: 0, End: 4},
				Min:   ptr(0.0),
				Max:   ptr(8.0),
			}},
		},
		"quoted label with spaces": {
			input: "'C: used space'=12GB;80;90;0;100",
			want: []Metric{{
				Name:  "C: used space",
				Value: 12,
				UOM:   "GB",
				Warn:  &Range{Start: 0, End: 80},
				Crit:  &Range{Start: 0, End: 90},
				Min:   ptr(0.0),
				Max:   ptr(100.0),
			}},
		},
		"multiple metrics": {
			input: "rta=0.521ms;100;200;0 pl=0%;20;40;0",
			want: []Metric{
				{
					Name: "rta", Value: 0.521, UOM: "ms",
					Warn: &Range{Start: 0, End: 100},
					Crit: &Range{Start: 0, End: 200},
					Min:  ptr(0.0),
				},
				{
					Name: "pl", Value: 0, UOM: "%",
					Warn: &Range{Start: 0, End: 20},
					Crit: &Range{Start: 0, End: 40},
					Min:  ptr(0.0),
				},
			},
		},
		"negative value": {
			input: "temp=-4C",
			want:  []Metric{{Name: "temp", Value: -4, UOM: "C"}},
		},
		"counter uom": {
			input: "uptime=12345c",
			want:  []Metric{{Name: "uptime", Value: 12345, UOM: "c"}},
		},
		"empty thresholds": {
			input: "used=42MB;;;0;512",
			want: []Metric{{
				Name: "used", Value: 42, UOM: "MB",
				Min: ptr(0.0), Max: ptr(512.0),
			}},
		},
		"malformed datum skipped": {
			input: "ok=1 broken garbage=nan ok2=2",
			want: []Metric{
				{Name: "ok", Value: 1},
				{Name: "ok2", Value: 2},
			},
		},
		"unknown value skipped": {
			input: "missing=U ok=1",
			want:  []Metric{{Name: "ok", Value: 1}},
		},
		"empty input": {
			input: "",
			want:  nil,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.input))
		})
	}
}

func TestParseRange(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    *Range
		wantErr bool
	}{
		"empty":          {input: "", want: nil},
		"simple max":     {input: "10", want: &Range{Start: 0, End: 10}},
		"min only":       {input: "10:", want: &Range{Start: 10, End: math.Inf(1)}},
		"closed":         {input: "10:20", want: &Range{Start: 10, End: 20}},
		"negative start": {input: "~:10", want: &Range{Start: math.Inf(-1), End: 10}},
		"inside":         {input: "@10:20", want: &Range{Start: 10, End: 20, Inside: true}},
		"inverted":       {input: "20:10", wantErr: true},
		"garbage":        {input: "a:b", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseRange(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRange_Alerts(t *testing.T) {
	outside := &Range{Start: 10, End: 20}
	assert.True(t, outside.Alerts(5))
	assert.True(t, outside.Alerts(25))
	assert.False(t, outside.Alerts(15))

	inside := &Range{Start: 10, End: 20, Inside: true}
	assert.True(t, inside.Alerts(15))
	assert.False(t, inside.Alerts(25))

	var none *Range
	assert.False(t, none.Alerts(123))
}

func TestRange_String(t *testing.T) {
	r, err := ParseRange("@10:20")
	require.NoError(t, err)
	assert.Equal(t, "@10:20", r.String())

	r, err = ParseRange("80")
	require.NoError(t, err)
	assert.Equal(t, "0:80", r.String())
}

func ptr(v float64) *float64 { return &v }
