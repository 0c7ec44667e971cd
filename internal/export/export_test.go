package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResultSet() *counters.ResultSet {
	min, max := 0.0, 8.0
	rs := &counters.ResultSet{Counters: []counters.Counter{
		{
			Host: "localhost", Service: "Cpu", Metric: "load1",
			Value: 0.8, Warn: "0:2", Crit: "0:4", Min: &min, Max: &max,
			Timestamp: 1700000060, State: "OK", StateType: "HARD",
		},
		{
			Host: "localhost", Service: "Cpu", Metric: "load1",
			Value: 0.66, Warn: "0:2", Crit: "0:4", Min: &min, Max: &max,
			Timestamp: 1700000120, State: "OK", StateType: "HARD",
		},
		{
			Host: "router", Service: "Ping", Metric: "rta",
			Value: 0.521, UOM: "ms",
			Timestamp: 1700000120, State: "OK", StateType: "HARD",
		},
	}}
	rs.Sort()
	return rs
}

func TestWrite_Deterministic(t *testing.T) {
	rs := testResultSet()

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			var first, second bytes.Buffer
			require.NoError(t, Write(&first, rs, format))
			require.NoError(t, Write(&second, rs, format))

			assert.NotZero(t, first.Len())
			assert.Equal(t, first.Bytes(), second.Bytes())
		})
	}
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, testResultSet(), Format("xml"))

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "xml", formatErr.Format)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testResultSet(), FormatJSON))

	assert.JSONEq(t, `{
		"localhost": {"Cpu": {"load1": [[1700000060, 0.8], [1700000120, 0.66]]}},
		"router": {"Ping": {"rta": [[1700000120, 0.521]]}}
	}`, buf.String())
}

func TestWriteJSON_EmptySet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &counters.ResultSet{}, FormatJSON))
	assert.JSONEq(t, `{}`, buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testResultSet(), FormatCSV))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(csvHeader, ","), lines[0])
	assert.Equal(t, "localhost,Cpu,load1,0.8,,0:2,0:4,0,8,1700000060,OK,HARD", lines[1])
	assert.Equal(t, "router,Ping,rta,0.521,ms,,,,,1700000120,OK,HARD", lines[3])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testResultSet(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "HOST")
	assert.Contains(t, out, "localhost")
	assert.Contains(t, out, "2023-11-14 22:14:20")
	assert.Contains(t, out, "0.521")
}

func TestWriteProm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testResultSet(), FormatProm))

	out := buf.String()
	assert.Contains(t, out, "# TYPE alignak_counter gauge")
	// Only the latest sample of each series is exposed.
	assert.Contains(t, out, `alignak_counter{host="localhost",metric="load1",service="Cpu",uom=""} 0.66`)
	assert.Contains(t, out, `alignak_counter{host="router",metric="rta",service="Ping",uom="ms"} 0.521`)
	assert.NotContains(t, out, "0.8")
}

func TestResultSet_Latest(t *testing.T) {
	latest := testResultSet().Latest()
	require.Len(t, latest, 2)
	assert.Equal(t, 0.66, latest[0].Value)
	assert.Equal(t, 0.521, latest[1].Value)
}

func TestOTLPConfig_Validate(t *testing.T) {
	cfg := OTLPConfig{Enabled: true, Endpoint: "localhost:4317"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "grpc", cfg.Transport)
	assert.Equal(t, "alignak-counters", cfg.Resource["service.name"])

	missing := OTLPConfig{Enabled: true}
	assert.Error(t, missing.Validate())

	bad := OTLPConfig{Enabled: true, Endpoint: "x", Transport: "carrier-pigeon"}
	assert.Error(t, bad.Validate())

	disabled := OTLPConfig{}
	require.NoError(t, disabled.Validate())
}
