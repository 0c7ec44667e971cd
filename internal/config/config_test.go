package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultBackendURL, cfg.Backend.URL)
	assert.Equal(t, DefaultUsername, cfg.Backend.Username)
	assert.Equal(t, string(DefaultFormat), cfg.Export.Format)
	assert.Equal(t, DefaultServeInterval, cfg.Serve.Interval)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  url: http://backend.example.com:5000
  username: reader
  password: s3cret
  timeout: 5s
query:
  hosts: localhost,router
  metrics: load1
export:
  format: csv
serve:
  listen: ":9700"
  interval: 30s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend.example.com:5000", cfg.Backend.URL)
	assert.Equal(t, "reader", cfg.Backend.Username)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "localhost,router", cfg.Query.Hosts)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, ":9700", cfg.Serve.Listen)
	assert.Equal(t, 30*time.Second, cfg.Serve.Interval)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultServePath, cfg.Serve.Path)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_BadFormat(t *testing.T) {
	cfg := Default()
	cfg.Export.Format = "xml"

	err := cfg.Validate()
	var formatErr *export.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestValidate_ShortInterval(t *testing.T) {
	cfg := Default()
	cfg.Serve.Interval = 100 * time.Millisecond
	assert.Error(t, cfg.Validate())
}

func TestValidate_OTLP(t *testing.T) {
	cfg := Default()
	cfg.Export.OTLP = export.OTLPConfig{Enabled: true}
	assert.Error(t, cfg.Validate())

	cfg.Export.OTLP.Endpoint = "localhost:4317"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "grpc", cfg.Export.OTLP.Transport)
}
