// Package config holds the application configuration, loadable from an
// optional YAML file and overridable by command line flags.
package config

import (
	"fmt"
	"time"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/backend"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/export"
)

const (
	DefaultBackendURL = "http://127.0.0.1:5000"
	DefaultUsername   = "admin"
	DefaultPassword   = "admin"

	DefaultFormat = export.FormatJSON

	DefaultServeListen   = ":9595"
	DefaultServePath     = "/metrics"
	DefaultServeInterval = 60 * time.Second
)

// Config is the complete application configuration.
type Config struct {
	Backend backend.Config `yaml:"backend"`
	Query   QueryConfig    `yaml:"query"`
	Export  ExportConfig   `yaml:"export"`
	Serve   ServeConfig    `yaml:"serve"`
}

// QueryConfig is the default search filter, comma separated name lists with
// "all" as the wildcard.
type QueryConfig struct {
	Hosts    string `yaml:"hosts,omitempty"`
	Services string `yaml:"services,omitempty"`
	Metrics  string `yaml:"metrics,omitempty"`
}

// ExportConfig selects the output format and destination.
type ExportConfig struct {
	Format string            `yaml:"format,omitempty"`
	Output string            `yaml:"output,omitempty"`
	OTLP   export.OTLPConfig `yaml:"otlp,omitempty"`
}

// ServeConfig configures the Prometheus scrape endpoint mode.
type ServeConfig struct {
	Listen   string        `yaml:"listen,omitempty"`
	Path     string        `yaml:"path,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Backend.URL == "" {
		c.Backend.URL = DefaultBackendURL
	}
	if c.Backend.Username == "" {
		c.Backend.Username = DefaultUsername
	}
	if c.Backend.Password == "" {
		c.Backend.Password = DefaultPassword
	}
	if c.Export.Format == "" {
		c.Export.Format = string(DefaultFormat)
	}
	if c.Serve.Listen == "" {
		c.Serve.Listen = DefaultServeListen
	}
	if c.Serve.Path == "" {
		c.Serve.Path = DefaultServePath
	}
	if c.Serve.Interval <= 0 {
		c.Serve.Interval = DefaultServeInterval
	}
}

// Validate applies defaults and checks configuration consistency.
func (c *Config) Validate() error {
	c.applyDefaults()

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if !validFormat(c.Export.Format) {
		return &export.FormatError{Format: c.Export.Format}
	}

	if err := c.Export.OTLP.Validate(); err != nil {
		return err
	}

	if c.Serve.Interval < time.Second {
		return fmt.Errorf("serve interval %s too short, minimum is 1s", c.Serve.Interval)
	}

	return nil
}

func validFormat(format string) bool {
	for _, f := range export.Formats() {
		if string(f) == format {
			return true
		}
	}
	return false
}
