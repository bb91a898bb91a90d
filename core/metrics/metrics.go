// Package metrics defines the sink contract used to export per-step
// simulation statistics. Implementations live under infra/metrics.
package metrics

import (
	"fmt"

	"github.com/mobilitylabs/evsim/core/sim"
)

// Sink receives aggregate simulation statistics once per step.
type Sink interface {
	RecordStep(stats sim.Stats) error
}

// Closer is implemented by sinks that hold external connections.
type Closer interface {
	Close()
}

// NopSink discards everything.
type NopSink struct{}

// RecordStep implements Sink.
func (NopSink) RecordStep(sim.Stats) error { return nil }

// Config selects which metrics sinks are active.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9464"
	}
}

// Validate checks fields required by the enabled sinks.
func (c Config) Validate() error {
	if c.InfluxEnabled {
		if c.InfluxURL == "" {
			return fmt.Errorf("influx_url is required when influx is enabled")
		}
		if c.InfluxOrg == "" || c.InfluxBucket == "" {
			return fmt.Errorf("influx_org and influx_bucket are required when influx is enabled")
		}
	}
	return nil
}
