package metrics

import (
	"fmt"

	"maintenance-scheduler/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	// Sinks lists the sink modules to instantiate, e.g. prometheus or influx.
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr serves /metrics on this address when non-empty.
	PrometheusAddr string `json:"prometheus_addr"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {}

// Validate checks that every configured sink names a type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics sink %d: type is required", i)
		}
	}
	return nil
}
