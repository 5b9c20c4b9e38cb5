package scheduler

import (
	"fmt"
	"time"

	"maintenance-scheduler/core/solver"
)

// Gains weight the objective terms. A fully zero block selects the defaults.
type Gains struct {
	// Age weights each day a work order has been waiting.
	Age float64 `json:"age"`
	// Priority weights (5 - priority), so priority 1 counts four times.
	Priority float64 `json:"priority"`
	// Safety is added once for safety-flagged work orders.
	Safety float64 `json:"safety"`
	// Type is added once for preventive maintenance work orders.
	Type float64 `json:"type"`
	// LoadBalance weights the per-crew-day anti-concentration nudge.
	LoadBalance float64 `json:"load_balance"`
}

// DefaultGains returns the standard objective weights.
func DefaultGains() Gains {
	return Gains{Age: 0.1, Priority: 1, Safety: 1, Type: 1, LoadBalance: 1}
}

// Config defines settings for the schedule optimizer.
type Config struct {
	Gains Gains `json:"gains"`
	// TimeLimitSeconds bounds the solver wall time per run.
	TimeLimitSeconds int `json:"time_limit_seconds"`
	// MaxNodes bounds the branch and bound tree per run.
	MaxNodes int `json:"max_nodes"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Gains == (Gains{}) {
		c.Gains = DefaultGains()
	}
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 10
	}
	if c.MaxNodes == 0 {
		c.MaxNodes = solver.DefaultMaxNodes
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"age":          c.Gains.Age,
		"priority":     c.Gains.Priority,
		"safety":       c.Gains.Safety,
		"type":         c.Gains.Type,
		"load_balance": c.Gains.LoadBalance,
	} {
		if v < 0 {
			return fmt.Errorf("gain %s must not be negative", name)
		}
	}
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("time limit must not be negative")
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("max nodes must not be negative")
	}
	return nil
}

// TimeLimit returns the solver wall time budget.
func (c Config) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds) * time.Second
}
