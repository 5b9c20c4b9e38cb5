// Package history persists one entry per optimizer run so planners can audit
// past schedules and the silent drops that shaped them.
package history

import (
	"context"
	"fmt"
	"time"

	"maintenance-scheduler/core/model"
)

// Entry captures one optimizer run.
type Entry struct {
	RunID       string     `json:"run_id"`
	Timestamp   time.Time  `json:"timestamp"`
	StartDate   model.Date `json:"start_date"`
	Status      string     `json:"status"`
	Objective   float64    `json:"objective"`
	WorkOrders  int        `json:"work_orders"`
	Crews       int        `json:"crews"`
	Assignments int        `json:"assignments"`
	// Dropped lists work orders excluded from the model: no crew for the
	// trade, an unservable pin, or no day with enough free capacity.
	Dropped    []string `json:"dropped,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// Query defines filters for retrieving entries.
type Query struct {
	Start  time.Time
	End    time.Time
	Status string
}

// Store persists run entries and supports querying them in time order.
type Store interface {
	Append(ctx context.Context, e Entry) error
	Query(ctx context.Context, q Query) ([]Entry, error)
	Close() error
}

// Config defines settings for run history storage and rotation.
type Config struct {
	// Enabled turns run history on. Disabled keeps the service stateless.
	Enabled bool `json:"enabled"`
	// Backend selects the store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers JSONL rotation when the file exceeds this size.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "./data/runs.jsonl"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown history backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("history path is required")
	}
	return nil
}

// New builds the store selected by cfg. A JSONL backend with a size bound
// rotates; without one it appends to a single file forever.
func New(cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		if cfg.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return NewJSONLStore(cfg.Path)
	}
}

func matches(e Entry, q Query) bool {
	if !q.Start.IsZero() && e.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && e.Timestamp.After(q.End) {
		return false
	}
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	return true
}
