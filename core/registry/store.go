// Package registry persists the crew registry: one shift definition per
// trade, consumed as a value snapshot by every optimizer run.
package registry

import (
	"context"
	"errors"
	"fmt"

	"maintenance-scheduler/core/model"
)

var (
	// ErrNotFound is returned when no crew exists for a trade.
	ErrNotFound = errors.New("crew not found")
	// ErrDuplicateTrade is returned when adding a trade that already exists.
	ErrDuplicateTrade = errors.New("crew trade already registered")
)

// Store is the crew registry contract. Crews are keyed by trade.
type Store interface {
	// List returns all crews sorted by trade.
	List(ctx context.Context) ([]model.Crew, error)
	Get(ctx context.Context, trade string) (model.Crew, error)
	// Add inserts a new crew; ErrDuplicateTrade if the trade exists.
	Add(ctx context.Context, c model.Crew) error
	// Put replaces an existing crew; ErrNotFound if the trade is unknown.
	Put(ctx context.Context, c model.Crew) error
	Delete(ctx context.Context, trade string) error
	Close() error
}

// Config selects the registry backend.
type Config struct {
	// Driver is "sqlite" or "pgx".
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// SetDefaults applies the embedded sqlite default.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" {
		c.DSN = "./data/crews.db"
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("unsupported registry driver %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("registry dsn is required")
	}
	return nil
}
