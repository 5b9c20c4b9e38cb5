package config

import "fmt"

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr"`
	// APIToken guards mutating endpoints when non-empty.
	APIToken string `json:"api_token"`
	// ReadTimeoutSeconds bounds reading a request, body included. Backlog
	// uploads arrive as multipart files, so this stays generous.
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`
	// WriteTimeoutSeconds bounds writing a response. It must exceed the
	// optimizer time limit or long solves are cut off mid-reply.
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
	// IdleTimeoutSeconds bounds keep-alive connections.
	IdleTimeoutSeconds int `json:"idle_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 30
	}
	if c.WriteTimeoutSeconds == 0 {
		c.WriteTimeoutSeconds = 120
	}
	if c.IdleTimeoutSeconds == 0 {
		c.IdleTimeoutSeconds = 60
	}
}

// Validate checks the configuration.
func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	for name, v := range map[string]int{
		"read_timeout_seconds":  c.ReadTimeoutSeconds,
		"write_timeout_seconds": c.WriteTimeoutSeconds,
		"idle_timeout_seconds":  c.IdleTimeoutSeconds,
	} {
		if v < 0 {
			return fmt.Errorf("server %s must not be negative", name)
		}
	}
	return nil
}
