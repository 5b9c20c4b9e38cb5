package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"maintenance-scheduler/core/metrics"
	"maintenance-scheduler/core/registry"
	"maintenance-scheduler/core/scheduler"
	"maintenance-scheduler/core/scheduler/history"
	"maintenance-scheduler/infra/mqtt"
)

type Config struct {
	Server    ServerConfig     `json:"server"`
	Registry  registry.Config  `json:"registry"`
	Scheduler scheduler.Config `json:"scheduler"`
	History   history.Config   `json:"history"`
	Metrics   metrics.Config   `json:"metrics"`
	MQTT      mqtt.Config      `json:"mqtt"`
}

// Load reads the file at path, applies MS_* environment overrides, then
// section defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. MS_SERVER__ADDR=:9090.
	if err := k.Load(env.Provider("MS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ms_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	c.Server.SetDefaults()
	c.Registry.SetDefaults()
	c.Scheduler.SetDefaults()
	c.History.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Registry.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return c.MQTT.Validate()
}
