// Package config loads host configuration and node-type catalogues from
// YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/meikuraledutech/nodegraph"
	"github.com/meikuraledutech/nodegraph/editor"
	"gopkg.in/yaml.v3"
)

// Config is the host configuration file (nodegraph.yaml).
type Config struct {
	Version int `yaml:"version"`
	Server  struct {
		Listen  string `yaml:"listen" validate:"required"`
		GraphID string `yaml:"graph_id" validate:"required"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	} `yaml:"log"`
	Editor struct {
		Grid struct {
			Enabled bool    `yaml:"enabled"`
			Size    float64 `yaml:"size" validate:"gte=0"`
		} `yaml:"grid"`
		DragThrottle    time.Duration  `yaml:"drag_throttle" validate:"gte=0"`
		PersistDebounce time.Duration  `yaml:"persist_debounce" validate:"gte=0"`
		Viewport        nodegraph.Rect `yaml:"viewport"`
	} `yaml:"editor"`
	Clipboard struct {
		Backend string `yaml:"backend" validate:"oneof=memory system"`
	} `yaml:"clipboard"`
	NodeTypes string `yaml:"node_types"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var c Config
	c.Version = 1
	c.Server.Listen = ":8080"
	c.Server.GraphID = "default"
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Editor.Grid.Size = 20
	c.Editor.DragThrottle = editor.DefaultDragThrottle
	c.Editor.PersistDebounce = 500 * time.Millisecond
	c.Clipboard.Backend = "memory"
	return &c
}

// Load reads path over the defaults and applies environment overrides.
// An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		// The file must declare its own version.
		cfg.Version = 0
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if cfg.Version != 1 {
			return nil, fmt.Errorf("unsupported nodegraph.yaml version: %d", cfg.Version)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with DATABASE_URL and NODEGRAPH_LISTEN.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("NODEGRAPH_LISTEN"); v != "" {
		c.Server.Listen = v
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := nodegraph.Validator().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// EditorOptions maps the editor section onto editor.Options. Registry,
// clipboard, logger and callbacks are left for the host to fill in.
func (c *Config) EditorOptions() editor.Options {
	return editor.Options{
		Grid:         editor.Grid{Enabled: c.Editor.Grid.Enabled, Size: c.Editor.Grid.Size},
		DragThrottle: c.Editor.DragThrottle,
		Viewport:     nodegraph.FixedViewport(c.Editor.Viewport),
	}
}
