// Package config loads the engine's optional YAML configuration file.
package config

import (
	"fmt"
	"os"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Config is the whole configuration file.
type Config struct {
	Engine  Engine            `yaml:"engine"`
	Log     Log               `yaml:"log"`
	Options map[string]string `yaml:"options"`
	Bench   Bench             `yaml:"bench"`
}

// Engine is what the "uci" command identifies the engine as.
type Engine struct {
	Name   string `yaml:"name"`
	Author string `yaml:"author"`
}

// Log configures the stderr diagnostics logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Bench holds the defaults for the "bench" command arguments.
type Bench struct {
	Hash      int    `yaml:"hash"`
	Threads   int    `yaml:"threads"`
	Limit     int    `yaml:"limit"`
	LimitType string `yaml:"limit_type"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Engine: Engine{Name: "Goose UCI", Author: "the Goose developers"},
		Log:    Log{Level: "info", Format: "console"},
		Bench:  Bench{Hash: 16, Threads: 1, Limit: 6, LimitType: "depth"},
	}
}

// Load reads path on top of the defaults. Fields absent from the file keep
// their default value.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LimitTypes are the limits "bench" can run each position with.
var LimitTypes = []string{"depth", "perft", "nodes", "movetime", "mate", "eval"}

// Validate rejects values that cannot be used as defaults.
func (c *Config) Validate() error {
	if c.Engine.Name == "" {
		return fmt.Errorf("engine.name must not be empty")
	}
	if c.Log.Format != "" && c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format '%s': must be console or json", c.Log.Format)
	}
	if c.Bench.Hash < 1 || c.Bench.Threads < 1 || c.Bench.Limit < 1 {
		return fmt.Errorf("bench.hash, bench.threads and bench.limit must be positive")
	}
	if !slices.Contains(LimitTypes, c.Bench.LimitType) {
		return fmt.Errorf("invalid bench.limit_type '%s'", c.Bench.LimitType)
	}
	return nil
}

// OptionNames returns the names under "options" in a stable order, so that
// options with side effects are applied deterministically.
func (c *Config) OptionNames() []string {
	names := maps.Keys(c.Options)
	slices.Sort(names)
	return names
}
