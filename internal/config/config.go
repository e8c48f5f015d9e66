// Package config loads the GC and debug tunables SPEC_FULL.md's ambient
// stack section specifies: environment variables read with
// github.com/caarlos0/env, optionally overlaid by a YAML file (parsed with
// gopkg.in/yaml.v3) so a deployment can check tunables into a config file
// instead of exporting a pile of env vars.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime tunable the vm and compiler packages accept.
type Config struct {
	DebugTrace    bool    `env:"EMBER_DEBUG_TRACE" yaml:"debugTrace"`
	DebugStressGC bool    `env:"EMBER_DEBUG_STRESS_GC" yaml:"debugStressGC"`
	GCGrowFactor  int64   `env:"EMBER_GC_GROW_FACTOR" yaml:"gcGrowFactor"`
	GCHeapGrowMin int64   `env:"EMBER_GC_HEAP_GROW_MIN" yaml:"gcHeapGrowMin"`
	MaxStack      int     `env:"EMBER_MAX_STACK" yaml:"maxStack"`
}

// Load reads defaults, overlays a YAML file at path if it exists, then
// overlays environment variables (the most specific source wins).
func Load(path string) (*Config, error) {
	// Defaults are set here rather than with envDefault tags: env.Parse
	// applies an envDefault whenever the variable is unset, which would
	// overwrite the YAML values loaded below.
	cfg := &Config{GCGrowFactor: 2, GCHeapGrowMin: 1048576, MaxStack: 16384}

	if path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}
