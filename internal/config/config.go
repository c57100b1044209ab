// Package config loads the checker's tunable policy from YAML, following
// the teacher's internal/eval_harness.BenchmarkSpec tagging convention
// (SPEC_FULL §10.3).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arbor-lang/arbor/internal/types"
)

// DefaultingEntry names one defaultable class and the concrete type it
// resolves to as a last resort (SPEC_FULL §12.4).
type DefaultingEntry struct {
	Class string `yaml:"class"`
	Type  string `yaml:"type"`
}

// CacheConfig controls the incremental-compilation cache (SPEC_FULL §12.3).
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
}

// CheckerConfig is the checker's full tunable policy. A zero-value
// CheckerConfig must still check programs correctly: Normalize fills in
// every field the checker actually depends on so YAML is optional
// ergonomics, never a required dependency at the API boundary.
type CheckerConfig struct {
	Workers    int               `yaml:"workers"`
	Debug      bool              `yaml:"debug"`
	Defaulting []DefaultingEntry `yaml:"defaulting"`
	Cache      CacheConfig       `yaml:"cache"`
}

// Default returns the policy the checker falls back to when no config file
// is supplied: defaulting enabled with the builtin Num->Int/Fractional->Float
// table, a single worker, incremental cache off.
func Default() *CheckerConfig {
	return &CheckerConfig{
		Workers: 1,
		Defaulting: []DefaultingEntry{
			{Class: "Num", Type: "Int"},
			{Class: "Fractional", Type: "Float"},
		},
	}
}

// Load reads and parses a CheckerConfig from a YAML file at path.
func Load(path string) (*CheckerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills in any field a zero-value or partially-populated
// CheckerConfig left unset, so every caller can treat a CheckerConfig{} as
// already-valid policy (SPEC_FULL §10.3).
func (c *CheckerConfig) Normalize() {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if len(c.Defaulting) == 0 {
		c.Defaulting = Default().Defaulting
	}
}

// namedTypes resolves the handful of primitive type names a defaulting
// table entry can name in YAML.
var namedTypes = map[string]types.Type{
	"Int":    types.TInt,
	"Float":  types.TFloat,
	"String": types.TString,
	"Bool":   types.TBool,
	"Char":   types.TChar,
}

// ToDefaultingConfig builds the internal/types defaulting policy this
// CheckerConfig describes (SPEC_FULL §12.4).
func (c *CheckerConfig) ToDefaultingConfig() *types.DefaultingConfig {
	cfg := &types.DefaultingConfig{Enabled: true, Defaults: map[string]types.Type{}}
	for _, entry := range c.Defaulting {
		t, ok := namedTypes[entry.Type]
		if !ok {
			continue
		}
		cfg.Defaults[entry.Class] = t
	}
	if len(cfg.Defaults) == 0 {
		cfg.Enabled = false
	}
	return cfg
}
