// Package config loads the resolution policy file. All fields have working
// defaults so the tool runs without any config; a YAML file can override
// the mapping-file convention and the name heuristics.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the tunable policies of trace resolution and mapping
// lookup by convention.
type Config struct {
	// MapSuffix is appended to a generated file name to locate its mapping
	// document (e.g. "user.js" -> "user.js.map").
	MapSuffix string `yaml:"map_suffix" json:"map_suffix"`

	// RootMarkers are directory names that mark the artifact root inside an
	// absolute frame path; the mapping path is taken from the marker onward.
	RootMarkers []string `yaml:"root_markers" json:"root_markers"`

	// SyntheticPattern is the regexp that classifies a symbol name as
	// obfuscator-generated. Empty disables the heuristic.
	SyntheticPattern string `yaml:"synthetic_pattern" json:"synthetic_pattern"`

	// FallbackColumnZero retries a failed lookup at column 0 of the same
	// line before declaring a miss.
	FallbackColumnZero bool `yaml:"fallback_column_zero" json:"fallback_column_zero"`
}

// Default returns the built-in policy.
func Default() Config {
	return Config{
		MapSuffix:          ".map",
		RootMarkers:        []string{"dist", "build", "out"},
		SyntheticPattern:   `^_0x[0-9a-fA-F]+$`,
		FallbackColumnZero: true,
	}
}

// Load reads a YAML policy file, layering it over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MapSuffix == "" {
		cfg.MapSuffix = ".map"
	}
	return cfg, nil
}
