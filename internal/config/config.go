// Package config loads project-level settings for an analysis run.
//
// Kept and adapted from the teacher's internal/config: YAML via
// gopkg.in/yaml.v3 remains the primary format, loaded from codegraph.yml
// or codegraph.yaml in the project root. Fields are generalized from the
// teacher's decompose-pipeline concerns (output directory, template
// path, single-agent mode) to this engine's concerns (languages,
// concurrency, inference depth bounds, cache policy, store backend).
//
// A TOML fallback (codegraph.toml) is adapted from gavlooth-codeloom's
// own TOML-first config loader, tried when no YAML config is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/codegraph/internal/inference"
)

// ProjectConfig holds project-level settings for one analysis run.
type ProjectConfig struct {
	Languages           []string               `yaml:"languages,omitempty" toml:"languages,omitempty"`
	ExcludeDirs         []string               `yaml:"excludeDirs,omitempty" toml:"exclude_dirs,omitempty"`
	MaxConcurrency      int                    `yaml:"maxConcurrency,omitempty" toml:"max_concurrency,omitempty"`
	MaxPathLength       int                    `yaml:"maxPathLength,omitempty" toml:"max_path_length,omitempty"`
	MaxInheritanceDepth int                    `yaml:"maxInheritanceDepth,omitempty" toml:"max_inheritance_depth,omitempty"`
	CachePolicy         inference.CachePolicy  `yaml:"cachePolicy,omitempty" toml:"cache_policy,omitempty"`
	StoreKind           string                 `yaml:"storeKind,omitempty" toml:"store_kind,omitempty"`
	Verbose             bool                   `yaml:"verbose,omitempty" toml:"verbose,omitempty"`
}

const (
	// StoreKindMemory selects the in-process MemoryStore backend.
	StoreKindMemory = "memory"
	// StoreKindKuzu selects the KuzuDB-backed persistent store.
	StoreKindKuzu = "kuzu"
)

// DefaultConfig returns the settings used when no config file is present
// or a field is left unset.
func DefaultConfig() *ProjectConfig {
	return &ProjectConfig{
		Languages:           []string{"go", "typescript", "python"},
		ExcludeDirs:         []string{".git", "node_modules", "vendor"},
		MaxConcurrency:      4,
		MaxPathLength:       10,
		MaxInheritanceDepth: 10,
		CachePolicy:         inference.PolicyEager,
		StoreKind:           StoreKindMemory,
	}
}

// Load attempts to read codegraph.yml/codegraph.yaml, falling back to
// codegraph.toml, from dir. Returns DefaultConfig (not an error) if no
// config file exists; fields left unset in a found file are filled from
// the defaults.
func Load(dir string) (*ProjectConfig, error) {
	cfg := DefaultConfig()

	for _, name := range []string{"codegraph.yml", "codegraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		applyDefaults(cfg)
		return cfg, nil
	}

	tomlPath := filepath.Join(dir, "codegraph.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", tomlPath, err)
		}
		applyDefaults(cfg)
		return cfg, nil
	}

	return cfg, nil
}

// applyDefaults fills zero-value fields left unset by a partially
// specified config file.
func applyDefaults(cfg *ProjectConfig) {
	defaults := DefaultConfig()
	if len(cfg.Languages) == 0 {
		cfg.Languages = defaults.Languages
	}
	if len(cfg.ExcludeDirs) == 0 {
		cfg.ExcludeDirs = defaults.ExcludeDirs
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaults.MaxConcurrency
	}
	if cfg.MaxPathLength <= 0 {
		cfg.MaxPathLength = defaults.MaxPathLength
	}
	if cfg.MaxInheritanceDepth <= 0 {
		cfg.MaxInheritanceDepth = defaults.MaxInheritanceDepth
	}
	if cfg.CachePolicy == "" {
		cfg.CachePolicy = defaults.CachePolicy
	}
	if cfg.StoreKind == "" {
		cfg.StoreKind = defaults.StoreKind
	}
}
