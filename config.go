package govalid

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the configuration surface the core recognises (spec.md
// §6): presently just the annotation-composition cache size. It is kept as
// its own type, separate from Engine, so it can be loaded from YAML ahead of
// constructing an Engine.
type EngineConfig struct {
	Constraints ConstraintsConfig `yaml:"constraints"`
}

type ConstraintsConfig struct {
	Cache CacheConfig `yaml:"cache"`
}

type CacheConfig struct {
	// Size is `constraints.cache.size`: max entries in the annotation
	// composition LRU. Must be positive; a parse error or non-positive
	// value is a startup failure, not a silent fallback.
	Size int `yaml:"size"`
}

// DefaultEngineConfig mirrors the cache size AnnotationComposer itself
// defaults to when given zero.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{Constraints: ConstraintsConfig{Cache: CacheConfig{Size: 256}}}
}

// LoadEngineConfig reads and parses a YAML configuration file. Any read or
// parse error, or a non-positive cache size, is returned as a startup
// failure (spec.md §6: "parse error ⇒ startup failure").
func LoadEngineConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("govalid: reading config %s: %w", path, err)
	}

	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("govalid: parsing config %s: %w", path, err)
	}

	if cfg.Constraints.Cache.Size <= 0 {
		return EngineConfig{}, fmt.Errorf("govalid: constraints.cache.size must be positive, got %d", cfg.Constraints.Cache.Size)
	}
	return cfg, nil
}
