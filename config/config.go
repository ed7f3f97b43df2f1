package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/areafs/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl      = util.InfoLevel
	DefaultAreaName    = "local"
	DefaultLocalRoot   = "."
	DefaultAreaTypeKey = "type"
)

// AreaConfig holds the raw settings for one area. It must carry a "type" key
// naming a registered area type; the remaining keys belong to that type.
type AreaConfig = map[string]any

// Config contains runtime configuration values.
type Config struct {
	LogLvl      util.LogLevel         // Log level (Default info)
	DefaultArea string                // Name of the area handles use when none is given (Default "local")
	Areas       map[string]AreaConfig // Named area settings (Default a single "local" area rooted at ".")
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	LogLvl      *int                  `yaml:"verbose,omitempty" json:"verbose,omitempty"` // CLI verbosity 1-5
	DefaultArea *string               `yaml:"default_area,omitempty" json:"default_area,omitempty"`
	Areas       map[string]AreaConfig `yaml:"areas,omitempty" json:"areas,omitempty"` // Merged by name
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:      DefaultLogLvl,
		DefaultArea: DefaultAreaName,
		Areas: map[string]AreaConfig{
			DefaultAreaName: {DefaultAreaTypeKey: "local", "root": DefaultLocalRoot},
		},
	}
}

// NewConfig creates a Config from defaults with override applied. A nil
// override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.DefaultArea != nil {
		c.DefaultArea = *override.DefaultArea
	}
	if len(override.Areas) > 0 {
		if c.Areas == nil {
			c.Areas = make(map[string]AreaConfig, len(override.Areas))
		}
		maps.Copy(c.Areas, override.Areas)
	}
}

// Validate checks that the default area exists and every area names its type
func (c *Config) Validate() error {
	if _, ok := c.Areas[c.DefaultArea]; !ok {
		return fmt.Errorf("default area %q is not configured", c.DefaultArea)
	}
	for name, settings := range c.Areas {
		if t, _ := settings[DefaultAreaTypeKey].(string); t == "" {
			return fmt.Errorf("area %q: missing %q", name, DefaultAreaTypeKey)
		}
	}
	return nil
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
