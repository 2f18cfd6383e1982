package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration, read from BLUEPRINT_* environment
// variables. The sections are embedded so their keys carry no extra prefix.
type Config struct {
	LogConfig
	CompilerConfig
	LayoutConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// CompilerConfig holds pipeline configuration.
type CompilerConfig struct {
	// SchemaPath points to a type schema JSON file replacing the embedded one.
	SchemaPath  string `envconfig:"SCHEMA"`
	MaxParallel int    `envconfig:"MAX_PARALLEL" default:"0"`
}

// LayoutConfig holds node size and spacing.
type LayoutConfig struct {
	NodeWidth   float64 `envconfig:"NODE_WIDTH" default:"350"`
	NodeHeight  float64 `envconfig:"NODE_HEIGHT" default:"120"`
	NodeSep     float64 `envconfig:"NODE_SEP" default:"30"`
	RankSep     float64 `envconfig:"RANK_SEP" default:"60"`
	TierSpacing float64 `envconfig:"TIER_SPACING" default:"200"`
	BaseOffset  float64 `envconfig:"BASE_OFFSET" default:"0"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("BLUEPRINT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		LogConfig: LogConfig{
			Level: "info",
		},
		LayoutConfig: LayoutConfig{
			NodeWidth:   350,
			NodeHeight:  120,
			NodeSep:     30,
			RankSep:     60,
			TierSpacing: 200,
		},
	}
}
