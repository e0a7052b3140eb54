// Package config provides configuration management for the Dinger prediction service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "DINGER"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields; a missing config file is tolerated and defaults plus environment
// variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setScoringDefaults(v)
	v.SetDefault("app.name", "dinger")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("features.test_mode", false)
	v.SetDefault("features.alerts_enabled", true)
	v.SetDefault("cache.dir", "cache")

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// setScoringDefaults seeds the documented default scoring constants. These
// are the calibration starting point, tunable via backtesting, not
// invariants.
func setScoringDefaults(v *viper.Viper) {
	v.SetDefault("scoring.weights.batter", 0.35)
	v.SetDefault("scoring.weights.pitcher", 0.25)
	v.SetDefault("scoring.weights.park", 0.15)
	v.SetDefault("scoring.weights.weather", 0.15)
	v.SetDefault("scoring.weights.recent_form", 0.10)

	v.SetDefault("scoring.ranges.iso.min", 0.050)
	v.SetDefault("scoring.ranges.iso.max", 0.350)
	v.SetDefault("scoring.ranges.barrel_pct.min", 0.0)
	v.SetDefault("scoring.ranges.barrel_pct.max", 20.0)
	v.SetDefault("scoring.ranges.xhr.min", 0.0)
	v.SetDefault("scoring.ranges.xhr.max", 0.12)
	v.SetDefault("scoring.ranges.hr_per_9.min", 0.4)
	v.SetDefault("scoring.ranges.hr_per_9.max", 2.2)
	v.SetDefault("scoring.ranges.barrel_allowed.min", 2.0)
	v.SetDefault("scoring.ranges.barrel_allowed.max", 13.0)
	v.SetDefault("scoring.ranges.park_factor.min", 0.80)
	v.SetDefault("scoring.ranges.park_factor.max", 1.20)
	v.SetDefault("scoring.ranges.last_7_iso.min", 0.050)
	v.SetDefault("scoring.ranges.last_7_iso.max", 0.350)

	v.SetDefault("scoring.defaults.iso", 0.165)
	v.SetDefault("scoring.defaults.barrel_pct", 7.5)
	v.SetDefault("scoring.defaults.xhr", 0.04)
	v.SetDefault("scoring.defaults.hr_per_9", 1.25)
	v.SetDefault("scoring.defaults.barrel_allowed", 7.5)
	v.SetDefault("scoring.defaults.park_factor", 1.0)

	v.SetDefault("scoring.tiers", []map[string]interface{}{
		{"tier": "Lock", "min_score": 0.70},
		{"tier": "Sleeper", "min_score": 0.50},
		{"tier": "Risky", "min_score": 0.0},
	})

	v.SetDefault("scoring.probability_min", 0.02)
	v.SetDefault("scoring.probability_max", 0.12)
	v.SetDefault("scoring.pitch_matchup_weight", 0.5)
	v.SetDefault("scoring.bullpen_weight", 0.08)
	v.SetDefault("scoring.suppression_cutoff", 0.45)
	v.SetDefault("scoring.suppression_penalty", 0.04)
	v.SetDefault("scoring.default_penalty", 0.05)
	v.SetDefault("scoring.probable_penalty", 0.15)
	v.SetDefault("scoring.top_n", 15)
}
