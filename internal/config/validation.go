// Package config provides configuration management for the Dinger prediction service.
package config

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

// weightSumTolerance allows for YAML rounding when checking that component
// weights form a convex combination.
const weightSumTolerance = 1e-6

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("dateformat", validateDateFormat)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration. A failure here is fatal: the
// run aborts before any fetching or scoring happens.
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateDateFormat(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	w := cfg.Scoring.Weights
	sum := w.Batter + w.Pitcher + w.Park + w.Weather + w.RecentForm
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.6f", sum)
	}

	if err := validateTierLadder(cfg.Scoring.Tiers); err != nil {
		return err
	}

	if cfg.Scoring.ProbabilityMax <= cfg.Scoring.ProbabilityMin {
		return fmt.Errorf("probability_max must exceed probability_min")
	}

	ranges := []struct {
		name string
		r    Range
	}{
		{"iso", cfg.Scoring.Ranges.ISO},
		{"barrel_pct", cfg.Scoring.Ranges.BarrelPct},
		{"xhr", cfg.Scoring.Ranges.ExpectedHR},
		{"hr_per_9", cfg.Scoring.Ranges.HRPer9},
		{"barrel_allowed", cfg.Scoring.Ranges.BarrelAllowed},
		{"park_factor", cfg.Scoring.Ranges.ParkFactor},
		{"last_7_iso", cfg.Scoring.Ranges.Last7ISO},
	}
	for _, entry := range ranges {
		if entry.r.Width() <= 0 {
			return fmt.Errorf("normalization range %s must have max > min", entry.name)
		}
	}

	startDate, err := time.Parse("2006-01-02", cfg.Backtest.StartDate)
	if err != nil {
		return fmt.Errorf("invalid backtest start_date format: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", cfg.Backtest.EndDate)
	if err != nil {
		return fmt.Errorf("invalid backtest end_date format: %w", err)
	}
	if !startDate.Before(endDate) {
		return fmt.Errorf("backtest start_date must be before end_date")
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	return nil
}

// validateTierLadder checks that the threshold table is a proper descending
// ladder ending at zero, so every score maps to exactly one tier.
func validateTierLadder(tiers []TierThreshold) error {
	if len(tiers) < 2 {
		return fmt.Errorf("tier ladder requires at least two rungs")
	}

	sorted := make([]TierThreshold, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinScore > sorted[j].MinScore })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinScore == sorted[i-1].MinScore {
			return fmt.Errorf("tier thresholds must be distinct, %q and %q share %.3f",
				sorted[i-1].Tier, sorted[i].Tier, sorted[i].MinScore)
		}
	}

	if sorted[len(sorted)-1].MinScore != 0 {
		return fmt.Errorf("lowest tier rung must start at 0 so every score is classified")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max", "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "dateformat":
			errMsg += fmt.Sprintf("- Field '%s' must be a YYYY-MM-DD date, got '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
