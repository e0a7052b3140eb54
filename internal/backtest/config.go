// Package backtest evaluates historical predictions against settled outcomes
// and reports calibration quality per tier.
package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/dinger/internal/config"
)

// Config holds a backtest run's parameters.
type Config struct {
	StartDate  time.Time
	EndDate    time.Time
	Buckets    int
	OutputPath string
}

// FromAppConfig parses the application backtest section into a run config.
func FromAppConfig(cfg config.BacktestConfig) (Config, error) {
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return Config{}, fmt.Errorf("invalid start date %q: %w", cfg.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", cfg.EndDate)
	if err != nil {
		return Config{}, fmt.Errorf("invalid end date %q: %w", cfg.EndDate, err)
	}
	if end.Before(start) {
		return Config{}, fmt.Errorf("end date %s precedes start date %s", cfg.EndDate, cfg.StartDate)
	}

	buckets := cfg.Buckets
	if buckets < 2 {
		buckets = 10
	}

	return Config{
		StartDate:  start,
		EndDate:    end,
		Buckets:    buckets,
		OutputPath: cfg.OutputPath,
	}, nil
}
