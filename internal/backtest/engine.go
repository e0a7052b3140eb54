package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/metrics"
	"github.com/yourusername/dinger/internal/repository"
)

// Engine replays the stored prediction log over a date range and evaluates
// it against settled outcomes. Running twice over the same range yields
// identical reports.
type Engine struct {
	predictions repository.PredictionRepository
	logger      *logrus.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(predictions repository.PredictionRepository, logger *logrus.Logger) *Engine {
	return &Engine{predictions: predictions, logger: logger}
}

// Run evaluates the range and returns the metrics report.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Metrics, error) {
	start := time.Now()
	defer func() {
		metrics.BacktestDuration.Observe(time.Since(start).Seconds())
	}()

	recs, err := e.predictions.GetByDateRange(ctx, cfg.StartDate, cfg.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("no predictions between %s and %s",
			cfg.StartDate.Format("2006-01-02"), cfg.EndDate.Format("2006-01-02"))
	}

	report := CalculateMetrics(recs, cfg)

	e.logger.WithFields(logrus.Fields{
		"start":    cfg.StartDate.Format("2006-01-02"),
		"end":      cfg.EndDate.Format("2006-01-02"),
		"total":    report.TotalPredictions,
		"settled":  report.Settled,
		"hit_rate": report.OverallHitRate,
		"brier":    report.BrierScore,
		"auc":      report.AUC,
	}).Info("Backtest complete")

	return &report, nil
}
