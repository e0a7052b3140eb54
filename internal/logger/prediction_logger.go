// Package logger provides audit logging for daily prediction runs.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/models"
)

// PredictionLogger writes a structured audit trail entry per scored matchup,
// so a day's run can be reconstructed from logs alone.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction audit logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction-audit"),
	}
}

// LogScore logs one scored matchup.
func (pl *PredictionLogger) LogScore(res *models.ScoreResult) {
	m := res.Matchup
	pl.WithFields(logrus.Fields{
		"game_id":           m.GameID(),
		"game_pk":           m.GamePK,
		"batter":            m.BatterName,
		"pitcher":           m.PitcherName,
		"venue":             m.Venue,
		"score":             res.Score,
		"probability":       res.Probability,
		"tier":              res.Tier,
		"confidence":        res.Confidence,
		"defaulted_fields":  res.DefaultedFields,
		"pitcher_confirmed": m.PitcherConfirmed,
	}).Info("Matchup scored")
}

// LogExclusion logs a matchup dropped from the batch with the reason.
func (pl *PredictionLogger) LogExclusion(m *models.Matchup, reason string) {
	pl.WithFields(logrus.Fields{
		"game_pk": m.GamePK,
		"batter":  m.BatterName,
		"pitcher": m.PitcherName,
		"reason":  reason,
	}).Warn("Matchup excluded from scoring")
}

// LogRunSummary logs the end-of-run totals.
func (pl *PredictionLogger) LogRunSummary(date time.Time, scored, excluded, degraded int, elapsed time.Duration) {
	pl.WithFields(logrus.Fields{
		"date":     date.Format("2006-01-02"),
		"scored":   scored,
		"excluded": excluded,
		"degraded": degraded,
		"elapsed":  elapsed.String(),
	}).Info("Prediction run complete")
}
