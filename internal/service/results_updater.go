package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/models"
	"github.com/yourusername/dinger/internal/repository"
)

// OutcomeSource supplies settled per-batter HR outcomes for a date.
type OutcomeSource interface {
	Outcomes(ctx context.Context, date time.Time) ([]*models.GameOutcome, error)
}

// ResultsUpdater settles yesterday's predictions against actual boxscores.
type ResultsUpdater struct {
	outcomes    OutcomeSource
	predictions repository.PredictionRepository
	store       repository.OutcomeRepository
	logger      *logrus.Logger
}

// NewResultsUpdater creates a results updater.
func NewResultsUpdater(outcomes OutcomeSource, predictions repository.PredictionRepository, store repository.OutcomeRepository, logger *logrus.Logger) *ResultsUpdater {
	return &ResultsUpdater{
		outcomes:    outcomes,
		predictions: predictions,
		store:       store,
		logger:      logger,
	}
}

// SettleDate fetches a date's outcomes, stores them, and marks every matching
// prediction. Predictions whose game never finished stay unsettled for the
// next pass.
func (u *ResultsUpdater) SettleDate(ctx context.Context, date time.Time) (settled int, err error) {
	outcomes, err := u.outcomes.Outcomes(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch outcomes: %w", err)
	}
	if len(outcomes) == 0 {
		u.logger.WithField("date", date.Format("2006-01-02")).Info("No final games to settle yet")
		return 0, nil
	}

	if err := u.store.UpsertBatch(ctx, outcomes); err != nil {
		return 0, fmt.Errorf("failed to store outcomes: %w", err)
	}

	byBatter := make(map[outcomeKey]bool, len(outcomes))
	for _, o := range outcomes {
		byBatter[outcomeKey{o.GamePK, o.BatterID}] = o.HitHR
	}

	preds, err := u.predictions.GetByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to load predictions: %w", err)
	}

	for _, p := range preds {
		if p.HitHR != nil {
			continue
		}
		hit, ok := byBatter[outcomeKey{p.GamePK, p.BatterID}]
		if !ok {
			continue
		}
		if err := u.predictions.Settle(ctx, p.ID, hit); err != nil {
			u.logger.WithError(err).WithField("game_id", p.GameID).Warn("Failed to settle prediction")
			continue
		}
		settled++
	}

	u.logger.WithFields(logrus.Fields{
		"date":     date.Format("2006-01-02"),
		"outcomes": len(outcomes),
		"settled":  settled,
	}).Info("Results settled")
	return settled, nil
}

// SettleBacklog settles every unsettled prediction older than the cutoff,
// one date at a time.
func (u *ResultsUpdater) SettleBacklog(ctx context.Context, before time.Time) (int, error) {
	preds, err := u.predictions.GetUnsettled(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to load unsettled predictions: %w", err)
	}

	dates := map[time.Time]bool{}
	for _, p := range preds {
		dates[p.GameDate] = true
	}

	var total int
	for date := range dates {
		n, err := u.SettleDate(ctx, date)
		if err != nil {
			u.logger.WithError(err).WithField("date", date.Format("2006-01-02")).Warn("Backlog settlement failed for date")
			continue
		}
		total += n
	}
	return total, nil
}

type outcomeKey struct {
	gamePK   int
	batterID int
}
