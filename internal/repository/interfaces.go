// Package repository provides PostgreSQL persistence for predictions and
// game outcomes.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/dinger/internal/models"
)

// PredictionRepository persists the daily prediction log. Writes are
// idempotent on (game_date, game_id) so reruns update in place.
type PredictionRepository interface {
	Upsert(ctx context.Context, rec *models.PredictionRecord) error
	UpsertBatch(ctx context.Context, recs []*models.PredictionRecord) error
	GetByDate(ctx context.Context, date time.Time) ([]*models.PredictionRecord, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.PredictionRecord, error)
	GetUnsettled(ctx context.Context, before time.Time) ([]*models.PredictionRecord, error)
	Settle(ctx context.Context, id uuid.UUID, hitHR bool) error
}

// OutcomeRepository persists settled HR outcomes from the day-after results
// feed.
type OutcomeRepository interface {
	UpsertBatch(ctx context.Context, outcomes []*models.GameOutcome) error
	GetByDate(ctx context.Context, date time.Time) ([]*models.GameOutcome, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.GameOutcome, error)
}
