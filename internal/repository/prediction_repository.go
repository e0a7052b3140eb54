package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/dinger/internal/database"
	"github.com/yourusername/dinger/internal/models"
)

const predictionColumns = `
	id, game_date, game_id, game_pk, batter_id, batter_name,
	pitcher_id, pitcher_name, venue, score, probability, tier,
	confidence, model_version, hit_hr, created_at
`

const upsertPrediction = `
	INSERT INTO predictions (
		id, game_date, game_id, game_pk, batter_id, batter_name,
		pitcher_id, pitcher_name, venue, score, probability, tier,
		confidence, model_version, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (game_date, game_id) DO UPDATE SET
		score = EXCLUDED.score,
		probability = EXCLUDED.probability,
		tier = EXCLUDED.tier,
		confidence = EXCLUDED.confidence,
		model_version = EXCLUDED.model_version,
		pitcher_id = EXCLUDED.pitcher_id,
		pitcher_name = EXCLUDED.pitcher_name
`

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Upsert inserts or updates one prediction row.
func (r *PostgresPredictionRepository) Upsert(ctx context.Context, rec *models.PredictionRecord) error {
	_, err := r.db.GetPool().Exec(ctx, upsertPrediction, upsertArgs(rec)...)
	if err != nil {
		return fmt.Errorf("failed to upsert prediction: %w", err)
	}
	return nil
}

// UpsertBatch writes a full run atomically so a rerun never leaves a partial
// day behind.
func (r *PostgresPredictionRepository) UpsertBatch(ctx context.Context, recs []*models.PredictionRecord) error {
	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range recs {
		if _, err := tx.Exec(ctx, upsertPrediction, upsertArgs(rec)...); err != nil {
			return fmt.Errorf("failed to upsert prediction %s: %w", rec.GameID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit prediction batch: %w", err)
	}
	return nil
}

// GetByDate retrieves all predictions for a date ordered by score.
func (r *PostgresPredictionRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions WHERE game_date = $1 ORDER BY score DESC`
	return r.queryPredictions(ctx, query, date)
}

// GetByDateRange retrieves predictions within [start, end] inclusive.
func (r *PostgresPredictionRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions WHERE game_date BETWEEN $1 AND $2 ORDER BY game_date, score DESC`
	return r.queryPredictions(ctx, query, start, end)
}

// GetUnsettled retrieves predictions from dates strictly before the cutoff
// that have no recorded outcome yet.
func (r *PostgresPredictionRepository) GetUnsettled(ctx context.Context, before time.Time) ([]*models.PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions WHERE hit_hr IS NULL AND game_date < $1 ORDER BY game_date`
	return r.queryPredictions(ctx, query, before)
}

// Settle records the actual HR outcome for a prediction.
func (r *PostgresPredictionRepository) Settle(ctx context.Context, id uuid.UUID, hitHR bool) error {
	tag, err := r.db.GetPool().Exec(ctx, `UPDATE predictions SET hit_hr = $2 WHERE id = $1`, id, hitHR)
	if err != nil {
		return fmt.Errorf("failed to settle prediction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PostgresPredictionRepository) queryPredictions(ctx context.Context, query string, args ...interface{}) ([]*models.PredictionRecord, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var recs []*models.PredictionRecord
	for rows.Next() {
		rec := &models.PredictionRecord{}
		err := rows.Scan(
			&rec.ID, &rec.GameDate, &rec.GameID, &rec.GamePK, &rec.BatterID, &rec.BatterName,
			&rec.PitcherID, &rec.PitcherName, &rec.Venue, &rec.Score, &rec.Probability, &rec.Tier,
			&rec.Confidence, &rec.ModelVersion, &rec.HitHR, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func upsertArgs(rec *models.PredictionRecord) []interface{} {
	return []interface{}{
		rec.ID, rec.GameDate, rec.GameID, rec.GamePK, rec.BatterID, rec.BatterName,
		rec.PitcherID, rec.PitcherName, rec.Venue, rec.Score, rec.Probability, rec.Tier,
		rec.Confidence, rec.ModelVersion, rec.CreatedAt,
	}
}

// IsNoRows reports whether err is pgx's no-rows sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
