package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/dinger/internal/database"
	"github.com/yourusername/dinger/internal/models"
)

const upsertOutcome = `
	INSERT INTO outcomes (game_date, game_pk, batter_id, batter_name, hit_hr)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (game_date, game_pk, batter_id) DO UPDATE SET hit_hr = EXCLUDED.hit_hr
`

// PostgresOutcomeRepository implements OutcomeRepository for PostgreSQL
type PostgresOutcomeRepository struct {
	db *database.DB
}

// NewPostgresOutcomeRepository creates a new outcome repository
func NewPostgresOutcomeRepository(db *database.DB) OutcomeRepository {
	return &PostgresOutcomeRepository{db: db}
}

// UpsertBatch writes a day's outcomes atomically.
func (r *PostgresOutcomeRepository) UpsertBatch(ctx context.Context, outcomes []*models.GameOutcome) error {
	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range outcomes {
		if _, err := tx.Exec(ctx, upsertOutcome, o.GameDate, o.GamePK, o.BatterID, o.BatterName, o.HitHR); err != nil {
			return fmt.Errorf("failed to upsert outcome for batter %d: %w", o.BatterID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit outcome batch: %w", err)
	}
	return nil
}

// GetByDate retrieves all outcomes for a date.
func (r *PostgresOutcomeRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.GameOutcome, error) {
	query := `SELECT game_date, game_pk, batter_id, batter_name, hit_hr
		FROM outcomes WHERE game_date = $1`
	return r.queryOutcomes(ctx, query, date)
}

// GetByDateRange retrieves outcomes within [start, end] inclusive.
func (r *PostgresOutcomeRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.GameOutcome, error) {
	query := `SELECT game_date, game_pk, batter_id, batter_name, hit_hr
		FROM outcomes WHERE game_date BETWEEN $1 AND $2 ORDER BY game_date`
	return r.queryOutcomes(ctx, query, start, end)
}

func (r *PostgresOutcomeRepository) queryOutcomes(ctx context.Context, query string, args ...interface{}) ([]*models.GameOutcome, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*models.GameOutcome
	for rows.Next() {
		o := &models.GameOutcome{}
		if err := rows.Scan(&o.GameDate, &o.GamePK, &o.BatterID, &o.BatterName, &o.HitHR); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
