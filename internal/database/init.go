package database

import (
	"context"
	"fmt"

	"github.com/yourusername/dinger/internal/config"
)

// schema holds the DDL for the prediction log. CREATE IF NOT EXISTS keeps
// startup idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id             UUID PRIMARY KEY,
	game_date      DATE NOT NULL,
	game_id        TEXT NOT NULL,
	game_pk        INTEGER NOT NULL,
	batter_id      INTEGER NOT NULL,
	batter_name    TEXT NOT NULL,
	pitcher_id     INTEGER NOT NULL,
	pitcher_name   TEXT NOT NULL,
	venue          TEXT NOT NULL DEFAULT '',
	score          DOUBLE PRECISION NOT NULL,
	probability    DOUBLE PRECISION NOT NULL,
	tier           TEXT NOT NULL,
	confidence     DOUBLE PRECISION NOT NULL,
	model_version  TEXT NOT NULL DEFAULT '',
	hit_hr         BOOLEAN,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (game_date, game_id)
);

CREATE INDEX IF NOT EXISTS idx_predictions_game_date ON predictions (game_date);
CREATE INDEX IF NOT EXISTS idx_predictions_unsettled ON predictions (game_date) WHERE hit_hr IS NULL;

CREATE TABLE IF NOT EXISTS outcomes (
	game_date    DATE NOT NULL,
	game_pk      INTEGER NOT NULL,
	batter_id    INTEGER NOT NULL,
	batter_name  TEXT NOT NULL,
	hit_hr       BOOLEAN NOT NULL,
	PRIMARY KEY (game_date, game_pk, batter_id)
);
`

// Initialize creates a database connection pool and ensures the schema
// exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}
