//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/database"
	"github.com/yourusername/dinger/internal/models"
	"github.com/yourusername/dinger/internal/repository"
)

const skipIntegration = "Skipping integration test in short mode"

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	host := os.Getenv("DINGER_TEST_DB_HOST")
	if host == "" {
		t.Skip("DINGER_TEST_DB_HOST not set")
	}

	cfg := &config.Config{Database: config.DatabaseConfig{
		Host:               host,
		Port:               envInt("DINGER_TEST_DB_PORT", 5432),
		Name:               envStr("DINGER_TEST_DB_NAME", "dinger_test"),
		User:               envStr("DINGER_TEST_DB_USER", "dinger"),
		Password:           envStr("DINGER_TEST_DB_PASSWORD", "dinger"),
		SSLMode:            "disable",
		MaxConnections:     10,
		MaxIdleConnections: 5,
	}}

	db, err := database.Initialize(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func seedRecord(date time.Time, gamePK, batterID int, tier models.Tier) *models.PredictionRecord {
	return &models.PredictionRecord{
		ID:           uuid.New(),
		GameDate:     date,
		GameID:       fmt.Sprintf("batter_%d__vs__pitcher__%s", batterID, date.Format("2006-01-02")),
		GamePK:       gamePK,
		BatterID:     batterID,
		BatterName:   fmt.Sprintf("Batter %d", batterID),
		PitcherID:    900001,
		PitcherName:  "Test Pitcher",
		Venue:        "Test Park",
		Score:        0.61,
		Probability:  0.081,
		Tier:         tier,
		Confidence:   0.95,
		ModelVersion: "heuristic-v1",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestPredictionRepositoryRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewPostgresPredictionRepository(db)

	date := time.Date(2030, 7, 4, 0, 0, 0, 0, time.UTC)
	record := seedRecord(date, 700001, 800001, models.TierSleeper)
	require.NoError(t, repo.Upsert(ctx, record))

	got, err := repo.GetByDate(ctx, date)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	var found *models.PredictionRecord
	for _, r := range got {
		if r.GameID == record.GameID {
			found = r
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, record.Score, found.Score)
	assert.Equal(t, record.Tier, found.Tier)
	assert.Nil(t, found.HitHR)
}

func TestPredictionUpsertIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewPostgresPredictionRepository(db)

	date := time.Date(2030, 7, 5, 0, 0, 0, 0, time.UTC)
	record := seedRecord(date, 700002, 800002, models.TierRisky)
	require.NoError(t, repo.Upsert(ctx, record))

	// Rescoring the same matchup replaces the row instead of duplicating it.
	record.Score = 0.72
	record.Tier = models.TierLock
	require.NoError(t, repo.Upsert(ctx, record))

	got, err := repo.GetByDate(ctx, date)
	require.NoError(t, err)

	matches := 0
	for _, r := range got {
		if r.GameID == record.GameID {
			matches++
			assert.Equal(t, models.TierLock, r.Tier)
		}
	}
	assert.Equal(t, 1, matches)
}

func TestSettlePrediction(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := setupTestDB(t)
	predRepo := repository.NewPostgresPredictionRepository(db)
	outcomeRepo := repository.NewPostgresOutcomeRepository(db)

	date := time.Date(2030, 7, 6, 0, 0, 0, 0, time.UTC)
	record := seedRecord(date, 700003, 800003, models.TierLock)
	require.NoError(t, predRepo.Upsert(ctx, record))

	require.NoError(t, outcomeRepo.UpsertBatch(ctx, []*models.GameOutcome{{
		GameDate:   date,
		GamePK:     700003,
		BatterID:   800003,
		BatterName: record.BatterName,
		HitHR:      true,
	}}))

	got, err := predRepo.GetByDate(ctx, date)
	require.NoError(t, err)

	var id uuid.UUID
	for _, r := range got {
		if r.GameID == record.GameID {
			id = r.ID
		}
	}
	require.NotEqual(t, uuid.Nil, id)

	require.NoError(t, predRepo.Settle(ctx, id, true))

	settled, err := predRepo.GetByDate(ctx, date)
	require.NoError(t, err)
	for _, r := range settled {
		if r.ID == id {
			require.NotNil(t, r.HitHR)
			assert.True(t, *r.HitHR)
		}
	}
}

func TestConcurrentUpserts(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewPostgresPredictionRepository(db)

	date := time.Date(2030, 7, 7, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	concurrency := 10
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			record := seedRecord(date, 700100+index, 800100+index, models.TierRisky)
			assert.NoError(t, repo.Upsert(ctx, record))
		}(i)
	}
	wg.Wait()

	got, err := repo.GetByDate(ctx, date)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(got), concurrency)
}

func TestSchemaTablesExist(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := setupTestDB(t)

	tables := []string{"predictions", "outcomes"}
	for _, table := range tables {
		var exists bool
		query := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_name = $1
			)
		`
		err := db.GetPool().QueryRow(ctx, query, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "Table %s should exist", table)
	}
}
