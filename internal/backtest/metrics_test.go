package backtest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func testBacktestConfig() Config {
	return Config{
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC),
		Buckets:   10,
	}
}

func rec(tier models.Tier, probability float64, hit *bool) *models.PredictionRecord {
	return &models.PredictionRecord{
		Tier:        tier,
		Probability: probability,
		HitHR:       hit,
	}
}

func TestCalculateMetricsPerTier(t *testing.T) {
	recs := []*models.PredictionRecord{
		rec(models.TierLock, 0.11, boolPtr(true)),
		rec(models.TierLock, 0.10, boolPtr(false)),
		rec(models.TierSleeper, 0.07, boolPtr(true)),
		rec(models.TierSleeper, 0.07, boolPtr(false)),
		rec(models.TierSleeper, 0.06, boolPtr(false)),
		rec(models.TierRisky, 0.03, boolPtr(false)),
		rec(models.TierRisky, 0.03, nil), // unsettled
	}

	m := CalculateMetrics(recs, testBacktestConfig())

	assert.Equal(t, 7, m.TotalPredictions)
	assert.Equal(t, 6, m.Settled)
	assert.InDelta(t, 2.0/6.0, m.OverallHitRate, 1e-12)

	lock := m.PerTier["Lock"]
	assert.Equal(t, 2, lock.Count)
	assert.InDelta(t, 0.5, lock.HitRate, 1e-12)
	assert.InDelta(t, 0.105, lock.AvgProbability, 1e-12)

	sleeper := m.PerTier["Sleeper"]
	assert.Equal(t, 3, sleeper.Count)
	assert.InDelta(t, 1.0/3.0, sleeper.HitRate, 1e-12)

	risky := m.PerTier["Risky"]
	assert.Equal(t, 1, risky.Count, "unsettled rows are excluded")
}

func TestBrierScoreHandComputed(t *testing.T) {
	recs := []*models.PredictionRecord{
		rec(models.TierLock, 0.9, boolPtr(true)),
		rec(models.TierRisky, 0.1, boolPtr(false)),
	}

	m := CalculateMetrics(recs, testBacktestConfig())
	// ((0.9-1)^2 + (0.1-0)^2) / 2 = 0.01
	assert.InDelta(t, 0.01, m.BrierScore, 1e-12)
}

func TestAUCPerfectSeparation(t *testing.T) {
	recs := []*models.PredictionRecord{
		rec(models.TierLock, 0.12, boolPtr(true)),
		rec(models.TierLock, 0.11, boolPtr(true)),
		rec(models.TierRisky, 0.03, boolPtr(false)),
		rec(models.TierRisky, 0.02, boolPtr(false)),
	}

	m := CalculateMetrics(recs, testBacktestConfig())
	assert.InDelta(t, 1.0, m.AUC, 1e-12)
}

func TestAUCRandomIsHalf(t *testing.T) {
	recs := []*models.PredictionRecord{
		rec(models.TierRisky, 0.05, boolPtr(true)),
		rec(models.TierRisky, 0.05, boolPtr(false)),
	}

	m := CalculateMetrics(recs, testBacktestConfig())
	assert.InDelta(t, 0.5, m.AUC, 1e-12)
}

func TestCalibrationBuckets(t *testing.T) {
	recs := []*models.PredictionRecord{
		rec(models.TierRisky, 0.04, boolPtr(false)),
		rec(models.TierRisky, 0.06, boolPtr(true)),
		rec(models.TierLock, 0.95, boolPtr(true)),
	}

	m := CalculateMetrics(recs, testBacktestConfig())
	require.Len(t, m.Calibration, 10)

	first := m.Calibration[0]
	assert.Equal(t, 2, first.Count)
	assert.InDelta(t, 0.05, first.PredictedMean, 1e-12)
	assert.InDelta(t, 0.5, first.ObservedRate, 1e-12)

	last := m.Calibration[9]
	assert.Equal(t, 1, last.Count)
	assert.InDelta(t, 1.0, last.ObservedRate, 1e-12)
}

func TestMetricsAreIdempotent(t *testing.T) {
	recs := []*models.PredictionRecord{
		rec(models.TierLock, 0.11, boolPtr(true)),
		rec(models.TierSleeper, 0.07, boolPtr(false)),
		rec(models.TierRisky, 0.03, boolPtr(false)),
	}

	first := CalculateMetrics(recs, testBacktestConfig())
	second := CalculateMetrics(recs, testBacktestConfig())
	assert.Equal(t, first, second)
	assert.Equal(t, first.ToJSON(), second.ToJSON())
}

type stubPredictionRepo struct {
	recs []*models.PredictionRecord
}

func (s *stubPredictionRepo) Upsert(context.Context, *models.PredictionRecord) error  { return nil }
func (s *stubPredictionRepo) UpsertBatch(context.Context, []*models.PredictionRecord) error {
	return nil
}
func (s *stubPredictionRepo) GetByDate(context.Context, time.Time) ([]*models.PredictionRecord, error) {
	return s.recs, nil
}
func (s *stubPredictionRepo) GetByDateRange(context.Context, time.Time, time.Time) ([]*models.PredictionRecord, error) {
	return s.recs, nil
}
func (s *stubPredictionRepo) GetUnsettled(context.Context, time.Time) ([]*models.PredictionRecord, error) {
	return nil, nil
}
func (s *stubPredictionRepo) Settle(context.Context, uuid.UUID, bool) error { return nil }

func configSection(start, end string) config.BacktestConfig {
	return config.BacktestConfig{StartDate: start, EndDate: end}
}

func TestEngineRunWritesReport(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := &stubPredictionRepo{recs: []*models.PredictionRecord{
		rec(models.TierLock, 0.11, boolPtr(true)),
		rec(models.TierRisky, 0.03, boolPtr(false)),
	}}
	engine := NewEngine(repo, log)

	cfg := testBacktestConfig()
	cfg.OutputPath = filepath.Join(t.TempDir(), "report.json")

	m, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, WriteReport(cfg.OutputPath, m))

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"brier_score\"")
}

func TestEngineRunEmptyRange(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	engine := NewEngine(&stubPredictionRepo{}, log)
	_, err := engine.Run(context.Background(), testBacktestConfig())
	require.Error(t, err)
}

func TestFromAppConfigValidatesDates(t *testing.T) {
	_, err := FromAppConfig(configSection("2026-08-07", "2026-08-01"))
	require.Error(t, err)

	cfg, err := FromAppConfig(configSection("2026-08-01", "2026-08-07"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Buckets, "bucket count defaults when unset")
}
