package cache

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dinger/internal/config"
)

type samplePayload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := config.CacheConfig{
		Dir:            t.TempDir(),
		LineupMaxAge:   2 * time.Hour,
		StatsMaxAge:    24 * time.Hour,
		WeatherMaxAge:  time.Hour,
		ScheduleMaxAge: 6 * time.Hour,
	}

	store, err := Open(cfg, logrus.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCacheRoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := samplePayload{Name: "aaron_judge", Value: 0.31}
	require.NoError(t, store.Put(KindBatterStats, "592450:2026-08-26", want))

	var got samplePayload
	require.NoError(t, store.Get(KindBatterStats, "592450:2026-08-26", &got))
	assert.Equal(t, want, got)
}

func TestCacheMissWhenAbsent(t *testing.T) {
	store := newTestStore(t)

	var got samplePayload
	err := store.Get(KindWeather, "nope", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheMissAfterMaxAge(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	require.NoError(t, store.Put(KindWeather, "yankee_stadium", samplePayload{Name: "wind"}))

	// Still fresh just inside the weather horizon.
	store.now = func() time.Time { return base.Add(59 * time.Minute) }
	var got samplePayload
	require.NoError(t, store.Get(KindWeather, "yankee_stadium", &got))

	// Stale one minute past it.
	store.now = func() time.Time { return base.Add(61 * time.Minute) }
	err := store.Get(KindWeather, "yankee_stadium", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheKindsAreIsolated(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(KindBatterStats, "k", samplePayload{Name: "batter"}))

	var got samplePayload
	err := store.Get(KindPitcherStats, "k", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheOverwrite(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(KindLineups, "2026-08-26", samplePayload{Value: 1}))
	require.NoError(t, store.Put(KindLineups, "2026-08-26", samplePayload{Value: 2}))

	var got samplePayload
	require.NoError(t, store.Get(KindLineups, "2026-08-26", &got))
	assert.Equal(t, 2.0, got.Value)
}
