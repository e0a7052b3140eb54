package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/cache"
	"github.com/yourusername/dinger/internal/metrics"
	"github.com/yourusername/dinger/internal/models"
)

const sourceStats = "stats_feed"

// StatsClient fetches rolling batter and pitcher profiles from the Statcast
// aggregate feed. Profiles cover a trailing window ending the day before the
// game so a run never sees same-day leakage.
type StatsClient struct {
	http       *RateLimitedHTTPClient
	baseURL    string
	windowDays int
	cache      *cache.Store
	logger     *logrus.Logger
}

// NewStatsClient creates a new stats feed client.
func NewStatsClient(baseURL string, windowDays int, httpClient *RateLimitedHTTPClient, store *cache.Store, logger *logrus.Logger) *StatsClient {
	return &StatsClient{
		http:       httpClient,
		baseURL:    baseURL,
		windowDays: windowDays,
		cache:      store,
		logger:     logger,
	}
}

// BatterProfile returns the batter's trailing-window profile. On fetch
// failure it returns an empty profile alongside ErrDataUnavailable so the
// caller can score on defaults and flag the result as degraded.
func (c *StatsClient) BatterProfile(ctx context.Context, batterID int, gameDate time.Time) (*models.BatterProfile, error) {
	start, end := c.window(gameDate)
	key := fmt.Sprintf("%d:%s", batterID, end.Format("2006-01-02"))

	profile := &models.BatterProfile{BatterID: batterID, WindowStart: start, WindowEnd: end}
	if c.cacheGet(cache.KindBatterStats, key, profile) {
		return profile, nil
	}

	endpoint := fmt.Sprintf("%s/v1/batters/%d?start=%s&end=%s",
		c.baseURL, batterID, start.Format("2006-01-02"), end.Format("2006-01-02"))

	if err := c.getJSON(ctx, endpoint, profile); err != nil {
		c.logger.WithError(err).WithField("batter_id", batterID).Warn("Batter profile unavailable, scoring on defaults")
		return &models.BatterProfile{BatterID: batterID, WindowStart: start, WindowEnd: end},
			fmt.Errorf("%w: batter %d", models.ErrDataUnavailable, batterID)
	}

	profile.BatterID = batterID
	profile.WindowStart = start
	profile.WindowEnd = end
	c.cachePut(cache.KindBatterStats, key, profile)
	return profile, nil
}

// PitcherProfile returns the pitcher's trailing-window profile with the same
// degraded-fallback contract as BatterProfile.
func (c *StatsClient) PitcherProfile(ctx context.Context, pitcherID int, gameDate time.Time) (*models.PitcherProfile, error) {
	start, end := c.window(gameDate)
	key := fmt.Sprintf("%d:%s", pitcherID, end.Format("2006-01-02"))

	profile := &models.PitcherProfile{PitcherID: pitcherID, WindowStart: start, WindowEnd: end}
	if c.cacheGet(cache.KindPitcherStats, key, profile) {
		return profile, nil
	}

	endpoint := fmt.Sprintf("%s/v1/pitchers/%d?start=%s&end=%s",
		c.baseURL, pitcherID, start.Format("2006-01-02"), end.Format("2006-01-02"))

	if err := c.getJSON(ctx, endpoint, profile); err != nil {
		c.logger.WithError(err).WithField("pitcher_id", pitcherID).Warn("Pitcher profile unavailable, scoring on defaults")
		return &models.PitcherProfile{PitcherID: pitcherID, WindowStart: start, WindowEnd: end},
			fmt.Errorf("%w: pitcher %d", models.ErrDataUnavailable, pitcherID)
	}

	profile.PitcherID = pitcherID
	profile.WindowStart = start
	profile.WindowEnd = end
	c.cachePut(cache.KindPitcherStats, key, profile)
	return profile, nil
}

// window returns the trailing stats window ending the day before gameDate.
func (c *StatsClient) window(gameDate time.Time) (time.Time, time.Time) {
	end := gameDate.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(c.windowDays - 1))
	return start, end
}

func (c *StatsClient) getJSON(ctx context.Context, endpoint string, v interface{}) error {
	metrics.RecordFetch(sourceStats)

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		metrics.RecordFetchFailure(sourceStats)
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		metrics.RecordFetchFailure(sourceStats)
		return NewSourceError(sourceStats, ErrCodeNotFound, "player not in feed", nil)
	default:
		metrics.RecordFetchFailure(sourceStats)
		return NewSourceError(sourceStats, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *StatsClient) cacheGet(kind cache.Kind, key string, v interface{}) bool {
	if c.cache == nil {
		return false
	}
	if err := c.cache.Get(kind, key, v); err == nil {
		metrics.RecordCacheHit(string(kind))
		return true
	}
	metrics.RecordCacheMiss(string(kind))
	return false
}

func (c *StatsClient) cachePut(kind cache.Kind, key string, v interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(kind, key, v); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
