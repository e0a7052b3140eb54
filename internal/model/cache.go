package model

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/dinger/internal/metrics"
)

// PredictionCache is an in-memory TTL cache for model predictions, keyed by
// game ID and model version so a retrain naturally invalidates old entries.
type PredictionCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a new prediction cache.
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   gocache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func cacheKey(gameID, modelVersion string) string {
	return gameID + ":" + modelVersion
}

// Get retrieves a cached prediction, or nil on miss.
func (pc *PredictionCache) Get(gameID, modelVersion string) *Prediction {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if v, found := pc.cache.Get(cacheKey(gameID, modelVersion)); found {
		if pred, ok := v.(*Prediction); ok {
			pc.hitCount++
			pc.updateMetrics()
			return pred
		}
	}

	pc.missCount++
	pc.updateMetrics()
	return nil
}

// Set stores a prediction.
func (pc *PredictionCache) Set(pred *Prediction) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
	}
	pc.cache.Set(cacheKey(pred.GameID, pred.ModelVersion), pred, pc.ttl)
}

// Clear flushes the cache and resets counters.
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns hit/miss counters and the hit ratio.
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.stats()
}

func (pc *PredictionCache) stats() (hits, misses uint64, ratio float64) {
	hits = pc.hitCount
	misses = pc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (pc *PredictionCache) updateMetrics() {
	_, _, ratio := pc.stats()
	metrics.ModelCacheHitRatio.Set(ratio)
}

// ItemCount returns the number of cached predictions.
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}
