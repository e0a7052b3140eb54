// Package cache provides the on-disk read-through cache for external API
// responses, keyed by data kind and request key with per-kind max age.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"

	"github.com/yourusername/dinger/internal/config"
)

// Kind identifies the data family an entry belongs to; each kind carries its
// own staleness horizon.
type Kind string

const (
	KindSchedule     Kind = "schedule"
	KindLineups      Kind = "lineups"
	KindBatterStats  Kind = "batter_stats"
	KindPitcherStats Kind = "pitcher_stats"
	KindWeather      Kind = "weather"
)

// ErrCacheMiss signals that no fresh entry exists for the key. Absent and
// stale entries are indistinguishable to callers.
var ErrCacheMiss = errors.New("cache miss")

// Entry is the stored representation of one cached payload.
type Entry struct {
	Key       string    `badgerhold:"key"`
	Kind      string    `badgerhold:"index"`
	Payload   []byte    `json:"payload"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store is the Badger-backed disk cache. Staleness is enforced on read; no
// eviction happens on write, unbounded growth is acceptable for this data
// volume.
type Store struct {
	store   *badgerhold.Store
	maxAges map[Kind]time.Duration
	now     func() time.Time
	logger  *logrus.Logger
}

// Open opens (or creates) the cache database under cfg.Dir.
func Open(cfg config.CacheConfig, logger *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = cfg.Dir
	options.ValueDir = cfg.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	return &Store{
		store: store,
		maxAges: map[Kind]time.Duration{
			KindSchedule:     cfg.ScheduleMaxAge,
			KindLineups:      cfg.LineupMaxAge,
			KindBatterStats:  cfg.StatsMaxAge,
			KindPitcherStats: cfg.StatsMaxAge,
			KindWeather:      cfg.WeatherMaxAge,
		},
		now:    time.Now,
		logger: logger,
	}, nil
}

// Get unmarshals the cached payload for kind+key into v when a fresh entry
// exists, or returns ErrCacheMiss.
func (s *Store) Get(kind Kind, key string, v interface{}) error {
	var entry Entry
	err := s.store.Get(compositeKey(kind, key), &entry)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache read failed: %w", err)
	}

	if s.now().Sub(entry.FetchedAt) > s.maxAge(kind) {
		return ErrCacheMiss
	}

	if err := json.Unmarshal(entry.Payload, v); err != nil {
		// A payload that no longer unmarshals is as good as absent.
		s.logger.WithError(err).WithField("key", key).Warn("Corrupted cache entry, treating as miss")
		return ErrCacheMiss
	}
	return nil
}

// Put stores v for kind+key with the current timestamp, overwriting any
// previous entry.
func (s *Store) Put(kind Kind, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	entry := Entry{
		Key:       compositeKey(kind, key),
		Kind:      string(kind),
		Payload:   payload,
		FetchedAt: s.now(),
	}
	if err := s.store.Upsert(entry.Key, entry); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func (s *Store) maxAge(kind Kind) time.Duration {
	if age, ok := s.maxAges[kind]; ok && age > 0 {
		return age
	}
	return 24 * time.Hour
}

func compositeKey(kind Kind, key string) string {
	return string(kind) + ":" + key
}
