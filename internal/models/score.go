package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier is the categorical confidence label derived from score thresholds.
type Tier string

const (
	TierLock    Tier = "Lock"
	TierSleeper Tier = "Sleeper"
	TierRisky   Tier = "Risky"
)

// Rank orders tiers for monotonicity checks: Lock > Sleeper > Risky.
func (t Tier) Rank() int {
	switch t {
	case TierLock:
		return 2
	case TierSleeper:
		return 1
	default:
		return 0
	}
}

// ScoreResult is the scoring engine's output for exactly one Matchup.
type ScoreResult struct {
	Matchup         *Matchup           `json:"matchup"`
	Score           float64            `json:"score" validate:"gte=0,lte=1"`
	Probability     float64            `json:"probability" validate:"gte=0,lte=1"`
	Tier            Tier               `json:"tier"`
	Confidence      float64            `json:"confidence" validate:"gt=0,lte=1"`
	DefaultedFields []string           `json:"defaulted_fields,omitempty"`
	Components      map[string]float64 `json:"components,omitempty"`
	ModelVersion    string             `json:"model_version,omitempty"`
}

// Degraded reports whether any input signal was substituted with a default.
func (r *ScoreResult) Degraded() bool {
	return len(r.DefaultedFields) > 0
}

// PredictionRecord is the persisted daily-log row for one scored matchup.
// HitHR stays nil until the results updater settles the date.
type PredictionRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	GameDate     time.Time `db:"game_date" json:"game_date"`
	GameID       string    `db:"game_id" json:"game_id"`
	GamePK       int       `db:"game_pk" json:"game_pk"`
	BatterID     int       `db:"batter_id" json:"batter_id"`
	BatterName   string    `db:"batter_name" json:"batter_name"`
	PitcherID    int       `db:"pitcher_id" json:"pitcher_id"`
	PitcherName  string    `db:"pitcher_name" json:"pitcher_name"`
	Venue        string    `db:"venue" json:"venue"`
	Score        float64   `db:"score" json:"score"`
	Probability  float64   `db:"probability" json:"probability"`
	Tier         Tier      `db:"tier" json:"tier"`
	Confidence   float64   `db:"confidence" json:"confidence"`
	ModelVersion string    `db:"model_version" json:"model_version"`
	HitHR        *bool     `db:"hit_hr" json:"hit_hr"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NewPredictionRecord flattens a ScoreResult into its persisted form.
func NewPredictionRecord(res *ScoreResult, modelVersion string) *PredictionRecord {
	m := res.Matchup
	return &PredictionRecord{
		ID:           uuid.New(),
		GameDate:     m.GameDate,
		GameID:       m.GameID(),
		GamePK:       m.GamePK,
		BatterID:     m.BatterID,
		BatterName:   m.BatterName,
		PitcherID:    m.PitcherID,
		PitcherName:  m.PitcherName,
		Venue:        m.Venue,
		Score:        res.Score,
		Probability:  res.Probability,
		Tier:         res.Tier,
		Confidence:   res.Confidence,
		ModelVersion: modelVersion,
		CreatedAt:    time.Now().UTC(),
	}
}

// GameOutcome records whether a batter actually homered on a date, sourced
// from the day-after results feed.
type GameOutcome struct {
	GameDate   time.Time `db:"game_date" json:"game_date"`
	GamePK     int       `db:"game_pk" json:"game_pk"`
	BatterID   int       `db:"batter_id" json:"batter_id"`
	BatterName string    `db:"batter_name" json:"batter_name"`
	HitHR      bool      `db:"hit_hr" json:"hit_hr"`
}
