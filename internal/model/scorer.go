package model

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/models"
	"github.com/yourusername/dinger/internal/scoring"
)

// Scorer scores matchups through the model service, caching predictions and
// falling back to the rule-based engine whenever the service cannot answer.
// The fallback result is always computed first: it supplies the confidence,
// defaulted-field accounting and component breakdown even when the model's
// probability wins.
type Scorer struct {
	client   *HTTPClient
	cache    *PredictionCache
	fallback *scoring.HeuristicScorer
	cfg      config.ScoringConfig
	logger   *logrus.Logger

	mu             sync.RWMutex
	currentVersion string
}

// NewScorer creates a model-backed scorer.
func NewScorer(client *HTTPClient, cache *PredictionCache, cfg config.ScoringConfig, logger *logrus.Logger) *Scorer {
	return &Scorer{
		client:   client,
		cache:    cache,
		fallback: scoring.NewHeuristicScorer(cfg),
		cfg:      cfg,
		logger:   logger,
	}
}

// Version returns the served model version, or the fallback's tag before the
// first successful prediction.
func (s *Scorer) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentVersion == "" {
		return s.fallback.Version()
	}
	return s.currentVersion
}

// Score implements scoring.Scorer.
func (s *Scorer) Score(ctx context.Context, in scoring.Input) (*models.ScoreResult, error) {
	res, err := s.fallback.Score(ctx, in)
	if err != nil {
		return nil, err
	}

	gameID := in.Matchup.GameID()
	if s.cache != nil {
		if pred := s.cache.Get(gameID, s.Version()); pred != nil {
			return s.apply(res, pred), nil
		}
	}

	preds, err := s.client.PredictBatch(ctx, []Features{s.features(gameID, in)})
	if err != nil || len(preds) == 0 {
		s.logger.WithError(err).WithField("game_id", gameID).Warn("Model unavailable, using rule-based score")
		return res, nil
	}

	pred := &preds[0]
	s.mu.Lock()
	s.currentVersion = pred.ModelVersion
	s.mu.Unlock()
	if s.cache != nil {
		s.cache.Set(pred)
	}
	return s.apply(res, pred), nil
}

// apply replaces the heuristic probability with the model's, rescaling the
// score and tier to stay consistent with the probability band.
func (s *Scorer) apply(res *models.ScoreResult, pred *Prediction) *models.ScoreResult {
	p := pred.Probability
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	score := res.Score
	if band := s.cfg.ProbabilityMax - s.cfg.ProbabilityMin; band > 0 {
		score = (p - s.cfg.ProbabilityMin) / band
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
	}

	res.Score = score
	res.Probability = p
	res.Tier = s.tierFor(score)
	res.ModelVersion = pred.ModelVersion
	return res
}

func (s *Scorer) tierFor(score float64) models.Tier {
	for _, t := range s.cfg.Tiers {
		if score >= t.MinScore {
			return models.Tier(t.Tier)
		}
	}
	return models.TierRisky
}

// features flattens an input into the model's feature vector, substituting
// the same league defaults the rule-based engine uses.
func (s *Scorer) features(gameID string, in scoring.Input) Features {
	resolve := func(v *float64, def float64) float64 {
		if v != nil {
			return *v
		}
		return def
	}

	batter := in.Batter
	if batter == nil {
		batter = &models.BatterProfile{}
	}
	pitcher := in.Pitcher
	if pitcher == nil {
		pitcher = &models.PitcherProfile{}
	}

	parkFactor := in.Park.Factor
	if parkFactor == 0 {
		parkFactor = s.cfg.Defaults.ParkFactor
	}

	return Features{
		GameID:        gameID,
		ISO:           resolve(batter.ISO, s.cfg.Defaults.ISO),
		BarrelPct:     resolve(batter.BarrelPct, s.cfg.Defaults.BarrelPct),
		ExpectedHR:    resolve(batter.ExpectedHR, s.cfg.Defaults.ExpectedHR),
		Last7ISO:      resolve(batter.Last7ISO, s.cfg.Defaults.ISO),
		HRPer9:        resolve(pitcher.HRPer9, s.cfg.Defaults.HRPer9),
		BarrelAllowed: resolve(pitcher.BarrelPctAllowed, s.cfg.Defaults.BarrelAllowed),
		ParkFactor:    parkFactor,
		WeatherBoost:  in.Weather.Boost,
	}
}
