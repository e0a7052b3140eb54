package scoring

import (
	"context"
	"fmt"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/models"
)

// HeuristicVersion tags rule-based results in the prediction log.
const HeuristicVersion = "heuristic-v1"

// HeuristicScorer is the rule-based engine: five normalized signals combined
// under fixed weights, plus bounded additive adjustments for pitch matchup,
// bullpen exposure and HR-suppressing starters.
type HeuristicScorer struct {
	cfg config.ScoringConfig
}

// NewHeuristicScorer creates a scorer from validated configuration.
func NewHeuristicScorer(cfg config.ScoringConfig) *HeuristicScorer {
	return &HeuristicScorer{cfg: cfg}
}

// Version returns the engine's model version tag.
func (s *HeuristicScorer) Version() string { return HeuristicVersion }

// Score produces the score, probability, tier and confidence for one matchup.
// Missing profile fields are replaced with league-average defaults; each
// substitution is recorded in DefaultedFields and lowers confidence.
func (s *HeuristicScorer) Score(_ context.Context, in Input) (*models.ScoreResult, error) {
	if in.Matchup == nil || !in.Matchup.HasIdentity() {
		return nil, fmt.Errorf("%w: matchup missing identity fields", models.ErrMalformedMatchup)
	}

	cfg := s.cfg
	var defaulted []string

	resolve := func(v *float64, def float64, field string) float64 {
		if v != nil {
			return *v
		}
		defaulted = append(defaulted, field)
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

	// Field resolution order is fixed so DefaultedFields is deterministic.
	iso := resolve(batter.ISO, cfg.Defaults.ISO, "batter.iso")
	barrel := resolve(batter.BarrelPct, cfg.Defaults.BarrelPct, "batter.barrel_pct")
	xhr := resolve(batter.ExpectedHR, cfg.Defaults.ExpectedHR, "batter.xhr")
	last7 := resolve(batter.Last7ISO, cfg.Defaults.ISO, "batter.last_7_iso")
	hrPer9 := resolve(pitcher.HRPer9, cfg.Defaults.HRPer9, "pitcher.hr_per_9")
	barrelAllowed := resolve(pitcher.BarrelPctAllowed, cfg.Defaults.BarrelAllowed, "pitcher.barrel_pct_allowed")

	batterSignal := (normalize(iso, cfg.Ranges.ISO) +
		normalize(barrel, cfg.Ranges.BarrelPct) +
		normalize(xhr, cfg.Ranges.ExpectedHR)) / 3

	pitcherSignal := 0.7*normalize(hrPer9, cfg.Ranges.HRPer9) +
		0.3*normalize(barrelAllowed, cfg.Ranges.BarrelAllowed)

	parkFactor := in.Park.Factor
	if parkFactor == 0 {
		defaulted = append(defaulted, "park.factor")
		parkFactor = cfg.Defaults.ParkFactor
	}
	parkSignal := normalize(parkFactor, cfg.Ranges.ParkFactor)

	// Neutral weather sits at the midpoint: tailwinds push above 0.5,
	// headwinds below.
	weatherSignal := clamp01(0.5 + in.Weather.Boost)

	formSignal := normalize(last7, cfg.Ranges.Last7ISO)

	base := cfg.Weights.Batter*batterSignal +
		cfg.Weights.Pitcher*pitcherSignal +
		cfg.Weights.Park*parkSignal +
		cfg.Weights.Weather*weatherSignal +
		cfg.Weights.RecentForm*formSignal

	adjustment := s.pitchMatchupAdjustment(batter, pitcher) +
		s.bullpenAdjustment(pitcher)
	if pitcherSignal < cfg.SuppressionCutoff {
		adjustment -= cfg.SuppressionPenalty
	}

	score := clamp01(base + adjustment)
	probability := cfg.ProbabilityMin + score*(cfg.ProbabilityMax-cfg.ProbabilityMin)

	confidence := 1.0 - cfg.DefaultPenalty*float64(len(defaulted))
	if confidence < 0.05 {
		confidence = 0.05
	}
	if !in.Matchup.PitcherConfirmed {
		confidence *= 1 - cfg.ProbablePenalty
	}

	return &models.ScoreResult{
		Matchup:         in.Matchup,
		Score:           score,
		Probability:     probability,
		Tier:            s.tierFor(score),
		Confidence:      confidence,
		DefaultedFields: defaulted,
		Components: map[string]float64{
			"batter":      batterSignal,
			"pitcher":     pitcherSignal,
			"park":        parkSignal,
			"weather":     weatherSignal,
			"recent_form": formSignal,
			"adjustment":  adjustment,
		},
		ModelVersion: HeuristicVersion,
	}, nil
}

// pitchMatchupAdjustment rewards batters whose per-pitch-type power lines up
// with the starter's pitch mix. It needs both the batter's ISO-by-pitch split
// and the pitcher's usage mix; absent either, no adjustment applies.
func (s *HeuristicScorer) pitchMatchupAdjustment(batter *models.BatterProfile, pitcher *models.PitcherProfile) float64 {
	if len(batter.ISOByPitch) == 0 || len(pitcher.PitchMix) == 0 {
		return 0
	}

	var weightedISO, usageCovered float64
	for pitch, usage := range pitcher.PitchMix {
		iso, ok := batter.ISOByPitch[pitch]
		if !ok {
			continue
		}
		weightedISO += usage * iso
		usageCovered += usage
	}
	if usageCovered <= 0 {
		return 0
	}
	weightedISO /= usageCovered

	return s.cfg.PitchMatchupWeight * (weightedISO - s.cfg.Defaults.ISO)
}

// bullpenAdjustment rewards matchups where a short starter hands innings to a
// HR-prone bullpen.
func (s *HeuristicScorer) bullpenAdjustment(pitcher *models.PitcherProfile) float64 {
	if pitcher.AvgInnings == nil || pitcher.BullpenHRPer9 == nil {
		return 0
	}
	if *pitcher.AvgInnings < 5.0 && *pitcher.BullpenHRPer9 > s.cfg.Defaults.HRPer9 {
		return s.cfg.BullpenWeight
	}
	return 0
}

// tierFor walks the ladder from the top; the bottom rung has MinScore 0 so
// every score lands somewhere.
func (s *HeuristicScorer) tierFor(score float64) models.Tier {
	for _, t := range s.cfg.Tiers {
		if score >= t.MinScore {
			return models.Tier(t.Tier)
		}
	}
	return models.TierRisky
}
