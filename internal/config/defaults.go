package config

// DefaultScoring returns the documented calibration starting point for the
// scoring engine. Mirrors the viper defaults so tests and tools can build a
// scorer without a config file.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Weights: ScoringWeights{
			Batter:     0.35,
			Pitcher:    0.25,
			Park:       0.15,
			Weather:    0.15,
			RecentForm: 0.10,
		},
		Ranges: ScoringRanges{
			ISO:           Range{Min: 0.050, Max: 0.350},
			BarrelPct:     Range{Min: 0.0, Max: 20.0},
			ExpectedHR:    Range{Min: 0.0, Max: 0.12},
			HRPer9:        Range{Min: 0.4, Max: 2.2},
			BarrelAllowed: Range{Min: 2.0, Max: 13.0},
			ParkFactor:    Range{Min: 0.80, Max: 1.20},
			Last7ISO:      Range{Min: 0.050, Max: 0.350},
		},
		Defaults: ScoringDefaults{
			ISO:           0.165,
			BarrelPct:     7.5,
			ExpectedHR:    0.04,
			HRPer9:        1.25,
			BarrelAllowed: 7.5,
			ParkFactor:    1.0,
		},
		Tiers: []TierThreshold{
			{Tier: "Lock", MinScore: 0.70},
			{Tier: "Sleeper", MinScore: 0.50},
			{Tier: "Risky", MinScore: 0.0},
		},
		ProbabilityMin:     0.02,
		ProbabilityMax:     0.12,
		PitchMatchupWeight: 0.5,
		BullpenWeight:      0.08,
		SuppressionCutoff:  0.45,
		SuppressionPenalty: 0.04,
		DefaultPenalty:     0.05,
		ProbablePenalty:    0.15,
		TopN:               15,
	}
}
