// Package scoring implements the HR-likelihood scoring engine: normalized
// component signals combined under fixed weights, small additive adjustments,
// and the tier ladder.
package scoring

import (
	"context"

	"github.com/yourusername/dinger/internal/models"
)

// Input carries everything the engine needs to score one matchup. Profiles
// may be empty; the engine substitutes league defaults and reports which
// fields it defaulted.
type Input struct {
	Matchup *models.Matchup
	Batter  *models.BatterProfile
	Pitcher *models.PitcherProfile
	Park    models.ParkFactor
	Weather models.WeatherAdjustment
}

// Scorer scores a single matchup. Implementations must be deterministic:
// identical inputs yield bit-identical results.
type Scorer interface {
	Score(ctx context.Context, in Input) (*models.ScoreResult, error)
	Version() string
}
