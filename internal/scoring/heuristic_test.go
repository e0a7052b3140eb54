package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/models"
)

func testMatchup() *models.Matchup {
	return &models.Matchup{
		GamePK:           745001,
		GameDate:         time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		Venue:            "Yankee Stadium",
		BatterID:         592450,
		BatterName:       "Aaron Judge",
		PitcherID:        678394,
		PitcherName:      "Brayan Bello",
		PitcherConfirmed: true,
	}
}

func neutralInput() Input {
	return Input{
		Matchup: testMatchup(),
		Batter:  &models.BatterProfile{},
		Pitcher: &models.PitcherProfile{},
		Park:    models.ParkFactor{Venue: "Yankee Stadium", Factor: 1.0},
		Weather: models.WeatherAdjustment{Neutral: true},
	}
}

func referenceInput() Input {
	in := neutralInput()
	in.Batter = &models.BatterProfile{
		ISO:        models.Float64Ptr(0.250),
		BarrelPct:  models.Float64Ptr(12.0),
		ExpectedHR: models.Float64Ptr(0.08),
	}
	in.Pitcher = &models.PitcherProfile{
		HRPer9: models.Float64Ptr(1.3),
	}
	in.Park = models.ParkFactor{Venue: "Citizens Bank Park", Factor: 1.15}
	return in
}

func newScorer() *HeuristicScorer {
	return NewHeuristicScorer(config.DefaultScoring())
}

func TestScoreAlwaysWithinUnitInterval(t *testing.T) {
	s := newScorer()

	extremes := []Input{
		neutralInput(),
		referenceInput(),
		func() Input {
			in := neutralInput()
			in.Batter = &models.BatterProfile{
				ISO:        models.Float64Ptr(0.500),
				BarrelPct:  models.Float64Ptr(30.0),
				ExpectedHR: models.Float64Ptr(0.20),
				Last7ISO:   models.Float64Ptr(0.500),
			}
			in.Pitcher = &models.PitcherProfile{
				HRPer9:           models.Float64Ptr(3.0),
				BarrelPctAllowed: models.Float64Ptr(20.0),
			}
			in.Park = models.ParkFactor{Factor: 1.5}
			in.Weather = models.WeatherAdjustment{Boost: 0.40}
			return in
		}(),
		func() Input {
			in := neutralInput()
			in.Batter = &models.BatterProfile{
				ISO:        models.Float64Ptr(0.010),
				BarrelPct:  models.Float64Ptr(0.0),
				ExpectedHR: models.Float64Ptr(0.0),
				Last7ISO:   models.Float64Ptr(0.010),
			}
			in.Pitcher = &models.PitcherProfile{
				HRPer9:           models.Float64Ptr(0.1),
				BarrelPctAllowed: models.Float64Ptr(1.0),
			}
			in.Park = models.ParkFactor{Factor: 0.5}
			in.Weather = models.WeatherAdjustment{Boost: -0.40}
			return in
		}(),
	}

	for _, in := range extremes {
		res, err := s.Score(context.Background(), in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 1.0)
		assert.GreaterOrEqual(t, res.Probability, 0.0)
		assert.LessOrEqual(t, res.Probability, 1.0)
		assert.Greater(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 1.0)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := newScorer()
	in := referenceInput()

	first, err := s.Score(context.Background(), in)
	require.NoError(t, err)
	second, err := s.Score(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Probability, second.Probability)
	assert.Equal(t, first.Tier, second.Tier)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.DefaultedFields, second.DefaultedFields)
	assert.Equal(t, first.Components, second.Components)
}

func TestReferenceMatchupScoresSleeper(t *testing.T) {
	s := newScorer()

	res, err := s.Score(context.Background(), referenceInput())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Score, 0.55)
	assert.LessOrEqual(t, res.Score, 0.70)
	assert.Equal(t, models.TierSleeper, res.Tier)
	assert.InDelta(t, 0.02+res.Score*0.10, res.Probability, 1e-12)
}

func TestAllDefaultsScoresRisky(t *testing.T) {
	s := newScorer()

	res, err := s.Score(context.Background(), neutralInput())
	require.NoError(t, err)

	assert.Equal(t, models.TierRisky, res.Tier)
	assert.Greater(t, res.Score, 0.30)
	assert.Less(t, res.Score, 0.50)
	assert.True(t, res.Degraded())
	assert.Contains(t, res.DefaultedFields, "batter.iso")
	assert.Contains(t, res.DefaultedFields, "pitcher.hr_per_9")
}

func TestWindBlowingOutStrictlyRaisesScore(t *testing.T) {
	s := newScorer()

	calm := referenceInput()
	windy := referenceInput()
	windy.Weather = models.WeatherAdjustment{Boost: 0.12, WindOutMPH: 10}

	calmRes, err := s.Score(context.Background(), calm)
	require.NoError(t, err)
	windyRes, err := s.Score(context.Background(), windy)
	require.NoError(t, err)

	assert.Greater(t, windyRes.Score, calmRes.Score)
}

func TestHigherScoreNeverLowerTier(t *testing.T) {
	s := newScorer()

	var prev *models.ScoreResult
	for _, iso := range []float64{0.080, 0.140, 0.200, 0.260, 0.320} {
		in := referenceInput()
		in.Batter.ISO = models.Float64Ptr(iso)
		in.Batter.Last7ISO = models.Float64Ptr(iso)

		res, err := s.Score(context.Background(), in)
		require.NoError(t, err)

		if prev != nil {
			require.GreaterOrEqual(t, res.Score, prev.Score)
			assert.GreaterOrEqual(t, res.Tier.Rank(), prev.Tier.Rank())
		}
		prev = res
	}
}

func TestTierLadderBoundaries(t *testing.T) {
	s := newScorer()

	assert.Equal(t, models.TierLock, s.tierFor(0.70))
	assert.Equal(t, models.TierLock, s.tierFor(0.95))
	assert.Equal(t, models.TierSleeper, s.tierFor(0.50))
	assert.Equal(t, models.TierSleeper, s.tierFor(0.6999))
	assert.Equal(t, models.TierRisky, s.tierFor(0.4999))
	assert.Equal(t, models.TierRisky, s.tierFor(0.0))
}

func TestDefaultsLowerConfidence(t *testing.T) {
	s := newScorer()

	full, err := s.Score(context.Background(), func() Input {
		in := referenceInput()
		in.Batter.Last7ISO = models.Float64Ptr(0.240)
		in.Pitcher.BarrelPctAllowed = models.Float64Ptr(8.0)
		return in
	}())
	require.NoError(t, err)
	assert.Empty(t, full.DefaultedFields)
	assert.InDelta(t, 1.0, full.Confidence, 1e-12)

	degraded, err := s.Score(context.Background(), neutralInput())
	require.NoError(t, err)
	assert.Less(t, degraded.Confidence, full.Confidence)
	// Six defaulted fields at 0.05 each.
	assert.InDelta(t, 0.70, degraded.Confidence, 1e-9)
}

func TestProbablePitcherReducesConfidence(t *testing.T) {
	s := newScorer()

	confirmedIn := referenceInput()
	probable := referenceInput()
	probable.Matchup.PitcherConfirmed = false

	confirmedRes, err := s.Score(context.Background(), confirmedIn)
	require.NoError(t, err)
	probableRes, err := s.Score(context.Background(), probable)
	require.NoError(t, err)

	assert.Equal(t, confirmedRes.Score, probableRes.Score, "confidence penalty must not move the score")
	assert.InDelta(t, confirmedRes.Confidence*0.85, probableRes.Confidence, 1e-12)
}

func TestSuppressingPitcherPenalized(t *testing.T) {
	s := newScorer()

	in := referenceInput()
	in.Pitcher = &models.PitcherProfile{
		HRPer9:           models.Float64Ptr(0.5),
		BarrelPctAllowed: models.Float64Ptr(2.5),
	}

	res, err := s.Score(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, -0.04, res.Components["adjustment"], 1e-12)
}

func TestBullpenExposureRewarded(t *testing.T) {
	s := newScorer()

	in := referenceInput()
	in.Pitcher.AvgInnings = models.Float64Ptr(4.1)
	in.Pitcher.BullpenHRPer9 = models.Float64Ptr(1.7)

	res, err := s.Score(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 0.08, res.Components["adjustment"], 1e-12)

	// A deep starter shields the bullpen.
	in.Pitcher.AvgInnings = models.Float64Ptr(6.2)
	res, err = s.Score(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.Components["adjustment"], 1e-12)
}

func TestPitchMatchupAdjustment(t *testing.T) {
	s := newScorer()

	in := referenceInput()
	in.Batter.ISOByPitch = map[string]float64{"FF": 0.300, "SL": 0.120}
	in.Pitcher.PitchMix = map[string]float64{"FF": 0.60, "SL": 0.40}

	res, err := s.Score(context.Background(), in)
	require.NoError(t, err)

	// weighted ISO = .6*.300 + .4*.120 = 0.228; adj = 0.5 * (0.228 - 0.165)
	assert.InDelta(t, 0.0315, res.Components["adjustment"], 1e-9)
}

func TestMalformedMatchupRejected(t *testing.T) {
	s := newScorer()

	in := neutralInput()
	in.Matchup.BatterName = ""

	_, err := s.Score(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMalformedMatchup))
}
