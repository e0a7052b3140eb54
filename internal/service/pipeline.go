package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/logger"
	"github.com/yourusername/dinger/internal/metrics"
	"github.com/yourusername/dinger/internal/models"
	"github.com/yourusername/dinger/internal/notify"
	"github.com/yourusername/dinger/internal/repository"
	"github.com/yourusername/dinger/internal/scoring"
)

// MatchupSource assembles the day's batter-vs-starter matchups.
type MatchupSource interface {
	Matchups(ctx context.Context, date time.Time) ([]*models.Matchup, error)
}

// ProfileSource supplies trailing-window player profiles.
type ProfileSource interface {
	BatterProfile(ctx context.Context, batterID int, gameDate time.Time) (*models.BatterProfile, error)
	PitcherProfile(ctx context.Context, pitcherID int, gameDate time.Time) (*models.PitcherProfile, error)
}

// WeatherSource supplies venue conditions.
type WeatherSource interface {
	Conditions(ctx context.Context, park models.ParkFactor) models.WeatherConditions
}

// ParkSource maps a venue name onto its park factor.
type ParkSource func(venue string) models.ParkFactor

// Broadcaster pushes finished results to live subscribers.
type Broadcaster interface {
	BroadcastResults(date time.Time, results []*models.ScoreResult)
}

// RunSummary is the outcome of one daily pipeline run.
type RunSummary struct {
	Date     time.Time
	Scored   int
	Excluded int
	Degraded int
	Notified int
	Elapsed  time.Duration
	Results  []*models.ScoreResult
}

// Pipeline runs the daily prediction flow end to end. Any single matchup
// failing never aborts the run; only a schedule-level failure does.
type Pipeline struct {
	matchups    MatchupSource
	profiles    ProfileSource
	weather     WeatherSource
	parks       ParkSource
	scorer      scoring.Scorer
	validator   *MatchupValidator
	repo        repository.PredictionRepository
	notifier    notify.Notifier
	broadcaster Broadcaster
	cfg         *config.Config
	logger      *logrus.Logger
	audit       *logger.PredictionLogger
}

// PipelineDeps bundles the pipeline's collaborators.
type PipelineDeps struct {
	Matchups    MatchupSource
	Profiles    ProfileSource
	Weather     WeatherSource
	Parks       ParkSource
	Scorer      scoring.Scorer
	Repo        repository.PredictionRepository
	Notifier    notify.Notifier
	Broadcaster Broadcaster
}

// NewPipeline creates the daily pipeline.
func NewPipeline(deps PipelineDeps, cfg *config.Config, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		matchups:    deps.Matchups,
		profiles:    deps.Profiles,
		weather:     deps.Weather,
		parks:       deps.Parks,
		scorer:      deps.Scorer,
		validator:   NewMatchupValidator(),
		repo:        deps.Repo,
		notifier:    deps.Notifier,
		broadcaster: deps.Broadcaster,
		cfg:         cfg,
		logger:      log,
		audit:       logger.NewPredictionLogger(log),
	}
}

// RunDaily scores every matchup for a date, persists the full log and sends
// the top picks digest.
func (p *Pipeline) RunDaily(ctx context.Context, date time.Time) (*RunSummary, error) {
	start := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	matchups, err := p.matchups.Matchups(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble matchups: %w", err)
	}

	summary := &RunSummary{Date: date}
	for _, m := range matchups {
		if problems := p.validator.Validate(m); len(problems) > 0 {
			summary.Excluded++
			metrics.MatchupsExcludedTotal.Inc()
			p.audit.LogExclusion(m, strings.Join(problems, "; "))
			continue
		}

		res, err := p.scoreOne(ctx, m)
		if err != nil {
			summary.Excluded++
			metrics.MatchupsExcludedTotal.Inc()
			p.audit.LogExclusion(m, err.Error())
			continue
		}

		summary.Results = append(summary.Results, res)
		summary.Scored++
		if res.Degraded() {
			summary.Degraded++
		}
		metrics.RecordPrediction(string(res.Tier))
		p.audit.LogScore(res)
	}

	sort.SliceStable(summary.Results, func(i, j int) bool {
		return summary.Results[i].Score > summary.Results[j].Score
	})

	if err := p.persist(ctx, summary.Results); err != nil {
		return summary, err
	}

	if err := p.notify(ctx, date, summary); err != nil {
		// Predictions are already persisted; a delivery failure should not
		// fail the run.
		p.logger.WithError(err).Error("Digest delivery failed")
	}

	if p.broadcaster != nil {
		p.broadcaster.BroadcastResults(date, summary.Results)
	}

	metrics.LastRunScored.Set(float64(summary.Scored))
	metrics.LastRunDegraded.Set(float64(summary.Degraded))

	summary.Elapsed = time.Since(start)
	p.audit.LogRunSummary(date, summary.Scored, summary.Excluded, summary.Degraded, summary.Elapsed)
	return summary, nil
}

// scoreOne gathers profiles, park and weather for one matchup and scores it.
// Profile fetch failures degrade to defaults rather than dropping the
// matchup.
func (p *Pipeline) scoreOne(ctx context.Context, m *models.Matchup) (*models.ScoreResult, error) {
	scoreStart := time.Now()
	defer func() {
		metrics.ScoringDuration.Observe(time.Since(scoreStart).Seconds())
	}()

	batter, err := p.profiles.BatterProfile(ctx, m.BatterID, m.GameDate)
	if err != nil {
		p.logger.WithError(err).WithField("batter", m.BatterName).Debug("Scoring batter on defaults")
	}
	pitcher, err := p.profiles.PitcherProfile(ctx, m.PitcherID, m.GameDate)
	if err != nil {
		p.logger.WithError(err).WithField("pitcher", m.PitcherName).Debug("Scoring pitcher on defaults")
	}

	park := p.parks(m.Venue)
	conditions := p.weather.Conditions(ctx, park)
	adjustment := models.ComputeWeatherAdjustment(conditions, park)

	return p.scorer.Score(ctx, scoring.Input{
		Matchup: m,
		Batter:  batter,
		Pitcher: pitcher,
		Park:    park,
		Weather: adjustment,
	})
}

func (p *Pipeline) persist(ctx context.Context, results []*models.ScoreResult) error {
	if p.repo == nil || len(results) == 0 {
		return nil
	}

	recs := make([]*models.PredictionRecord, 0, len(results))
	for _, res := range results {
		recs = append(recs, models.NewPredictionRecord(res, res.ModelVersion))
	}
	if err := p.repo.UpsertBatch(ctx, recs); err != nil {
		return fmt.Errorf("failed to persist predictions: %w", err)
	}
	return nil
}

// notify sends the top-N digest. Test mode logs the message instead of
// delivering it.
func (p *Pipeline) notify(ctx context.Context, date time.Time, summary *RunSummary) error {
	if p.notifier == nil || !p.cfg.Features.AlertsEnabled {
		return nil
	}

	top := summary.Results
	if n := p.cfg.Scoring.TopN; n > 0 && len(top) > n {
		top = top[:n]
	}
	summary.Notified = len(top)

	digest := notify.FormatDigest(date.Format("2006-01-02"), top)
	if p.cfg.Features.TestMode {
		p.logger.WithField("digest", digest).Info("Test mode, digest not sent")
		return nil
	}
	return p.notifier.SendDigest(ctx, digest)
}
