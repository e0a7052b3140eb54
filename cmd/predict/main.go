// Package main provides a one-shot CLI that scores a single day's slate.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/dinger/internal/cache"
	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/database"
	"github.com/yourusername/dinger/internal/fetch"
	"github.com/yourusername/dinger/internal/logger"
	"github.com/yourusername/dinger/internal/model"
	"github.com/yourusername/dinger/internal/notify"
	"github.com/yourusername/dinger/internal/repository"
	"github.com/yourusername/dinger/internal/scoring"
	"github.com/yourusername/dinger/internal/service"
)

var (
	configFile string
	dateFlag   string
	dryRun     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&dateFlag, "date", "", "Slate date (YYYY-MM-DD), defaults to today UTC")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Score and log without persisting or sending alerts")
}

var rootCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one day's home run matchups",
	Long:  `Fetches the slate for a date, scores every batter-vs-starter matchup and sends the top picks digest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	if dryRun {
		cfg.Features.TestMode = true
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if dateFlag != "" {
		date, err = time.Parse("2006-01-02", dateFlag)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", dateFlag, err)
		}
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	store, err := cache.Open(cfg.Cache, appLog)
	if err != nil {
		return fmt.Errorf("failed to open response cache: %w", err)
	}
	defer store.Close()

	pipeline := buildPipeline(cfg, db, store, appLog)

	summary, err := pipeline.RunDaily(ctx, date)
	if err != nil {
		return fmt.Errorf("prediction run failed: %w", err)
	}

	appLog.WithFields(logrus.Fields{
		"date":     summary.Date.Format("2006-01-02"),
		"scored":   summary.Scored,
		"excluded": summary.Excluded,
		"degraded": summary.Degraded,
		"notified": summary.Notified,
		"elapsed":  summary.Elapsed.String(),
	}).Info("Prediction run completed")

	for i, res := range summary.Results {
		fmt.Printf("%2d. [%s] %s vs %s  score=%.3f  p=%.3f\n",
			i+1, res.Tier, res.Matchup.BatterName, res.Matchup.PitcherName, res.Score, res.Probability)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func buildPipeline(cfg *config.Config, db *database.DB, store *cache.Store, appLog *logrus.Logger) *service.Pipeline {
	mlbHTTP := fetch.NewRateLimitedHTTPClient(fetch.HTTPClientConfig{
		Timeout:           time.Duration(cfg.MLBAPI.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.MLBAPI.MaxRetries,
		RetryWaitMin:      time.Duration(cfg.MLBAPI.RetryWaitMinMillis) * time.Millisecond,
		RetryWaitMax:      time.Duration(cfg.MLBAPI.RetryWaitMaxMillis) * time.Millisecond,
		RateLimit:         cfg.MLBAPI.RateLimit,
		CircuitBreakerMax: 5,
	}, appLog)

	weatherHTTP := fetch.NewRateLimitedHTTPClient(fetch.DefaultHTTPClientConfig(), appLog)

	var scorer scoring.Scorer = scoring.NewHeuristicScorer(cfg.Scoring)
	if cfg.Features.ModelScoringEnabled && cfg.ModelService.Enabled {
		modelCache := model.NewPredictionCache(
			time.Duration(cfg.ModelService.CacheTTLSeconds)*time.Second,
			cfg.ModelService.CacheMaxSize,
		)
		scorer = model.NewScorer(model.NewHTTPClient(cfg.ModelService, appLog), modelCache, cfg.Scoring, appLog)
	}

	return service.NewPipeline(service.PipelineDeps{
		Matchups: fetch.NewMLBClient(cfg.MLBAPI.BaseURL, mlbHTTP, store, appLog),
		Profiles: fetch.NewStatsClient(cfg.MLBAPI.StatsBaseURL, cfg.MLBAPI.StatsWindowDays, mlbHTTP, store, appLog),
		Weather:  fetch.NewWeatherClient(cfg.WeatherAPI.BaseURL, cfg.WeatherAPI.APIKey, weatherHTTP, store, appLog),
		Parks:    fetch.ParkForVenue,
		Scorer:   scorer,
		Repo:     repository.NewPostgresPredictionRepository(db),
		Notifier: notify.NewTelegramNotifier(cfg.Notify, appLog),
	}, cfg, appLog)
}
