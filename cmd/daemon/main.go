// Package main provides the entry point for the Dinger prediction daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/cache"
	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/database"
	"github.com/yourusername/dinger/internal/fetch"
	"github.com/yourusername/dinger/internal/health"
	"github.com/yourusername/dinger/internal/live"
	"github.com/yourusername/dinger/internal/logger"
	"github.com/yourusername/dinger/internal/metrics"
	"github.com/yourusername/dinger/internal/model"
	"github.com/yourusername/dinger/internal/notify"
	"github.com/yourusername/dinger/internal/repository"
	"github.com/yourusername/dinger/internal/scheduler"
	"github.com/yourusername/dinger/internal/scoring"
	"github.com/yourusername/dinger/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Dinger prediction daemon starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection and schema
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	// Open the on-disk API response cache
	store, err := cache.Open(cfg.Cache, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to open response cache")
	}
	defer store.Close()

	// Initialize repositories
	predictionRepo := repository.NewPostgresPredictionRepository(db)
	outcomeRepo := repository.NewPostgresOutcomeRepository(db)

	// Initialize data source clients
	mlbHTTP := fetch.NewRateLimitedHTTPClient(fetch.HTTPClientConfig{
		Timeout:           time.Duration(cfg.MLBAPI.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.MLBAPI.MaxRetries,
		RetryWaitMin:      time.Duration(cfg.MLBAPI.RetryWaitMinMillis) * time.Millisecond,
		RetryWaitMax:      time.Duration(cfg.MLBAPI.RetryWaitMaxMillis) * time.Millisecond,
		RateLimit:         cfg.MLBAPI.RateLimit,
		CircuitBreakerMax: 5,
	}, appLog)

	mlbClient := fetch.NewMLBClient(cfg.MLBAPI.BaseURL, mlbHTTP, store, appLog)
	statsClient := fetch.NewStatsClient(cfg.MLBAPI.StatsBaseURL, cfg.MLBAPI.StatsWindowDays, mlbHTTP, store, appLog)

	weatherHTTP := fetch.NewRateLimitedHTTPClient(fetch.HTTPClientConfig{
		Timeout:           time.Duration(cfg.WeatherAPI.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.WeatherAPI.MaxRetries,
		RetryWaitMin:      250 * time.Millisecond,
		RetryWaitMax:      4 * time.Second,
		RateLimit:         2.0,
		CircuitBreakerMax: 5,
	}, appLog)
	weatherClient := fetch.NewWeatherClient(cfg.WeatherAPI.BaseURL, cfg.WeatherAPI.APIKey, weatherHTTP, store, appLog)

	// Pick the scorer: model-backed with heuristic fallback, or pure heuristic
	var scorer scoring.Scorer = scoring.NewHeuristicScorer(cfg.Scoring)
	var modelClient *model.HTTPClient
	if cfg.Features.ModelScoringEnabled && cfg.ModelService.Enabled {
		modelClient = model.NewHTTPClient(cfg.ModelService, appLog)
		modelCache := model.NewPredictionCache(
			time.Duration(cfg.ModelService.CacheTTLSeconds)*time.Second,
			cfg.ModelService.CacheMaxSize,
		)
		scorer = model.NewScorer(modelClient, modelCache, cfg.Scoring, appLog)
		appLog.WithField("model_service_url", cfg.ModelService.HTTPAddress).Info("Model scoring enabled")
	} else {
		appLog.Info("Model scoring disabled; using rule-based scorer")
	}

	notifier := notify.NewTelegramNotifier(cfg.Notify, appLog)

	// Live update hub
	var hub *live.Hub
	var broadcaster service.Broadcaster
	if cfg.Features.LiveHubEnabled {
		hub = live.NewHub(appLog)
		go hub.Run(ctx)
		go func() {
			if err := hub.Serve(ctx, cfg.Metrics.LivePort); err != nil {
				appLog.WithError(err).Error("Live update server error")
			}
		}()
		broadcaster = hub
	}

	pipeline := service.NewPipeline(service.PipelineDeps{
		Matchups:    mlbClient,
		Profiles:    statsClient,
		Weather:     weatherClient,
		Parks:       fetch.ParkForVenue,
		Scorer:      scorer,
		Repo:        predictionRepo,
		Notifier:    notifier,
		Broadcaster: broadcaster,
	}, cfg, appLog)

	resultsUpdater := service.NewResultsUpdater(mlbClient, predictionRepo, outcomeRepo, appLog)

	// Schedule the recurring jobs
	sched := scheduler.NewScheduler(pipeline, resultsUpdater, appLog)
	if err := sched.ScheduleJobs(cfg.Schedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule jobs")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	appLog.WithField("next_run", sched.NextRun().Format(time.RFC3339)).Info("Scheduler started")

	// Health check server
	healthServer := health.NewServer(cfg.App.Name, Version, cfg.Metrics.HealthPort, appLog)
	healthServer.AddCheck("database", db)
	if modelClient != nil {
		healthServer.AddCheck("model_service", pingerFunc(modelClient.HealthCheck))
	}
	healthServer.SetReady(true)
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Metrics server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go serveMetrics(cfg, appLog)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	sched.Stop()
	cancel()

	// Give servers and pumps time to drain
	time.Sleep(2 * time.Second)
	appLog.Info("Dinger prediction daemon shut down successfully")
}

// pingerFunc adapts a plain health check function to the health.Pinger
// interface.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveMetrics(cfg *config.Config, appLog *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	appLog.WithFields(logrus.Fields{
		"port": cfg.Metrics.Port,
		"path": cfg.Metrics.Path,
	}).Info("Metrics server starting")

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLog.WithError(err).Error("Metrics server error")
	}
}
