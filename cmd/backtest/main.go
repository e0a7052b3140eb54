// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/backtest"
	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/database"
	"github.com/yourusername/dinger/internal/repository"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		startDate  = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		output     = flag.String("output", "", "Override output path for the JSON report")
	)
	flag.Parse()

	logger := newLogger()
	ctx := context.Background()

	cfg := loadConfigWithSecrets(*configPath, logger)
	btConfig := buildBacktestConfig(cfg, *output, *startDate, *endDate, logger)

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	engine := backtest.NewEngine(repository.NewPostgresPredictionRepository(db), logger)

	logger.WithFields(logrus.Fields{
		"start": btConfig.StartDate.Format("2006-01-02"),
		"end":   btConfig.EndDate.Format("2006-01-02"),
	}).Info("Starting backtest")

	metrics, err := engine.Run(ctx, btConfig)
	if err != nil {
		logger.Fatalf("Backtest failed: %v", err)
	}

	if err := backtest.WriteReport(btConfig.OutputPath, metrics); err != nil {
		logger.Fatalf("Failed to write report: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"predictions": metrics.TotalPredictions,
		"settled":     metrics.Settled,
		"hit_rate":    metrics.OverallHitRate,
		"brier":       metrics.BrierScore,
		"log_loss":    metrics.LogLoss,
		"auc":         metrics.AUC,
		"report":      btConfig.OutputPath,
	}).Info("Backtest completed")
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

func loadConfigWithSecrets(path string, logger *logrus.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logger.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logger.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildBacktestConfig(cfg *config.Config, output, startOverride, endOverride string, logger *logrus.Logger) backtest.Config {
	btConfig, err := backtest.FromAppConfig(cfg.Backtest)
	if err != nil {
		logger.Fatalf("Invalid backtest config: %v", err)
	}
	if output != "" {
		btConfig.OutputPath = output
	}
	if startOverride != "" {
		parsed, err := time.Parse("2006-01-02", startOverride)
		if err != nil {
			logger.Fatalf("Invalid start date: %v", err)
		}
		btConfig.StartDate = parsed
	}
	if endOverride != "" {
		parsed, err := time.Parse("2006-01-02", endOverride)
		if err != nil {
			logger.Fatalf("Invalid end date: %v", err)
		}
		btConfig.EndDate = parsed
	}
	if !btConfig.EndDate.After(btConfig.StartDate) {
		logger.Fatalf("End date must be after start date")
	}
	return btConfig
}
