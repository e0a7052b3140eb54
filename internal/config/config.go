// Package config provides configuration management for the Dinger prediction service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	MLBAPI       MLBAPIConfig       `mapstructure:"mlb_api" validate:"required"`
	WeatherAPI   WeatherAPIConfig   `mapstructure:"weather_api" validate:"required"`
	ModelService ModelServiceConfig `mapstructure:"model_service" validate:"required"`
	Scoring      ScoringConfig      `mapstructure:"scoring" validate:"required"`
	Cache        CacheConfig        `mapstructure:"cache" validate:"required"`
	Notify       NotifyConfig       `mapstructure:"notify" validate:"required"`
	Backtest     BacktestConfig     `mapstructure:"backtest" validate:"required"`
	Schedule     ScheduleConfig     `mapstructure:"schedule" validate:"required"`
	Metrics      MetricsConfig      `mapstructure:"metrics" validate:"required"`
	Features     FeaturesConfig     `mapstructure:"features" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents the Postgres connection configuration for the
// prediction log and historical outcomes.
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// MLBAPIConfig represents MLB Stats API access configuration
type MLBAPIConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	StatsBaseURL       string  `mapstructure:"stats_base_url" validate:"required,url"`
	StatsWindowDays    int     `mapstructure:"stats_window_days" validate:"required,gt=0"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"required,gte=0"`
	RetryWaitMinMillis int     `mapstructure:"retry_wait_min_millis" validate:"required,gt=0"`
	RetryWaitMaxMillis int     `mapstructure:"retry_wait_max_millis" validate:"required,gt=0"`
	RateLimit          float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// WeatherAPIConfig represents OpenWeather access configuration
type WeatherAPIConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	APIKey         string `mapstructure:"api_key" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int    `mapstructure:"max_retries" validate:"required,gte=0"`
}

// ModelServiceConfig represents the external gradient-boosted model service.
// When disabled or unreachable the rule-based scorer is used instead.
type ModelServiceConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	HTTPAddress           string `mapstructure:"http_address" validate:"required"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	CacheTTLSeconds       int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize          int    `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// ScoringWeights are the fixed combination weights for the five component
// signals. They must sum to 1 within a small tolerance.
type ScoringWeights struct {
	Batter     float64 `mapstructure:"batter" validate:"required,gt=0"`
	Pitcher    float64 `mapstructure:"pitcher" validate:"required,gt=0"`
	Park       float64 `mapstructure:"park" validate:"required,gt=0"`
	Weather    float64 `mapstructure:"weather" validate:"required,gt=0"`
	RecentForm float64 `mapstructure:"recent_form" validate:"required,gt=0"`
}

// Range is an inclusive min-max normalization reference range.
type Range struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// Width returns max-min.
func (r Range) Width() float64 { return r.Max - r.Min }

// ScoringRanges are the normalization reference ranges per raw metric,
// calibrated against recent league populations.
type ScoringRanges struct {
	ISO           Range `mapstructure:"iso"`
	BarrelPct     Range `mapstructure:"barrel_pct"`
	ExpectedHR    Range `mapstructure:"xhr"`
	HRPer9        Range `mapstructure:"hr_per_9"`
	BarrelAllowed Range `mapstructure:"barrel_allowed"`
	ParkFactor    Range `mapstructure:"park_factor"`
	Last7ISO      Range `mapstructure:"last_7_iso"`
}

// ScoringDefaults are the league-average substitutes for missing profile
// fields.
type ScoringDefaults struct {
	ISO           float64 `mapstructure:"iso" validate:"required,gt=0"`
	BarrelPct     float64 `mapstructure:"barrel_pct" validate:"required,gt=0"`
	ExpectedHR    float64 `mapstructure:"xhr" validate:"required,gt=0"`
	HRPer9        float64 `mapstructure:"hr_per_9" validate:"required,gt=0"`
	BarrelAllowed float64 `mapstructure:"barrel_allowed" validate:"required,gt=0"`
	ParkFactor    float64 `mapstructure:"park_factor" validate:"required,gt=0"`
}

// TierThreshold is one rung of the ordered tier ladder.
type TierThreshold struct {
	Tier     string  `mapstructure:"tier" validate:"required,oneof=Lock Sleeper Risky"`
	MinScore float64 `mapstructure:"min_score" validate:"gte=0,lte=1"`
}

// ScoringConfig groups every tunable constant of the scoring engine.
type ScoringConfig struct {
	Weights            ScoringWeights  `mapstructure:"weights" validate:"required"`
	Ranges             ScoringRanges   `mapstructure:"ranges" validate:"required"`
	Defaults           ScoringDefaults `mapstructure:"defaults" validate:"required"`
	Tiers              []TierThreshold `mapstructure:"tiers" validate:"required,min=2"`
	ProbabilityMin     float64         `mapstructure:"probability_min" validate:"gte=0,lte=1"`
	ProbabilityMax     float64         `mapstructure:"probability_max" validate:"gt=0,lte=1"`
	PitchMatchupWeight float64         `mapstructure:"pitch_matchup_weight" validate:"gte=0"`
	BullpenWeight      float64         `mapstructure:"bullpen_weight" validate:"gte=0"`
	SuppressionCutoff  float64         `mapstructure:"suppression_cutoff" validate:"gte=0"`
	SuppressionPenalty float64         `mapstructure:"suppression_penalty" validate:"gte=0"`
	DefaultPenalty     float64         `mapstructure:"default_penalty" validate:"gte=0,lt=1"`
	ProbablePenalty    float64         `mapstructure:"probable_penalty" validate:"gte=0,lt=1"`
	TopN               int             `mapstructure:"top_n" validate:"required,gt=0"`
}

// CacheConfig configures the on-disk API response cache.
type CacheConfig struct {
	Dir            string        `mapstructure:"dir" validate:"required"`
	LineupMaxAge   time.Duration `mapstructure:"lineup_max_age" validate:"required"`
	StatsMaxAge    time.Duration `mapstructure:"stats_max_age" validate:"required"`
	WeatherMaxAge  time.Duration `mapstructure:"weather_max_age" validate:"required"`
	ScheduleMaxAge time.Duration `mapstructure:"schedule_max_age" validate:"required"`
}

// NotifyConfig configures Telegram alert delivery.
type NotifyConfig struct {
	TelegramBotToken string `mapstructure:"telegram_bot_token" validate:"required"`
	TelegramChatID   string `mapstructure:"telegram_chat_id" validate:"required"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// BacktestConfig configures historical replay runs.
type BacktestConfig struct {
	StartDate  string `mapstructure:"start_date" validate:"required,dateformat"`
	EndDate    string `mapstructure:"end_date" validate:"required,dateformat"`
	OutputPath string `mapstructure:"output_path" validate:"required"`
	Buckets    int    `mapstructure:"calibration_buckets" validate:"required,gt=1"`
}

// ScheduleConfig drives the daemon's cron jobs (UTC).
type ScheduleConfig struct {
	PredictionCron string `mapstructure:"prediction_cron" validate:"required"`
	ResultsCron    string `mapstructure:"results_cron" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Port       int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path       string `mapstructure:"path" validate:"required"`
	HealthPort int    `mapstructure:"health_port" validate:"required,min=1,max=65535"`
	LivePort   int    `mapstructure:"live_port" validate:"required,min=1,max=65535"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	AlertsEnabled       bool `mapstructure:"alerts_enabled"`
	TestMode            bool `mapstructure:"test_mode"`
	ModelScoringEnabled bool `mapstructure:"model_scoring_enabled"`
	LiveHubEnabled      bool `mapstructure:"live_hub_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
