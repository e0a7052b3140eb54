package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/config"
)

// HTTPClient talks to the model service's JSON API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	logger  *logrus.Logger
}

// NewHTTPClient creates a new model service client.
func NewHTTPClient(cfg config.ModelServiceConfig, logger *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		},
		baseURL: cfg.HTTPAddress,
		logger:  logger,
	}
}

// Features is the flattened feature vector for one matchup. Field names match
// the training pipeline's column names.
type Features struct {
	GameID        string  `json:"game_id"`
	ISO           float64 `json:"iso"`
	BarrelPct     float64 `json:"barrel_pct"`
	ExpectedHR    float64 `json:"xhr"`
	Last7ISO      float64 `json:"last_7_iso"`
	HRPer9        float64 `json:"hr_per_9"`
	BarrelAllowed float64 `json:"barrel_pct_allowed"`
	ParkFactor    float64 `json:"park_factor"`
	WeatherBoost  float64 `json:"weather_boost"`
}

// Prediction is the service's answer for one feature vector.
type Prediction struct {
	GameID       string  `json:"game_id"`
	Probability  float64 `json:"probability"`
	ModelVersion string  `json:"model_version"`
}

type predictBatchRequest struct {
	Items []Features `json:"items"`
}

type predictBatchResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// PredictBatch scores a batch of feature vectors in one round trip.
func (c *HTTPClient) PredictBatch(ctx context.Context, items []Features) ([]Prediction, error) {
	start := time.Now()

	jsonData, err := json.Marshal(predictBatchRequest{Items: items})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/predict/batch", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrPredictionFailed, resp.StatusCode, string(body))
	}

	var batch predictBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"items":    len(items),
		"duration": time.Since(start),
	}).Debug("Model batch scored")

	return batch.Predictions, nil
}

// ModelStatus describes the currently served model.
type ModelStatus struct {
	ModelVersion string             `json:"model_version"`
	TrainedAt    time.Time          `json:"trained_at"`
	Samples      int                `json:"samples"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Status returns the served model's version and evaluation metrics.
func (c *HTTPClient) Status(ctx context.Context) (*ModelStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/models/status", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status request failed with status %d", resp.StatusCode)
	}

	var status ModelStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return &status, nil
}

// HealthCheck checks model service health.
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}
