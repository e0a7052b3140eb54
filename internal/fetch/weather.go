package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/cache"
	"github.com/yourusername/dinger/internal/metrics"
	"github.com/yourusername/dinger/internal/models"
)

const sourceWeather = "openweather"

// WeatherClient fetches current conditions for a venue from OpenWeather.
// Failures never block a run: the client substitutes neutral conditions with
// Missing set so the scoring engine applies no weather adjustment.
type WeatherClient struct {
	http    *RateLimitedHTTPClient
	baseURL string
	apiKey  string
	cache   *cache.Store
	logger  *logrus.Logger
}

// NewWeatherClient creates a new OpenWeather client.
func NewWeatherClient(baseURL, apiKey string, httpClient *RateLimitedHTTPClient, store *cache.Store, logger *logrus.Logger) *WeatherClient {
	return &WeatherClient{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
		cache:   store,
		logger:  logger,
	}
}

// Conditions returns the observation at the park's coordinates. Domed and
// unmapped venues, and any fetch failure, yield neutral conditions.
func (c *WeatherClient) Conditions(ctx context.Context, park models.ParkFactor) models.WeatherConditions {
	if park.Domed || park.Neutral || (park.Latitude == 0 && park.Longitude == 0) {
		return models.WeatherConditions{Venue: park.Venue, Missing: true}
	}

	key := park.Venue
	var conditions models.WeatherConditions
	if c.cache != nil {
		if err := c.cache.Get(cache.KindWeather, key, &conditions); err == nil {
			metrics.RecordCacheHit(string(cache.KindWeather))
			return conditions
		}
		metrics.RecordCacheMiss(string(cache.KindWeather))
	}

	endpoint := fmt.Sprintf("%s/data/2.5/weather?lat=%f&lon=%f&units=imperial&appid=%s",
		c.baseURL, park.Latitude, park.Longitude, url.QueryEscape(c.apiKey))

	metrics.RecordFetch(sourceWeather)
	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		metrics.RecordFetchFailure(sourceWeather)
		c.logger.WithError(err).WithField("venue", park.Venue).Warn("Weather unavailable, assuming neutral conditions")
		return models.WeatherConditions{Venue: park.Venue, Missing: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordFetchFailure(sourceWeather)
		c.logger.WithFields(logrus.Fields{
			"venue":  park.Venue,
			"status": resp.StatusCode,
		}).Warn("Weather unavailable, assuming neutral conditions")
		return models.WeatherConditions{Venue: park.Venue, Missing: true}
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.RecordFetchFailure(sourceWeather)
		c.logger.WithError(err).WithField("venue", park.Venue).Warn("Weather response malformed, assuming neutral conditions")
		return models.WeatherConditions{Venue: park.Venue, Missing: true}
	}

	conditions = models.WeatherConditions{
		Venue:        park.Venue,
		TempF:        payload.Main.Temp,
		WindSpeedMPH: payload.Wind.Speed,
		WindDirDeg:   payload.Wind.Deg,
		Humidity:     payload.Main.Humidity,
	}
	if len(payload.Weather) > 0 {
		conditions.Description = payload.Weather[0].Description
	}

	if c.cache != nil {
		if err := c.cache.Put(cache.KindWeather, key, conditions); err != nil {
			c.logger.WithError(err).WithField("venue", park.Venue).Warn("Cache write failed")
		}
	}
	return conditions
}

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}
