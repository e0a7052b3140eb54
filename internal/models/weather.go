package models

import "math"

// WeatherConditions holds the raw observation for a venue around game time.
type WeatherConditions struct {
	Venue        string  `json:"venue"`
	TempF        float64 `json:"temp_f"`
	WindSpeedMPH float64 `json:"wind_speed_mph"`
	WindDirDeg   float64 `json:"wind_dir_deg"` // meteorological: direction the wind blows FROM
	Humidity     float64 `json:"humidity"`
	Description  string  `json:"description"`
	Missing      bool    `json:"missing"` // true when the fetch failed and neutral conditions were substituted
}

// WeatherAdjustment is the scoring-ready reduction of conditions at a venue:
// a bounded additive boost, positive when the environment favors home runs.
type WeatherAdjustment struct {
	Boost      float64 `json:"boost"`
	WindOutMPH float64 `json:"wind_out_mph"` // signed component of wind toward center field
	TempDeltaF float64 `json:"temp_delta_f"` // degrees above the 70F reference
	Neutral    bool    `json:"neutral"`
}

// Adjustment limits. Wind dominates, temperature and elevation are
// secondary; elevation alone can never exceed the Coors-style cap.
const (
	windBoostPerMPH   = 0.012
	windBoostCap      = 0.25
	tempBoostPerDegF  = 0.002
	tempReferenceF    = 70.0
	elevationBoostCap = 0.15
	elevationDivisor  = 30000.0
)

// ComputeWeatherAdjustment reduces raw conditions plus park geography into a
// bounded additive boost. Deterministic in its inputs.
func ComputeWeatherAdjustment(w WeatherConditions, park ParkFactor) WeatherAdjustment {
	if w.Missing {
		return WeatherAdjustment{Neutral: true}
	}

	// Wind blows FROM WindDirDeg; it carries the ball out when it blows
	// toward center field, i.e. when the source direction opposes the
	// park orientation.
	toward := math.Mod(w.WindDirDeg+180, 360)
	delta := angularDelta(toward, park.OrientationDeg)
	windOut := w.WindSpeedMPH * math.Cos(delta*math.Pi/180)

	windBoost := clampAbs(windOut*windBoostPerMPH, windBoostCap)
	tempDelta := w.TempF - tempReferenceF
	tempBoost := tempDelta * tempBoostPerDegF
	elevBoost := math.Min(math.Max(park.ElevationFt, 0)/elevationDivisor, elevationBoostCap)

	return WeatherAdjustment{
		Boost:      windBoost + tempBoost + elevBoost,
		WindOutMPH: windOut,
		TempDeltaF: tempDelta,
	}
}

func angularDelta(a, b float64) float64 {
	d := math.Abs(math.Mod(a-b+540, 360) - 180)
	return d
}

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
