package models

// ParkFactor describes how much a venue inflates or deflates home run
// outcomes. Factor 1.0 is league neutral. OrientationDeg is the compass
// bearing from home plate to center field, used to classify wind as blowing
// out or in.
type ParkFactor struct {
	Venue          string  `json:"venue"`
	Factor         float64 `json:"factor"`
	OrientationDeg float64 `json:"orientation_deg"`
	ElevationFt    float64 `json:"elevation_ft"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Domed          bool    `json:"domed"`   // roofed venue, weather treated as neutral
	Neutral        bool    `json:"neutral"` // true when the venue was unmapped and the league default applied
}
