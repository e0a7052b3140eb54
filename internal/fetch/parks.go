package fetch

import "github.com/yourusername/dinger/internal/models"

// parkTable maps MLB Stats API venue names onto HR park factors and the
// geography the weather adjustment needs. Factors are three-year rolling HR
// factors, 1.00 league neutral. Orientation is home plate to center field.
var parkTable = map[string]models.ParkFactor{
	"Angel Stadium":              {Factor: 1.02, OrientationDeg: 65, ElevationFt: 153, Latitude: 33.8003, Longitude: -117.8827},
	"Busch Stadium":              {Factor: 0.92, OrientationDeg: 62, ElevationFt: 466, Latitude: 38.6226, Longitude: -90.1928},
	"Camden Yards":               {Factor: 1.04, OrientationDeg: 31, ElevationFt: 36, Latitude: 39.2839, Longitude: -76.6217},
	"Chase Field":                {Factor: 1.03, OrientationDeg: 0, ElevationFt: 1086, Latitude: 33.4455, Longitude: -112.0667},
	"Citi Field":                 {Factor: 0.98, OrientationDeg: 13, ElevationFt: 10, Latitude: 40.7571, Longitude: -73.8458},
	"Citizens Bank Park":         {Factor: 1.12, OrientationDeg: 9, ElevationFt: 20, Latitude: 39.9061, Longitude: -75.1665},
	"Comerica Park":              {Factor: 0.94, OrientationDeg: 150, ElevationFt: 600, Latitude: 42.3390, Longitude: -83.0485},
	"Coors Field":                {Factor: 1.18, OrientationDeg: 3, ElevationFt: 5200, Latitude: 39.7559, Longitude: -104.9942},
	"Dodger Stadium":             {Factor: 1.06, OrientationDeg: 26, ElevationFt: 522, Latitude: 34.0739, Longitude: -118.2400},
	"Fenway Park":                {Factor: 0.96, OrientationDeg: 45, ElevationFt: 20, Latitude: 42.3467, Longitude: -71.0972},
	"George M. Steinbrenner Field": {Factor: 1.08, OrientationDeg: 75, ElevationFt: 10, Latitude: 27.9803, Longitude: -82.5067},
	"Globe Life Field":           {Factor: 1.00, OrientationDeg: 121, ElevationFt: 551, Latitude: 32.7473, Longitude: -97.0847},
	"Great American Ball Park":   {Factor: 1.15, OrientationDeg: 122, ElevationFt: 490, Latitude: 39.0974, Longitude: -84.5071},
	"Kauffman Stadium":           {Factor: 0.91, OrientationDeg: 45, ElevationFt: 886, Latitude: 39.0517, Longitude: -94.4803},
	"loanDepot park":             {Factor: 0.88, OrientationDeg: 78, ElevationFt: 7, Latitude: 25.7781, Longitude: -80.2196},
	"Minute Maid Park":           {Factor: 1.04, OrientationDeg: 343, ElevationFt: 45, Latitude: 29.7573, Longitude: -95.3555},
	"Nationals Park":             {Factor: 1.01, OrientationDeg: 28, ElevationFt: 25, Latitude: 38.8730, Longitude: -77.0074},
	"Oracle Park":                {Factor: 0.85, OrientationDeg: 85, ElevationFt: 10, Latitude: 37.7786, Longitude: -122.3893},
	"Petco Park":                 {Factor: 0.93, OrientationDeg: 0, ElevationFt: 13, Latitude: 32.7073, Longitude: -117.1566},
	"PNC Park":                   {Factor: 0.90, OrientationDeg: 118, ElevationFt: 730, Latitude: 40.4469, Longitude: -80.0057},
	"Progressive Field":          {Factor: 0.99, OrientationDeg: 0, ElevationFt: 660, Latitude: 41.4962, Longitude: -81.6852},
	"Rate Field":                 {Factor: 1.10, OrientationDeg: 127, ElevationFt: 595, Latitude: 41.8299, Longitude: -87.6338},
	"Rogers Centre":              {Factor: 1.05, OrientationDeg: 345, ElevationFt: 266, Latitude: 43.6414, Longitude: -79.3894},
	"Sutter Health Park":         {Factor: 1.02, OrientationDeg: 312, ElevationFt: 20, Latitude: 38.5802, Longitude: -121.5133},
	"T-Mobile Park":              {Factor: 0.94, OrientationDeg: 49, ElevationFt: 135, Latitude: 47.5914, Longitude: -122.3325},
	"Target Field":               {Factor: 0.98, OrientationDeg: 90, ElevationFt: 815, Latitude: 44.9817, Longitude: -93.2776},
	"Truist Park":                {Factor: 1.04, OrientationDeg: 145, ElevationFt: 1050, Latitude: 33.8908, Longitude: -84.4678},
	"Wrigley Field":              {Factor: 1.02, OrientationDeg: 35, ElevationFt: 600, Latitude: 41.9484, Longitude: -87.6553},
	"Yankee Stadium":             {Factor: 1.13, OrientationDeg: 75, ElevationFt: 54, Latitude: 40.8296, Longitude: -73.9262},
	"American Family Field":      {Factor: 1.07, OrientationDeg: 127, ElevationFt: 635, Latitude: 43.0280, Longitude: -87.9712},
}

// Domed or retractable-roof venues where weather is treated as neutral
// regardless of the outdoor observation.
var domedVenues = map[string]bool{
	"Chase Field":      true,
	"Globe Life Field": true,
	"loanDepot park":   true,
	"Minute Maid Park": true,
	"Rogers Centre":    true,
	"T-Mobile Park":    true,
	"Tropicana Field":  true,
}

// ParkForVenue returns the park factor entry for a venue. Unmapped venues get
// a league-neutral factor with Neutral set so downstream consumers skip the
// weather adjustment rather than guess geography.
func ParkForVenue(venue string) models.ParkFactor {
	if p, ok := parkTable[venue]; ok {
		p.Venue = venue
		p.Domed = domedVenues[venue]
		return p
	}
	return models.ParkFactor{Venue: venue, Factor: 1.0, Neutral: true}
}
