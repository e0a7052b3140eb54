package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dinger/internal/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 2 * time.Millisecond
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, testLogger())
}

const scheduleJSON = `{
  "dates": [{"games": [{
    "gamePk": 745001,
    "gameDate": "2026-08-26T23:05:00Z",
    "venue": {"name": "Yankee Stadium"},
    "status": {"abstractGameState": "Preview"},
    "teams": {
      "home": {
        "team": {"id": 147, "name": "New York Yankees"},
        "probablePitcher": {"id": 543037, "fullName": "Gerrit Cole"}
      },
      "away": {
        "team": {"id": 111, "name": "Boston Red Sox"},
        "probablePitcher": {"id": 678394, "fullName": "Brayan Bello"}
      }
    }
  }]}]
}`

const boxscoreJSON = `{
  "teams": {
    "home": {
      "battingOrder": [592450],
      "players": {"ID592450": {"person": {"id": 592450, "fullName": "Aaron Judge"}}}
    },
    "away": {
      "battingOrder": [646240],
      "players": {"ID646240": {"person": {"id": 646240, "fullName": "Rafael Devers"}}}
    }
  }
}`

func newMLBTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/schedule", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, scheduleJSON)
	})
	mux.HandleFunc("/api/v1/game/745001/boxscore", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, boxscoreJSON)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestScheduleParsesGamesAndProbables(t *testing.T) {
	server := newMLBTestServer(t)
	client := NewMLBClient(server.URL, testHTTPClient(), nil, testLogger())

	games, err := client.Schedule(context.Background(), time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, games, 1)

	g := games[0]
	assert.Equal(t, 745001, g.GamePK)
	assert.Equal(t, "Yankee Stadium", g.Venue)
	assert.Equal(t, "Gerrit Cole", g.HomePitcherName)
	assert.Equal(t, 678394, g.AwayPitcherID)
	assert.Equal(t, "New York Yankees", g.HomeTeam)
}

func TestMatchupsPairBattersWithOpposingStarter(t *testing.T) {
	server := newMLBTestServer(t)
	client := NewMLBClient(server.URL, testHTTPClient(), nil, testLogger())

	matchups, err := client.Matchups(context.Background(), time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, matchups, 2)

	byBatter := map[string]*models.Matchup{}
	for _, m := range matchups {
		byBatter[m.BatterName] = m
	}

	judge := byBatter["Aaron Judge"]
	require.NotNil(t, judge)
	assert.Equal(t, "Brayan Bello", judge.PitcherName)
	assert.False(t, judge.PitcherConfirmed)
	assert.True(t, judge.HasIdentity())

	devers := byBatter["Rafael Devers"]
	require.NotNil(t, devers)
	assert.Equal(t, "Gerrit Cole", devers.PitcherName)
}

func TestMatchupsSkipSidesWithoutProbablePitcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/schedule", func(w http.ResponseWriter, r *http.Request) {
		// Away side has no probable pitcher listed.
		fmt.Fprint(w, `{"dates":[{"games":[{
			"gamePk": 745002,
			"gameDate": "2026-08-26T20:10:00Z",
			"venue": {"name": "Coors Field"},
			"status": {"abstractGameState": "Preview"},
			"teams": {
				"home": {"team": {"id": 115, "name": "Colorado Rockies"},
					"probablePitcher": {"id": 669060, "fullName": "Ryan Feltner"}},
				"away": {"team": {"id": 119, "name": "Los Angeles Dodgers"},
					"probablePitcher": {}}
			}
		}]}]}`)
	})
	mux.HandleFunc("/api/v1/game/745002/boxscore", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"teams":{
			"home": {"battingOrder": [663898],
				"players": {"ID663898": {"person": {"id": 663898, "fullName": "Brenton Doyle"}}}},
			"away": {"battingOrder": [605141],
				"players": {"ID605141": {"person": {"id": 605141, "fullName": "Mookie Betts"}}}}
		}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewMLBClient(server.URL, testHTTPClient(), nil, testLogger())
	matchups, err := client.Matchups(context.Background(), time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Only away batters score: the home side faces no listed starter.
	require.Len(t, matchups, 1)
	assert.Equal(t, "Mookie Betts", matchups[0].BatterName)
	assert.Equal(t, "Ryan Feltner", matchups[0].PitcherName)
}

func TestLineupFallsBackToRosterProjection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/game/745003/boxscore", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"teams":{"home":{"battingOrder":[],"players":{}},"away":{"battingOrder":[],"players":{}}}}`)
	})
	mux.HandleFunc("/api/v1/teams/147/roster", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"roster":[
			{"person": {"id": 592450, "fullName": "Aaron Judge"}, "position": {"abbreviation": "RF"}},
			{"person": {"id": 543037, "fullName": "Gerrit Cole"}, "position": {"abbreviation": "P"}},
			{"person": {"id": 665742, "fullName": "Juan Soto"}, "position": {"abbreviation": "LF"}}
		]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewMLBClient(server.URL, testHTTPClient(), nil, testLogger())
	game := Game{GamePK: 745003, HomeTeamID: 147}

	entries, confirmed, err := client.Lineup(context.Background(), game, true)
	require.NoError(t, err)
	assert.False(t, confirmed)
	require.Len(t, entries, 2, "pitchers are excluded from projected lineups")
	assert.True(t, entries[0].Projected)
	assert.Equal(t, "Aaron Judge", entries[0].BatterName)
}

func TestBatterProfileParsesFeed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/batters/592450", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-08-11", r.URL.Query().Get("start"))
		assert.Equal(t, "2026-08-25", r.URL.Query().Get("end"))
		fmt.Fprint(w, `{"iso": 0.310, "barrel_pct": 18.2, "xhr": 0.095, "last_7_iso": 0.290, "stands": "R"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewStatsClient(server.URL, 15, testHTTPClient(), nil, testLogger())
	profile, err := client.BatterProfile(context.Background(), 592450, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NotNil(t, profile.ISO)
	assert.InDelta(t, 0.310, *profile.ISO, 1e-9)
	require.NotNil(t, profile.BarrelPct)
	assert.InDelta(t, 18.2, *profile.BarrelPct, 1e-9)
	assert.Equal(t, "R", profile.Stands)
	require.NotNil(t, profile.ExpectedHR)
	assert.InDelta(t, 0.095, *profile.ExpectedHR, 1e-9)
	assert.False(t, profile.IsEmpty())
}

func TestBatterProfileFallsBackToEmptyOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewStatsClient(server.URL, 15, testHTTPClient(), nil, testLogger())
	profile, err := client.BatterProfile(context.Background(), 999999, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
	require.NotNil(t, profile, "an empty profile is still returned for default scoring")
	assert.True(t, profile.IsEmpty())
	assert.Equal(t, 999999, profile.BatterID)
}

func TestPitcherProfileFallsBackToEmptyOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewStatsClient(server.URL, 15, testHTTPClient(), nil, testLogger())
	profile, err := client.PitcherProfile(context.Background(), 543037, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
	require.NotNil(t, profile)
	assert.True(t, profile.IsEmpty())
}

func TestWeatherConditionsParsed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"main": {"temp": 84.5, "humidity": 48},
			"wind": {"speed": 12.0, "deg": 255},
			"weather": [{"description": "clear sky"}]}`)
	}))
	defer server.Close()

	client := NewWeatherClient(server.URL, "test-key", testHTTPClient(), nil, testLogger())
	park := ParkForVenue("Yankee Stadium")

	conditions := client.Conditions(context.Background(), park)
	assert.False(t, conditions.Missing)
	assert.InDelta(t, 84.5, conditions.TempF, 1e-9)
	assert.InDelta(t, 12.0, conditions.WindSpeedMPH, 1e-9)
	assert.InDelta(t, 255, conditions.WindDirDeg, 1e-9)
	assert.Equal(t, "clear sky", conditions.Description)
}

func TestWeatherNeutralOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewWeatherClient(server.URL, "test-key", testHTTPClient(), nil, testLogger())
	conditions := client.Conditions(context.Background(), ParkForVenue("Fenway Park"))
	assert.True(t, conditions.Missing)
}

func TestWeatherNeutralForDomedVenues(t *testing.T) {
	// No server: domed venues must never hit the network.
	client := NewWeatherClient("http://unreachable.invalid", "test-key", testHTTPClient(), nil, testLogger())
	conditions := client.Conditions(context.Background(), ParkForVenue("Tropicana Field"))
	assert.True(t, conditions.Missing)
}

func TestParkForVenueKnownAndUnknown(t *testing.T) {
	coors := ParkForVenue("Coors Field")
	assert.InDelta(t, 1.18, coors.Factor, 1e-9)
	assert.False(t, coors.Neutral)
	assert.InDelta(t, 5200, coors.ElevationFt, 1e-9)

	unknown := ParkForVenue("Estadio Alfredo Harp Helú")
	assert.True(t, unknown.Neutral)
	assert.InDelta(t, 1.0, unknown.Factor, 1e-9)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, testLogger())

	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		if err == nil {
			resp.Body.Close()
		}
	}

	_, err := client.Get(context.Background(), "http://unreachable.invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}
