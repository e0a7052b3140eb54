package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/cache"
	"github.com/yourusername/dinger/internal/metrics"
	"github.com/yourusername/dinger/internal/models"
)

const sourceMLB = "mlb_stats_api"

// Game is one scheduled game with its probable starters, as returned by the
// MLB Stats API schedule endpoint.
type Game struct {
	GamePK          int       `json:"game_pk"`
	GameTime        time.Time `json:"game_time"`
	Venue           string    `json:"venue"`
	HomeTeam        string    `json:"home_team"`
	AwayTeam        string    `json:"away_team"`
	HomeTeamID      int       `json:"home_team_id"`
	AwayTeamID      int       `json:"away_team_id"`
	HomePitcherID   int       `json:"home_pitcher_id"`
	HomePitcherName string    `json:"home_pitcher_name"`
	AwayPitcherID   int       `json:"away_pitcher_id"`
	AwayPitcherName string    `json:"away_pitcher_name"`
	State           string    `json:"state"`
}

// LineupEntry is one batter slot from a boxscore or projected lineup.
type LineupEntry struct {
	BatterID   int    `json:"batter_id"`
	BatterName string `json:"batter_name"`
	Order      int    `json:"order"`
	Projected  bool   `json:"projected"`
}

// MLBClient fetches schedules and lineups from the MLB Stats API, consulting
// the disk cache before the network.
type MLBClient struct {
	http    *RateLimitedHTTPClient
	baseURL string
	cache   *cache.Store
	logger  *logrus.Logger
}

// NewMLBClient creates a new MLB Stats API client.
func NewMLBClient(baseURL string, httpClient *RateLimitedHTTPClient, store *cache.Store, logger *logrus.Logger) *MLBClient {
	return &MLBClient{
		http:    httpClient,
		baseURL: baseURL,
		cache:   store,
		logger:  logger,
	}
}

// Schedule returns the day's games with probable pitchers.
func (c *MLBClient) Schedule(ctx context.Context, date time.Time) ([]Game, error) {
	key := date.Format("2006-01-02")

	var games []Game
	if c.cacheGet(cache.KindSchedule, key, &games) {
		return games, nil
	}

	endpoint := fmt.Sprintf("%s/api/v1/schedule?sportId=1&date=%s&hydrate=%s",
		c.baseURL, key, url.QueryEscape("probablePitcher,venue"))

	var payload scheduleResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, NewSourceError(sourceMLB, ErrCodeNetworkError, "schedule fetch failed", err)
	}

	for _, d := range payload.Dates {
		for _, g := range d.Games {
			games = append(games, Game{
				GamePK:          g.GamePK,
				GameTime:        g.GameDate,
				Venue:           g.Venue.Name,
				HomeTeam:        g.Teams.Home.Team.Name,
				AwayTeam:        g.Teams.Away.Team.Name,
				HomeTeamID:      g.Teams.Home.Team.ID,
				AwayTeamID:      g.Teams.Away.Team.ID,
				HomePitcherID:   g.Teams.Home.ProbablePitcher.ID,
				HomePitcherName: g.Teams.Home.ProbablePitcher.FullName,
				AwayPitcherID:   g.Teams.Away.ProbablePitcher.ID,
				AwayPitcherName: g.Teams.Away.ProbablePitcher.FullName,
				State:           g.Status.AbstractGameState,
			})
		}
	}

	c.cachePut(cache.KindSchedule, key, games)
	return games, nil
}

// Lineup returns the confirmed batting order for one side of a game, falling
// back to a roster-based projection when the boxscore has no lineup yet. The
// second return value reports whether the lineup is confirmed.
func (c *MLBClient) Lineup(ctx context.Context, g Game, home bool) ([]LineupEntry, bool, error) {
	side := "away"
	if home {
		side = "home"
	}
	key := fmt.Sprintf("%d:%s", g.GamePK, side)

	var entries []LineupEntry
	if c.cacheGet(cache.KindLineups, key, &entries) {
		return entries, confirmed(entries), nil
	}

	entries, err := c.boxscoreLineup(ctx, g.GamePK, home)
	if err != nil {
		return nil, false, err
	}

	if len(entries) == 0 {
		teamID := g.AwayTeamID
		if home {
			teamID = g.HomeTeamID
		}
		entries, err = c.projectedLineup(ctx, teamID)
		if err != nil {
			return nil, false, err
		}
	}

	c.cachePut(cache.KindLineups, key, entries)
	return entries, confirmed(entries), nil
}

// Matchups expands the day's games into batter-vs-starter matchups. Games
// without a probable pitcher on the opposing side are skipped; failures on
// one game never abort the batch.
func (c *MLBClient) Matchups(ctx context.Context, date time.Time) ([]*models.Matchup, error) {
	games, err := c.Schedule(ctx, date)
	if err != nil {
		return nil, err
	}

	var matchups []*models.Matchup
	for _, g := range games {
		for _, home := range []bool{true, false} {
			side, err := c.sideMatchups(ctx, g, date, home)
			if err != nil {
				c.logger.WithError(err).WithFields(logrus.Fields{
					"game_pk": g.GamePK,
					"home":    home,
				}).Warn("Skipping lineup side after fetch failure")
				continue
			}
			matchups = append(matchups, side...)
		}
	}
	return matchups, nil
}

func (c *MLBClient) sideMatchups(ctx context.Context, g Game, date time.Time, home bool) ([]*models.Matchup, error) {
	// Batters on one side face the opposing starter.
	pitcherID, pitcherName := g.HomePitcherID, g.HomePitcherName
	pitcherTeam := g.HomeTeam
	batterTeam := g.AwayTeam
	if home {
		pitcherID, pitcherName = g.AwayPitcherID, g.AwayPitcherName
		pitcherTeam = g.AwayTeam
		batterTeam = g.HomeTeam
	}
	if pitcherID == 0 {
		return nil, nil
	}

	entries, confirmedLineup, err := c.Lineup(ctx, g, home)
	if err != nil {
		return nil, err
	}

	// A starter listed in a confirmed boxscore lineup is confirmed; a
	// probable from the schedule hydration is not.
	pitcherConfirmed := confirmedLineup && g.State == "Live"

	matchups := make([]*models.Matchup, 0, len(entries))
	for _, entry := range entries {
		matchups = append(matchups, &models.Matchup{
			GamePK:           g.GamePK,
			GameDate:         date,
			GameTime:         g.GameTime,
			Venue:            g.Venue,
			HomeTeam:         g.HomeTeam,
			AwayTeam:         g.AwayTeam,
			BatterID:         entry.BatterID,
			BatterName:       entry.BatterName,
			BatterTeam:       batterTeam,
			PitcherID:        pitcherID,
			PitcherName:      pitcherName,
			PitcherTeam:      pitcherTeam,
			PitcherConfirmed: pitcherConfirmed,
			CreatedAt:        time.Now().UTC(),
		})
	}
	return matchups, nil
}

func (c *MLBClient) boxscoreLineup(ctx context.Context, gamePK int, home bool) ([]LineupEntry, error) {
	endpoint := fmt.Sprintf("%s/api/v1/game/%d/boxscore", c.baseURL, gamePK)

	var payload boxscoreResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, NewSourceError(sourceMLB, ErrCodeNetworkError, "boxscore fetch failed", err)
	}

	team := payload.Teams.Away
	if home {
		team = payload.Teams.Home
	}

	entries := make([]LineupEntry, 0, len(team.BattingOrder))
	for i, id := range team.BattingOrder {
		player, ok := team.Players[fmt.Sprintf("ID%d", id)]
		if !ok {
			continue
		}
		entries = append(entries, LineupEntry{
			BatterID:   id,
			BatterName: player.Person.FullName,
			Order:      i + 1,
		})
	}
	return entries, nil
}

// projectedLineup builds a stand-in lineup from the team's active position
// players when no boxscore lineup has been posted yet.
func (c *MLBClient) projectedLineup(ctx context.Context, teamID int) ([]LineupEntry, error) {
	endpoint := fmt.Sprintf("%s/api/v1/teams/%d/roster?rosterType=active", c.baseURL, teamID)

	var payload rosterResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, NewSourceError(sourceMLB, ErrCodeNetworkError, "roster fetch failed", err)
	}

	var entries []LineupEntry
	for _, r := range payload.Roster {
		if r.Position.Abbreviation == "P" {
			continue
		}
		entries = append(entries, LineupEntry{
			BatterID:   r.Person.ID,
			BatterName: r.Person.FullName,
			Order:      len(entries) + 1,
			Projected:  true,
		})
		if len(entries) == 9 {
			break
		}
	}
	return entries, nil
}

func (c *MLBClient) getJSON(ctx context.Context, endpoint string, v interface{}) error {
	metrics.RecordFetch(sourceMLB)

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		metrics.RecordFetchFailure(sourceMLB)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordFetchFailure(sourceMLB)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *MLBClient) cacheGet(kind cache.Kind, key string, v interface{}) bool {
	if c.cache == nil {
		return false
	}
	if err := c.cache.Get(kind, key, v); err == nil {
		metrics.RecordCacheHit(string(kind))
		return true
	}
	metrics.RecordCacheMiss(string(kind))
	return false
}

func (c *MLBClient) cachePut(kind cache.Kind, key string, v interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(kind, key, v); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func confirmed(entries []LineupEntry) bool {
	for _, e := range entries {
		if e.Projected {
			return false
		}
	}
	return len(entries) > 0
}

// MLB Stats API response shapes, reduced to the fields used here.

type scheduleResponse struct {
	Dates []struct {
		Games []struct {
			GamePK   int       `json:"gamePk"`
			GameDate time.Time `json:"gameDate"`
			Venue    struct {
				Name string `json:"name"`
			} `json:"venue"`
			Status struct {
				AbstractGameState string `json:"abstractGameState"`
			} `json:"status"`
			Teams struct {
				Home scheduleTeam `json:"home"`
				Away scheduleTeam `json:"away"`
			} `json:"teams"`
		} `json:"games"`
	} `json:"dates"`
}

type scheduleTeam struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	ProbablePitcher struct {
		ID       int    `json:"id"`
		FullName string `json:"fullName"`
	} `json:"probablePitcher"`
}

type boxscoreResponse struct {
	Teams struct {
		Home boxscoreTeam `json:"home"`
		Away boxscoreTeam `json:"away"`
	} `json:"teams"`
}

type boxscoreTeam struct {
	BattingOrder []int                     `json:"battingOrder"`
	Players      map[string]boxscorePlayer `json:"players"`
}

type boxscorePlayer struct {
	Person struct {
		ID       int    `json:"id"`
		FullName string `json:"fullName"`
	} `json:"person"`
}

type rosterResponse struct {
	Roster []struct {
		Person struct {
			ID       int    `json:"id"`
			FullName string `json:"fullName"`
		} `json:"person"`
		Position struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"position"`
	} `json:"roster"`
}
