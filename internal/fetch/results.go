package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/dinger/internal/models"
)

// Outcomes returns per-batter HR outcomes for every final game on a date,
// read from the boxscore batting lines. Games still in progress are skipped
// so a rerun later can settle them.
func (c *MLBClient) Outcomes(ctx context.Context, date time.Time) ([]*models.GameOutcome, error) {
	games, err := c.Schedule(ctx, date)
	if err != nil {
		return nil, err
	}

	var outcomes []*models.GameOutcome
	for _, g := range games {
		if g.State != "Final" {
			continue
		}

		endpoint := fmt.Sprintf("%s/api/v1/game/%d/boxscore", c.baseURL, g.GamePK)
		var payload resultsBoxscoreResponse
		if err := c.getJSON(ctx, endpoint, &payload); err != nil {
			c.logger.WithError(err).WithField("game_pk", g.GamePK).Warn("Skipping game results after fetch failure")
			continue
		}

		for _, team := range []resultsBoxscoreTeam{payload.Teams.Home, payload.Teams.Away} {
			for _, player := range team.Players {
				// Pitchers and unused bench players carry no batting line.
				if player.Person.ID == 0 || player.Stats.Batting.PlateAppearances == 0 {
					continue
				}
				outcomes = append(outcomes, &models.GameOutcome{
					GameDate:   date,
					GamePK:     g.GamePK,
					BatterID:   player.Person.ID,
					BatterName: player.Person.FullName,
					HitHR:      player.Stats.Batting.HomeRuns > 0,
				})
			}
		}
	}
	return outcomes, nil
}

type resultsBoxscoreResponse struct {
	Teams struct {
		Home resultsBoxscoreTeam `json:"home"`
		Away resultsBoxscoreTeam `json:"away"`
	} `json:"teams"`
}

type resultsBoxscoreTeam struct {
	Players map[string]struct {
		Person struct {
			ID       int    `json:"id"`
			FullName string `json:"fullName"`
		} `json:"person"`
		Stats struct {
			Batting struct {
				AtBats           int `json:"atBats"`
				PlateAppearances int `json:"plateAppearances"`
				HomeRuns         int `json:"homeRuns"`
			} `json:"batting"`
		} `json:"stats"`
	} `json:"players"`
}
