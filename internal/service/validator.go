// Package service orchestrates the daily prediction pipeline: fetch,
// validate, score, persist, notify.
package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/yourusername/dinger/internal/models"
)

// MatchupValidator checks assembled matchups before scoring. Invalid
// matchups are excluded from the batch, never scored with placeholders.
type MatchupValidator struct {
	validate *validator.Validate
}

// NewMatchupValidator creates a new matchup validator.
func NewMatchupValidator() *MatchupValidator {
	return &MatchupValidator{validate: validator.New()}
}

// Validate returns the list of problems with a matchup, empty when it is
// scoreable.
func (v *MatchupValidator) Validate(m *models.Matchup) []string {
	var problems []string

	if m == nil {
		return []string{"matchup is nil"}
	}

	if err := v.validate.Struct(m); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				problems = append(problems, fe.Field()+" failed "+fe.Tag())
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	if m.BatterID != 0 && m.BatterID == m.PitcherID {
		problems = append(problems, "batter and pitcher are the same player")
	}

	return problems
}
