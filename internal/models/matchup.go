package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Matchup pairs one batter with the opposing starting pitcher for a single
// game. It is assembled once lineups are known and never mutated after
// scoring.
type Matchup struct {
	ID               uuid.UUID `db:"id" json:"id"`
	GamePK           int       `db:"game_pk" json:"game_pk" validate:"required,gt=0"`
	GameDate         time.Time `db:"game_date" json:"game_date" validate:"required"`
	GameTime         time.Time `db:"game_time" json:"game_time"`
	Venue            string    `db:"venue" json:"venue"`
	HomeTeam         string    `db:"home_team" json:"home_team"`
	AwayTeam         string    `db:"away_team" json:"away_team"`
	BatterID         int       `db:"batter_id" json:"batter_id" validate:"required,gt=0"`
	BatterName       string    `db:"batter_name" json:"batter_name" validate:"required"`
	BatterTeam       string    `db:"batter_team" json:"batter_team"`
	PitcherID        int       `db:"pitcher_id" json:"pitcher_id" validate:"required,gt=0"`
	PitcherName      string    `db:"pitcher_name" json:"pitcher_name" validate:"required"`
	PitcherTeam      string    `db:"pitcher_team" json:"pitcher_team"`
	PitcherConfirmed bool      `db:"pitcher_confirmed" json:"pitcher_confirmed"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// GameID returns the normalized batter-vs-pitcher key used for caching and
// the daily prediction log, e.g. "aaron_judge__vs__max_scherzer__2026-08-26".
func (m *Matchup) GameID() string {
	return normalizeName(m.BatterName) + "__vs__" + normalizeName(m.PitcherName) + "__" + m.GameDate.Format("2006-01-02")
}

// HasIdentity reports whether the matchup carries the identity fields the
// scoring engine requires. Matchups without identity are excluded from the
// batch rather than scored.
func (m *Matchup) HasIdentity() bool {
	return m.BatterID > 0 && m.PitcherID > 0 && m.BatterName != "" && m.PitcherName != "" && m.GamePK > 0
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r > unicode.MaxASCII:
			if folded := foldASCII(r); folded != 0 {
				b.WriteRune(folded)
			}
		case r == ' ':
			b.WriteByte('_')
		case r == '.':
			// dropped, "jr." and initials collapse
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSuffix(b.String(), "_jr")
}

// foldASCII maps the accented characters common in player names onto their
// ASCII base letter.
func foldASCII(r rune) rune {
	switch r {
	case 'á', 'à', 'â', 'ä', 'ã', 'å':
		return 'a'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'í', 'ì', 'î', 'ï':
		return 'i'
	case 'ó', 'ò', 'ô', 'ö', 'õ':
		return 'o'
	case 'ú', 'ù', 'û', 'ü':
		return 'u'
	case 'ñ':
		return 'n'
	case 'ç':
		return 'c'
	}
	return 0
}
