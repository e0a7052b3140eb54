// Package notify formats and delivers the daily picks digest over Telegram.
package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/dinger/internal/models"
)

// MarkdownV2 reserved characters, each of which must be backslash-escaped in
// message text.
var markdownV2Escaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

// EscapeMarkdownV2 escapes text for Telegram MarkdownV2 parse mode.
func EscapeMarkdownV2(s string) string {
	return markdownV2Escaper.Replace(s)
}

var tierEmoji = map[models.Tier]string{
	models.TierLock:    "🔒",
	models.TierSleeper: "😴",
	models.TierRisky:   "🎲",
}

// tierOrder fixes the digest's section order.
var tierOrder = []models.Tier{models.TierLock, models.TierSleeper, models.TierRisky}

// FormatDigest renders the daily picks message. Results must already be
// sorted by score descending; grouping preserves that order within each
// tier. An empty slice yields the no-picks message.
func FormatDigest(date string, results []*models.ScoreResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*⚾ HR Picks %s*\n", EscapeMarkdownV2(date))

	if len(results) == 0 {
		b.WriteString("\nNo qualifying picks today\\.")
		return b.String()
	}

	byTier := map[models.Tier][]*models.ScoreResult{}
	for _, r := range results {
		byTier[r.Tier] = append(byTier[r.Tier], r)
	}

	for _, tier := range tierOrder {
		group := byTier[tier]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s *%s*\n", tierEmoji[tier], EscapeMarkdownV2(string(tier)))
		for _, r := range group {
			b.WriteString(formatPick(r))
		}
	}
	return b.String()
}

// formatPick renders one line: batter vs pitcher, probability, fair odds and
// a degraded-data marker.
func formatPick(r *models.ScoreResult) string {
	m := r.Matchup
	line := fmt.Sprintf("%s vs %s - %.1f%% (fair %s)",
		m.BatterName, m.PitcherName, r.Probability*100, fairOdds(r.Probability))

	escaped := EscapeMarkdownV2(line)
	if r.Degraded() {
		escaped += " ⚠️"
	}
	if !m.PitcherConfirmed {
		escaped += " _\\(probable\\)_"
	}
	return escaped + "\n"
}

// fairOdds converts a probability to American odds at zero vig. Decimal
// arithmetic keeps the rounding stable across platforms.
func fairOdds(probability float64) string {
	if probability <= 0 {
		return "+99900"
	}
	if probability >= 1 {
		return "-99900"
	}

	p := decimal.NewFromFloat(probability)
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	if probability < 0.5 {
		// underdog: +100*(1-p)/p
		odds := one.Sub(p).Div(p).Mul(hundred).Round(0)
		return "+" + odds.String()
	}
	// favorite: -100*p/(1-p)
	odds := p.Div(one.Sub(p)).Mul(hundred).Round(0)
	return "-" + odds.String()
}
