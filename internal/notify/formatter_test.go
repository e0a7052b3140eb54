package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/models"
)

func result(batter, pitcher string, tier models.Tier, probability float64, confirmed bool, defaulted ...string) *models.ScoreResult {
	return &models.ScoreResult{
		Matchup: &models.Matchup{
			BatterName:       batter,
			PitcherName:      pitcher,
			PitcherConfirmed: confirmed,
		},
		Probability:     probability,
		Tier:            tier,
		DefaultedFields: defaulted,
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, "O'Neil Cruz Jr\\.", EscapeMarkdownV2("O'Neil Cruz Jr."))
	assert.Equal(t, "\\-1\\.5 \\(run line\\)", EscapeMarkdownV2("-1.5 (run line)"))
	assert.Equal(t, "a\\_b\\*c", EscapeMarkdownV2("a_b*c"))
}

func TestFormatDigestGroupsByTier(t *testing.T) {
	results := []*models.ScoreResult{
		result("Aaron Judge", "Brayan Bello", models.TierLock, 0.105, true),
		result("Shohei Ohtani", "Ryan Feltner", models.TierSleeper, 0.081, true),
		result("Kyle Schwarber", "Jose Berrios", models.TierSleeper, 0.078, false),
		result("Brenton Doyle", "Blake Snell", models.TierRisky, 0.044, true, "batter.iso"),
	}

	digest := FormatDigest("2026-08-26", results)

	lockIdx := strings.Index(digest, "Lock")
	sleeperIdx := strings.Index(digest, "Sleeper")
	riskyIdx := strings.Index(digest, "Risky")
	require.True(t, lockIdx >= 0 && sleeperIdx >= 0 && riskyIdx >= 0)
	assert.Less(t, lockIdx, sleeperIdx)
	assert.Less(t, sleeperIdx, riskyIdx)

	assert.Contains(t, digest, "Aaron Judge vs Brayan Bello")
	assert.Contains(t, digest, "10\\.5%")
	assert.Contains(t, digest, "⚠️", "degraded picks are flagged")
	assert.Contains(t, digest, "probable", "unconfirmed starters are annotated")
}

func TestFormatDigestNoPicks(t *testing.T) {
	digest := FormatDigest("2026-08-26", nil)
	assert.Contains(t, digest, "No qualifying picks today")
}

func TestFormatDigestOmitsEmptyTiers(t *testing.T) {
	results := []*models.ScoreResult{
		result("Aaron Judge", "Brayan Bello", models.TierRisky, 0.05, true),
	}
	digest := FormatDigest("2026-08-26", results)
	assert.NotContains(t, digest, "Lock")
	assert.NotContains(t, digest, "Sleeper")
	assert.Contains(t, digest, "Risky")
}

func TestFairOdds(t *testing.T) {
	assert.Equal(t, "+900", fairOdds(0.10))
	assert.Equal(t, "+1900", fairOdds(0.05))
	assert.Equal(t, "-100", fairOdds(0.50))
	assert.Equal(t, "-300", fairOdds(0.75))
	assert.Equal(t, "+99900", fairOdds(0))
}

func TestTelegramNotifierSendsMarkdownV2(t *testing.T) {
	var got sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/bottest-token/sendMessage"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	n := NewTelegramNotifier(config.NotifyConfig{
		TelegramBotToken: "test-token",
		TelegramChatID:   "-100123",
		TimeoutSeconds:   2,
	}, logger)
	n.SetBaseURL(server.URL)

	err := n.SendDigest(context.Background(), "*test*")
	require.NoError(t, err)
	assert.Equal(t, "-100123", got.ChatID)
	assert.Equal(t, "MarkdownV2", got.ParseMode)
	assert.Equal(t, "*test*", got.Text)
}

func TestTelegramNotifierSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "description": "Bad Request: can't parse entities"}`))
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	n := NewTelegramNotifier(config.NotifyConfig{
		TelegramBotToken: "test-token",
		TelegramChatID:   "-100123",
		TimeoutSeconds:   2,
	}, logger)
	n.SetBaseURL(server.URL)

	err := n.SendDigest(context.Background(), "broken _markdown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse entities")
}
