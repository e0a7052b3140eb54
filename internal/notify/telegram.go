package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/metrics"
)

// Notifier delivers formatted digests to a chat.
type Notifier interface {
	SendDigest(ctx context.Context, text string) error
}

// TelegramNotifier sends messages through the Telegram Bot API.
type TelegramNotifier struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
	logger  *logrus.Logger
}

// NewTelegramNotifier creates a Telegram notifier from configuration.
func NewTelegramNotifier(cfg config.NotifyConfig, logger *logrus.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		baseURL: "https://api.telegram.org",
		token:   cfg.TelegramBotToken,
		chatID:  cfg.TelegramChatID,
		logger:  logger,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendDigest sends one MarkdownV2 message to the configured chat.
func (n *TelegramNotifier) SendDigest(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: "MarkdownV2",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	var tgResp sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&tgResp); err != nil {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}
	if !tgResp.OK {
		return fmt.Errorf("telegram rejected message (status %d): %s", resp.StatusCode, tgResp.Description)
	}

	metrics.AlertsSentTotal.Inc()
	n.logger.WithField("chars", len(text)).Info("Digest sent")
	return nil
}

// SetBaseURL overrides the API host, used by tests.
func (n *TelegramNotifier) SetBaseURL(u string) { n.baseURL = u }
