package notifier

import (
	"context"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// DefaultTelegramBaseURL is the public Bot API endpoint.
const DefaultTelegramBaseURL = "https://api.telegram.org"

const telegramTimeout = 10 * time.Second

// TelegramConfig holds Bot API credentials.
type TelegramConfig struct {
	BaseURL   string
	Token     string
	ChatID    string
	ParseMode string
}

// TelegramConfigFromEnv reads TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID and
// TELEGRAM_PARSE_MODE (Markdown by default).
func TelegramConfigFromEnv() TelegramConfig {
	parseMode := os.Getenv("TELEGRAM_PARSE_MODE")
	if parseMode == "" {
		parseMode = "Markdown"
	}

	return TelegramConfig{
		BaseURL:   DefaultTelegramBaseURL,
		Token:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID:    os.Getenv("TELEGRAM_CHAT_ID"),
		ParseMode: parseMode,
	}
}

// Enabled reports whether both token and chat id are set.
func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != ""
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// TelegramSender posts messages through the Bot API sendMessage method.
type TelegramSender struct {
	client    *resty.Client
	chatID    string
	parseMode string
}

var _ Sender = (*TelegramSender)(nil)

// NewTelegramSender creates a sender. Requests time out after 10 seconds.
func NewTelegramSender(config TelegramConfig) *TelegramSender {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL+"/bot"+config.Token).
		SetTimeout(telegramTimeout).
		SetHeader("Content-Type", "application/json")

	return &TelegramSender{
		client:    client,
		chatID:    config.ChatID,
		parseMode: config.ParseMode,
	}
}

func (s *TelegramSender) Send(ctx context.Context, text string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{
			ChatID:                s.chatID,
			Text:                  text,
			ParseMode:             s.parseMode,
			DisableWebPagePreview: true,
		}).
		Post("/sendMessage")
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "telegram request failed", err)
	}

	if resp.IsError() {
		return errors.Newf(errors.ErrCodeNotificationFailed, "telegram returned %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// NewTelegramNotifier returns a notifier sending through Telegram, or a
// disabled notifier when credentials are missing.
func NewTelegramNotifier(config TelegramConfig, log *logger.Logger) *MessageNotifier {
	if !config.Enabled() {
		return NewMessageNotifier(nil, log, nil)
	}

	return NewMessageNotifier(NewTelegramSender(config), log, nil)
}
