package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
	"github.com/zatekoja/dentisalud-funnel/pkg/retry"
)

// TelegramSender pushes leads to a Telegram chat through the Bot API
type TelegramSender struct {
	baseURL    string
	botToken   string
	chatID     string
	httpClient *http.Client
	retry      retry.Config
	logger     zerolog.Logger
}

// NewTelegramSender creates a new Telegram sender
func NewTelegramSender(baseURL, botToken, chatID string) (*TelegramSender, error) {
	if botToken == "" || chatID == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set")
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &TelegramSender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		retry:      retry.NotifyConfig(),
		logger:     observability.Component("telegram_sender"),
	}, nil
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Channel implements LeadNotifier
func (s *TelegramSender) Channel() string { return "telegram" }

// NotifyLead implements LeadNotifier
func (s *TelegramSender) NotifyLead(ctx context.Context, lead *entities.Lead) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	msg := telegramMessage{ChatID: s.chatID, Text: leadMessage(lead), ParseMode: "Markdown"}

	return retry.DoWithLog(ctx, s.retry, "telegram", func() error {
		payload, err := postJSON(ctx, s.httpClient, url, nil, msg)
		if err != nil {
			return err
		}
		var resp telegramResponse
		if err := json.Unmarshal(payload, &resp); err != nil {
			return retry.Permanent(fmt.Errorf("failed to unmarshal response: %w", err))
		}
		if !resp.OK {
			return retry.Permanent(fmt.Errorf("telegram rejected message: %s", resp.Description))
		}
		return nil
	}, func(attempt int, err error, next time.Duration) {
		s.logger.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", next).Msg("retrying telegram notification")
	})
}
