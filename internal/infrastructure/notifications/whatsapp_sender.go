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

// WhatsAppCloudSender pushes leads to the sales desk via WhatsApp Cloud API
type WhatsAppCloudSender struct {
	accessToken   string
	phoneNumberID string
	recipient     string
	httpClient    *http.Client
	baseURL       string
	retry         retry.Config
	logger        zerolog.Logger
}

// NewWhatsAppCloudSender creates a new WhatsApp sender
func NewWhatsAppCloudSender(accessToken, phoneNumberID, recipient string) (*WhatsAppCloudSender, error) {
	if accessToken == "" || phoneNumberID == "" || recipient == "" {
		return nil, fmt.Errorf("WHATSAPP_ACCESS_TOKEN, WHATSAPP_PHONE_NUMBER_ID and WHATSAPP_LEAD_RECIPIENT must be set")
	}

	return &WhatsAppCloudSender{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		recipient:     recipient,
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:       "https://graph.facebook.com/v18.0",
		retry:         retry.NotifyConfig(),
		logger:        observability.Component("whatsapp_sender"),
	}, nil
}

// WhatsAppTextMessage represents a text message
type WhatsAppTextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

// WhatsAppResponse represents the API response
type WhatsAppResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Messages         []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Channel implements LeadNotifier
func (w *WhatsAppCloudSender) Channel() string { return "whatsapp" }

// NotifyLead implements LeadNotifier
func (w *WhatsAppCloudSender) NotifyLead(ctx context.Context, lead *entities.Lead) error {
	// WhatsApp renders single asterisks as bold, same as Telegram Markdown.
	_, err := w.SendText(ctx, w.recipient, leadMessage(lead))
	return err
}

// SendText sends a text message and returns its message id
func (w *WhatsAppCloudSender) SendText(ctx context.Context, to, body string) (string, error) {
	message := WhatsAppTextMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               strings.TrimPrefix(to, "+"),
		Type:             "text",
	}
	message.Text.Body = body

	var messageID string
	err := retry.DoWithLog(ctx, w.retry, "whatsapp", func() error {
		id, err := w.sendMessage(ctx, message)
		if err != nil {
			return err
		}
		messageID = id
		return nil
	}, func(attempt int, err error, next time.Duration) {
		w.logger.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", next).Msg("retrying whatsapp notification")
	})
	return messageID, err
}

func (w *WhatsAppCloudSender) sendMessage(ctx context.Context, message any) (string, error) {
	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneNumberID)
	headers := map[string]string{"Authorization": "Bearer " + w.accessToken}

	body, err := postJSON(ctx, w.httpClient, url, headers, message)
	if err != nil {
		return "", err
	}

	var whatsappResp WhatsAppResponse
	if err := json.Unmarshal(body, &whatsappResp); err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if len(whatsappResp.Messages) > 0 {
		return whatsappResp.Messages[0].ID, nil
	}
	return "", retry.Permanent(fmt.Errorf("no message ID in response"))
}
