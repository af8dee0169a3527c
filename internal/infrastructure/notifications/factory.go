package notifications

import (
	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/providers"
	"github.com/zatekoja/dentisalud-funnel/pkg/config"
)

// NewLeadNotifiers builds the configured push channel plus email. Channels
// missing credentials are skipped with a warning so local setups still run.
func NewLeadNotifiers(cfg config.NotificationsConfig, logger zerolog.Logger) []providers.LeadNotifier {
	var notifiers []providers.LeadNotifier

	switch cfg.PushChannel {
	case "whatsapp":
		sender, err := NewWhatsAppCloudSender(cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneNumberID, cfg.WhatsAppRecipient)
		if err != nil {
			logger.Warn().Err(err).Msg("whatsapp lead notifications disabled")
		} else {
			notifiers = append(notifiers, sender)
		}
	case "telegram", "":
		sender, err := NewTelegramSender(cfg.TelegramBaseURL, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram lead notifications disabled")
		} else {
			notifiers = append(notifiers, sender)
		}
	default:
		logger.Warn().Str("channel", cfg.PushChannel).Msg("unknown LEAD_PUSH_CHANNEL, push notifications disabled")
	}

	email, err := NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.LeadEmailTo)
	if err != nil {
		logger.Warn().Err(err).Msg("lead email notifications disabled")
	} else {
		notifiers = append(notifiers, email)
	}

	return notifiers
}
