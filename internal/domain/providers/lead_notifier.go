package providers

import (
	"context"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// LeadNotifier delivers a new lead to one outbound channel
type LeadNotifier interface {
	// Channel names the channel for logs and metrics ("telegram", "email", ...)
	Channel() string

	NotifyLead(ctx context.Context, lead *entities.Lead) error
}
