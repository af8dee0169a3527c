package providers

import (
	"context"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// LeadEventBus fans lead submissions out to subscribers (e.g. the sales desk stream)
type LeadEventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.LeadEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.LeadEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelLeads carries every accepted lead submission
const EventChannelLeads = "funnel:leads"
