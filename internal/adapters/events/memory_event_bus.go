package events

import (
	"context"
	"sync"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/providers"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
)

// MemoryEventBus is a single-process LeadEventBus used when Redis is not configured
type MemoryEventBus struct {
	local  *fanout
	closed chan struct{}
	once   sync.Once
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.LeadEventBus {
	return &MemoryEventBus{
		local:  newFanout(observability.Component("memory_event_bus")),
		closed: make(chan struct{}),
	}
}

// Publish delivers the event to current subscribers
func (b *MemoryEventBus) Publish(_ context.Context, channel string, event *entities.LeadEvent) error {
	b.local.broadcast(channel, event)
	return nil
}

// Subscribe subscribes to events on a channel until ctx is done
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.LeadEvent, error) {
	ch, _ := b.local.add(channel)
	go func() {
		select {
		case <-ctx.Done():
		case <-b.closed:
		}
		b.local.remove(channel, ch)
	}()
	return ch, nil
}

// Close ends every subscription
func (b *MemoryEventBus) Close() error {
	b.once.Do(func() {
		close(b.closed)
		for _, c := range b.local.channels() {
			b.local.closeChannel(c)
		}
	})
	return nil
}
