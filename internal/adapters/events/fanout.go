package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

const subscriberBuffer = 100

// fanout delivers events to the local subscribers of each channel.
// Slow subscribers miss events rather than block the bus.
type fanout struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.LeadEvent]struct{}
	logger      zerolog.Logger
}

func newFanout(logger zerolog.Logger) *fanout {
	return &fanout{
		subscribers: make(map[string]map[chan *entities.LeadEvent]struct{}),
		logger:      logger,
	}
}

// add registers a subscriber and reports whether it is the channel's first.
func (f *fanout) add(channel string) (chan *entities.LeadEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	first := len(f.subscribers[channel]) == 0
	if f.subscribers[channel] == nil {
		f.subscribers[channel] = make(map[chan *entities.LeadEvent]struct{})
	}
	ch := make(chan *entities.LeadEvent, subscriberBuffer)
	f.subscribers[channel][ch] = struct{}{}
	return ch, first
}

// remove drops a subscriber and reports whether the channel has none left.
func (f *fanout) remove(channel string, ch chan *entities.LeadEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs, ok := f.subscribers[channel]
	if !ok {
		return false
	}
	if _, ok := subs[ch]; !ok {
		return false
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(f.subscribers, channel)
		return true
	}
	return false
}

func (f *fanout) broadcast(channel string, event *entities.LeadEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subscribers[channel] {
		select {
		case sub <- event:
		default:
			f.logger.Warn().Str("channel", channel).Str("event_id", event.ID).
				Msg("subscriber channel full, skipping event")
		}
	}
}

func (f *fanout) closeChannel(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subscribers[channel] {
		close(sub)
	}
	delete(f.subscribers, channel)
}

func (f *fanout) channels() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.subscribers))
	for c := range f.subscribers {
		out = append(out, c)
	}
	return out
}
