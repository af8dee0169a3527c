package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/providers"
	redisclient "github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/redis"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
)

// RedisEventBus implements LeadEventBus using Redis Pub/Sub, so every API
// replica sees leads accepted by any other.
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	mu            sync.Mutex
	local         *fanout
	logger        zerolog.Logger
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.LeadEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	logger := observability.Component("redis_event_bus")
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		local:         newFanout(logger),
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.LeadEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, b.client.Key(channel), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug().Str("channel", channel).Str("event_id", event.ID).Msg("published event")
	return nil
}

// Subscribe subscribes to events on a channel until ctx is done
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.LeadEvent, error) {
	eventChan, first := b.local.add(channel)

	if first {
		b.mu.Lock()
		if _, exists := b.subscriptions[channel]; !exists {
			pubsub := b.client.Client().Subscribe(b.ctx, b.client.Key(channel))
			b.subscriptions[channel] = pubsub
			go b.receiveMessages(channel, pubsub)
		}
		b.mu.Unlock()
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		if b.local.remove(channel, eventChan) {
			b.closeSubscription(channel)
		}
	}()

	return eventChan, nil
}

// receiveMessages relays messages from Redis to local subscribers
func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.LeadEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn().Err(err).Str("channel", channel).Msg("failed to unmarshal event")
				continue
			}
			b.local.broadcast(channel, &event)
		}
	}
}

func (b *RedisEventBus) closeSubscription(channel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pubsub, ok := b.subscriptions[channel]; ok {
		if err := pubsub.Close(); err != nil {
			b.logger.Warn().Err(err).Str("channel", channel).Msg("failed to close subscription")
		}
		delete(b.subscriptions, channel)
	}
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	for _, channel := range b.local.channels() {
		b.local.closeChannel(channel)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	for channel, pubsub := range b.subscriptions {
		if err := pubsub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close subscription %s: %w", channel, err))
		}
		delete(b.subscriptions, channel)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errs)
	}

	b.logger.Info().Msg("event bus closed")
	return nil
}
