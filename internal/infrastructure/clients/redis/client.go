package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/dentisalud-funnel/pkg/config"
	"github.com/zatekoja/dentisalud-funnel/pkg/retry"
)

// Callers fall back to in-process cache and bus, so give up quickly.
var connectRetry = retry.Config{
	MaxAttempts:     3,
	InitialDelay:    200 * time.Millisecond,
	MaxDelay:        time.Second,
	BackoffFactor:   2.0,
	MaxTotalTimeout: 5 * time.Second,
}

// Client is the Redis connection shared by the cache and the lead bus.
// Keys and channels are namespaced so several funnels can share a database.
type Client struct {
	rdb       *redis.Client
	namespace string
}

// NewClient connects to Redis, retrying the first ping briefly.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	err := retry.DoWithLog(ctx, connectRetry, "Redis",
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return rdb.Ping(pingCtx).Err()
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Debug().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).
				Str("addr", cfg.RedisAddr()).Msg("Redis ping failed")
		},
	)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis at %s unreachable: %w", cfg.RedisAddr(), err)
	}

	log.Info().Str("addr", cfg.RedisAddr()).Int("db", cfg.DB).Str("namespace", cfg.Namespace).Msg("connected to Redis")
	return NewClientFrom(rdb, cfg.Namespace), nil
}

// NewClientFrom wraps an existing go-redis client.
func NewClientFrom(rdb *redis.Client, namespace string) *Client {
	return &Client{rdb: rdb, namespace: strings.TrimSuffix(namespace, ":")}
}

// Key joins parts with ":" under the client's namespace.
func (c *Client) Key(parts ...string) string {
	if c.namespace == "" {
		return strings.Join(parts, ":")
	}
	return c.namespace + ":" + strings.Join(parts, ":")
}

// Client returns the underlying go-redis client
func (c *Client) Client() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
