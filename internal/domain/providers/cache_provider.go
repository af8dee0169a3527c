package providers

import (
	"context"
	"errors"
)

// ErrCacheMiss reports a key that is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// ValueStore holds the serialized directory lookups and cached HTTP
// responses. Expiry is given in seconds.
type ValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Guards backs the contact form's abuse checks.
type Guards interface {
	// SetNX writes a duplicate marker unless one exists and reports
	// whether it wrote it.
	SetNX(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error)

	// Incr bumps a rate-limit counter. The window starts with the first
	// increment and is not extended by later ones.
	Incr(ctx context.Context, key string, expirationSeconds int) (int64, error)
}

// CacheProvider is implemented by the Redis adapter and by the in-process
// LRU used when Redis is down.
type CacheProvider interface {
	ValueStore
	Guards
}
