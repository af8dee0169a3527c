package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryAdapter is a process-local CacheProvider used when Redis is not
// configured. Entries carry their own expiry; maxTTL bounds how long any
// entry can survive in the LRU.
type MemoryAdapter struct {
	mu    sync.Mutex
	items *expirable.LRU[string, memoryEntry]
	now   func() time.Time
}

// NewMemoryAdapter creates an in-memory cache holding at most size entries
func NewMemoryAdapter(size int, maxTTL time.Duration) *MemoryAdapter {
	return &MemoryAdapter{
		items: expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		now:   time.Now,
	}
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

func (a *MemoryAdapter) expiry(seconds int) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return a.now().Add(time.Duration(seconds) * time.Second)
}

func (a *MemoryAdapter) lookup(key string) (memoryEntry, bool) {
	e, ok := a.items.Get(key)
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(a.now()) {
		a.items.Remove(key)
		return memoryEntry{}, false
	}
	return e, true
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.lookup(key)
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return e.value, nil
}

// Set stores a value in cache with expiration
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, expirationSeconds int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items.Add(key, memoryEntry{value: value, expiresAt: a.expiry(expirationSeconds)})
	return nil
}

// SetNX stores a value only when the key is absent
func (a *MemoryAdapter) SetNX(_ context.Context, key string, value []byte, expirationSeconds int) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.lookup(key); ok {
		return false, nil
	}
	a.items.Add(key, memoryEntry{value: value, expiresAt: a.expiry(expirationSeconds)})
	return true, nil
}

// Incr bumps a counter; the first increment opens its expiry window
func (a *MemoryAdapter) Incr(_ context.Context, key string, expirationSeconds int) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.lookup(key)
	if !ok {
		e = memoryEntry{value: []byte("0"), expiresAt: a.expiry(expirationSeconds)}
	}
	n, err := strconv.ParseInt(string(e.value), 10, 64)
	if err != nil {
		n = 0
	}
	n++
	e.value = []byte(strconv.FormatInt(n, 10))
	a.items.Add(key, e)
	return n, nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items.Remove(key)
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(_ context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.lookup(key)
	return ok, nil
}
