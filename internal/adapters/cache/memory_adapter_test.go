package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/providers"
)

func TestMemoryAdapter_GetSetDelete(t *testing.T) {
	a := NewMemoryAdapter(10, time.Hour)
	ctx := context.Background()

	_, err := a.Get(ctx, "k")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	require.NoError(t, a.Set(ctx, "k", []byte("v"), 60))
	v, err := a.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, a.Delete(ctx, "k"))
	ok, err := a.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryAdapter_PerKeyExpiry(t *testing.T) {
	a := NewMemoryAdapter(10, time.Hour)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "short", []byte("x"), 5))
	require.NoError(t, a.Set(ctx, "forever", []byte("y"), 0))

	now = now.Add(6 * time.Second)

	_, err := a.Get(ctx, "short")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
	_, err = a.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemoryAdapter_SetNX(t *testing.T) {
	a := NewMemoryAdapter(10, time.Hour)
	ctx := context.Background()

	ok, err := a.SetNX(ctx, "k", []byte("1"), 60)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.SetNX(ctx, "k", []byte("2"), 60)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _ := a.Get(ctx, "k")
	assert.Equal(t, []byte("1"), v)
}

func TestMemoryAdapter_IncrKeepsWindow(t *testing.T) {
	a := NewMemoryAdapter(10, time.Hour)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := a.Incr(ctx, "hits", 60)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		now = now.Add(10 * time.Second)
	}

	now = now.Add(31 * time.Second)
	n, err := a.Incr(ctx, "hits", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
