package locator_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/dentisalud-funnel/internal/locator"
)

func isClosed(s *locator.Session) bool {
	select {
	case <-s.Done():
		return true
	default:
		return false
	}
}

func TestHub_CreateAndGet(t *testing.T) {
	hub := locator.NewHub(context.Background(), newPendingGateway(), locator.DefaultSettings(), 10, time.Minute, zerolog.Nop())
	defer hub.Close()

	s := hub.Create()
	require.NotEmpty(t, s.ID())

	got, ok := hub.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, hub.Len())

	_, ok = hub.Get("missing")
	assert.False(t, ok)
}

func TestHub_RemoveStopsSession(t *testing.T) {
	hub := locator.NewHub(context.Background(), newPendingGateway(), locator.DefaultSettings(), 10, time.Minute, zerolog.Nop())
	defer hub.Close()

	s := hub.Create()
	assert.True(t, hub.Remove(s.ID()))

	assert.Eventually(t, func() bool { return isClosed(s) }, time.Second, 5*time.Millisecond)
	_, ok := hub.Get(s.ID())
	assert.False(t, ok)
}

func TestHub_EvictsLeastRecentlyUsed(t *testing.T) {
	hub := locator.NewHub(context.Background(), newPendingGateway(), locator.DefaultSettings(), 1, time.Minute, zerolog.Nop())
	defer hub.Close()

	first := hub.Create()
	second := hub.Create()

	assert.Eventually(t, func() bool { return isClosed(first) }, time.Second, 5*time.Millisecond)
	assert.False(t, isClosed(second))
	assert.Equal(t, 1, hub.Len())
}

func TestHub_IdleSessionsExpire(t *testing.T) {
	hub := locator.NewHub(context.Background(), newPendingGateway(), locator.DefaultSettings(), 10, 20*time.Millisecond, zerolog.Nop())
	defer hub.Close()

	s := hub.Create()

	assert.Eventually(t, func() bool {
		_, ok := hub.Get(s.ID())
		return !ok
	}, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return isClosed(s) }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_CloseStopsAll(t *testing.T) {
	hub := locator.NewHub(context.Background(), newPendingGateway(), locator.DefaultSettings(), 10, time.Minute, zerolog.Nop())

	a, b := hub.Create(), hub.Create()
	hub.Close()

	assert.True(t, isClosed(a))
	assert.True(t, isClosed(b))
	assert.Equal(t, 0, hub.Len())
}
