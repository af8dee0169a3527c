package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/dentisalud-funnel/internal/adapters/cache"
	"github.com/zatekoja/dentisalud-funnel/internal/adapters/database"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

type countingDirectory struct {
	searches, regions, subregions, rows int
	err                                 error
}

func (c *countingDirectory) SearchServicePoints(ctx context.Context, q entities.ServicePointQuery) ([]entities.ServicePoint, error) {
	c.searches++
	if c.err != nil {
		return nil, c.err
	}
	return []entities.ServicePoint{{ID: "sp-1", Name: q.Text}}, nil
}

func (c *countingDirectory) ListRegions(ctx context.Context) ([]string, error) {
	c.regions++
	return []string{"Madrid"}, c.err
}

func (c *countingDirectory) ListSubregions(ctx context.Context, region string) ([]string, error) {
	c.subregions++
	return []string{"Getafe"}, c.err
}

func (c *countingDirectory) ListRowsByServicePoint(ctx context.Context, id string) ([]entities.DirectoryRow, error) {
	c.rows++
	return []entities.DirectoryRow{{ServicePointID: id, PractitionerName: "Dr. Pérez"}}, c.err
}

func newCachedDirectory(inner *countingDirectory) *database.CachedDirectoryAdapter {
	a := database.NewCachedDirectoryAdapter(inner, cache.NewMemoryAdapter(100, time.Hour), nil)
	database.StoreSynchronously(a)
	return a
}

func TestCachedDirectoryAdapter_SearchHitsCache(t *testing.T) {
	inner := &countingDirectory{}
	a := newCachedDirectory(inner)
	ctx := context.Background()
	q := entities.ServicePointQuery{Text: "Madrid", Limit: 50}

	first, err := a.SearchServicePoints(ctx, q)
	require.NoError(t, err)
	second, err := a.SearchServicePoints(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.searches)

	_, err = a.SearchServicePoints(ctx, entities.ServicePointQuery{Text: "Valencia", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.searches)
}

func TestCachedDirectoryAdapter_ErrorsAreNotCached(t *testing.T) {
	inner := &countingDirectory{err: errors.New("down")}
	a := newCachedDirectory(inner)
	ctx := context.Background()

	_, err := a.ListRegions(ctx)
	require.Error(t, err)

	inner.err = nil
	regions, err := a.ListRegions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Madrid"}, regions)
	assert.Equal(t, 2, inner.regions)
}

func TestCachedDirectoryAdapter_Invalidate(t *testing.T) {
	inner := &countingDirectory{}
	a := newCachedDirectory(inner)
	ctx := context.Background()

	_, _ = a.ListRegions(ctx)
	_, _ = a.ListSubregions(ctx, "Madrid")
	_, _ = a.ListRowsByServicePoint(ctx, "sp-1")
	_, _ = a.ListRowsByServicePoint(ctx, "sp-1")
	assert.Equal(t, 1, inner.rows)

	require.NoError(t, a.Invalidate(ctx, []string{"Madrid"}))

	_, _ = a.ListRegions(ctx)
	_, _ = a.ListSubregions(ctx, "Madrid")
	assert.Equal(t, 2, inner.regions)
	assert.Equal(t, 2, inner.subregions)
}
