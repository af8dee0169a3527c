package repositories

import (
	"context"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// DirectoryRepository is the query gateway over the medical directory
type DirectoryRepository interface {
	// SearchServicePoints runs get_service_points with the given filters
	SearchServicePoints(ctx context.Context, query entities.ServicePointQuery) ([]entities.ServicePoint, error)

	// ListRegions returns the distinct provinces, sorted
	ListRegions(ctx context.Context) ([]string, error)

	// ListSubregions returns the distinct towns of a province, sorted
	ListSubregions(ctx context.Context, region string) ([]string, error)

	// ListRowsByServicePoint returns every raw row sharing a service point id
	ListRowsByServicePoint(ctx context.Context, servicePointID string) ([]entities.DirectoryRow, error)
}

// DirectoryWriter upserts raw directory records keyed by medical_directory_id
type DirectoryWriter interface {
	UpsertRecords(ctx context.Context, records []map[string]any) error
}
