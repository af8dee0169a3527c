package repositories

import (
	"context"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// TreatmentRepository defines the interface for treatment lookups
type TreatmentRepository interface {
	// Search returns treatments matching the filter
	Search(ctx context.Context, filter entities.TreatmentFilter) ([]entities.Treatment, error)

	// ListAll returns every treatment, used to feed the search index
	ListAll(ctx context.Context) ([]entities.Treatment, error)
}

// TreatmentSearchRepository defines the interface for the treatment search index (e.g. Typesense)
type TreatmentSearchRepository interface {
	Search(ctx context.Context, filter entities.TreatmentFilter) ([]entities.Treatment, error)

	// Index upserts treatments into the index
	Index(ctx context.Context, treatments []entities.Treatment) error
}
