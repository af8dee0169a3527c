package repositories

import (
	"context"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// LeadRepository defines the interface for lead persistence.
type LeadRepository interface {
	Create(ctx context.Context, lead *entities.Lead) error
}
