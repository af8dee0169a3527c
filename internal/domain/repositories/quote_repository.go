package repositories

import (
	"context"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// QuoteRepository persists calculation projects and their members
type QuoteRepository interface {
	CreateProject(ctx context.Context, project *entities.CalculationProject) error
}
