package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
)

// TreatmentService answers treatment price lookups
type TreatmentService struct {
	repo   repositories.TreatmentRepository
	index  repositories.TreatmentSearchRepository
	logger zerolog.Logger
}

// NewTreatmentService creates a new treatment service. index may be nil, in
// which case lookups go to the database.
func NewTreatmentService(repo repositories.TreatmentRepository, index repositories.TreatmentSearchRepository) *TreatmentService {
	return &TreatmentService{
		repo:   repo,
		index:  index,
		logger: observability.Component("treatment_service"),
	}
}

// Search looks treatments up by name and category
func (s *TreatmentService) Search(ctx context.Context, filter entities.TreatmentFilter) ([]entities.Treatment, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)

	if s.index != nil {
		treatments, err := s.index.Search(ctx, filter)
		if err == nil {
			return treatments, nil
		}
		s.logger.Warn().Err(err).Msg("treatment index unavailable, falling back to database")
	}
	return s.repo.Search(ctx, filter)
}

// Categories lists the categories offered by the lookup
func (s *TreatmentService) Categories() []string {
	return append([]string(nil), entities.TreatmentCategories...)
}

// Reindex copies the whole catalogue into the search index
func (s *TreatmentService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, apperrors.NewInternalError("treatment index not configured", nil)
	}
	treatments, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Index(ctx, treatments); err != nil {
		return 0, apperrors.NewExternalError("failed to index treatments", err)
	}
	return len(treatments), nil
}
