package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
)

const defaultTreatmentLimit = 50

var treatmentColumns = []any{"id", "name", "category", "price_elite", "is_free", "grace_period_months"}

// TreatmentAdapter implements TreatmentRepository
type TreatmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTreatmentAdapter creates a new treatment adapter
func NewTreatmentAdapter(client *postgres.Client) repositories.TreatmentRepository {
	return &TreatmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Search filters by category and name substring. Without any filter the
// cheapest treatments come first.
func (a *TreatmentAdapter) Search(ctx context.Context, filter entities.TreatmentFilter) ([]entities.Treatment, error) {
	ds := a.db.From("treatments").Select(treatmentColumns...)

	if filter.HasCategory() {
		ds = ds.Where(goqu.C("category").ILike("%" + filter.Category + "%"))
	}
	if filter.Query != "" {
		ds = ds.Where(goqu.C("name").ILike("%" + filter.Query + "%"))
	}
	if !filter.HasCategory() && filter.Query == "" {
		ds = ds.Order(goqu.C("price_elite").Asc())
	} else {
		ds = ds.Order(goqu.C("name").Asc())
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultTreatmentLimit {
		limit = defaultTreatmentLimit
	}
	ds = ds.Limit(uint(limit))

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build treatment query", err)
	}

	treatments := []entities.Treatment{}
	if err := a.client.DBX().SelectContext(ctx, &treatments, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to search treatments", err)
	}
	return treatments, nil
}

// ListAll returns the whole catalogue
func (a *TreatmentAdapter) ListAll(ctx context.Context) ([]entities.Treatment, error) {
	query, args, err := a.db.From("treatments").
		Select(treatmentColumns...).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build treatment list query", err)
	}

	treatments := []entities.Treatment{}
	if err := a.client.DBX().SelectContext(ctx, &treatments, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list treatments", err)
	}
	return treatments, nil
}
