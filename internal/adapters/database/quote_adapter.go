package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
)

// QuoteAdapter implements QuoteRepository
type QuoteAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewQuoteAdapter creates a new quote adapter
func NewQuoteAdapter(client *postgres.Client) repositories.QuoteRepository {
	return &QuoteAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// CreateProject stores a project and its insured members in one transaction
func (a *QuoteAdapter) CreateProject(ctx context.Context, project *entities.CalculationProject) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	projectQuery, projectArgs, err := a.db.Insert("calculation_projects").Rows(goqu.Record{
		"id":                  project.ID,
		"total_monthly_elite": project.TotalMonthlyElite,
		"selected_frequency":  string(project.SelectedFrequency),
		"selected_total":      project.SelectedTotal,
		"adults_count":        project.AdultsCount,
		"children_count":      project.ChildrenCount,
		"created_at":          project.CreatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build project insert", err)
	}

	var membersQuery string
	var membersArgs []any
	if len(project.Members) > 0 {
		rows := make([]any, len(project.Members))
		for i := range project.Members {
			project.Members[i].ProjectID = project.ID
			m := project.Members[i]
			rows[i] = goqu.Record{
				"project_id": m.ProjectID,
				"birth_date": m.BirthDate.Format("2006-01-02"),
				"is_adult":   m.IsAdult,
			}
		}
		membersQuery, membersArgs, err = a.db.Insert("insured_members").Rows(rows...).Prepared(true).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build member insert", err)
		}
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, projectQuery, projectArgs...); err != nil {
		return apperrors.NewInternalError("failed to create calculation project", err)
	}
	if membersQuery != "" {
		if _, err := tx.ExecContext(ctx, membersQuery, membersArgs...); err != nil {
			return apperrors.NewInternalError("failed to create insured members", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit calculation project", err)
	}
	return nil
}
