package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
)

// LeadAdapter implements LeadRepository
type LeadAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLeadAdapter creates a new lead adapter
func NewLeadAdapter(client *postgres.Client) repositories.LeadRepository {
	return &LeadAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores a new lead, assigning its id and creation time if unset
func (a *LeadAdapter) Create(ctx context.Context, lead *entities.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if lead.Status == "" {
		lead.Status = entities.LeadStatusNew
	}
	birthDates := lead.BirthDates
	if birthDates == nil {
		birthDates = []string{}
	}

	record := goqu.Record{
		"id":               lead.ID,
		"full_name":        lead.FullName,
		"phone":            lead.Phone,
		"email":            sql.NullString{String: lead.Email, Valid: lead.Email != ""},
		"zip_code":         sql.NullString{String: lead.ZipCode, Valid: lead.ZipCode != ""},
		"birth_dates":      pq.Array(birthDates),
		"status":           string(lead.Status),
		"privacy_accepted": lead.PrivacyAccepted,
		"user_agent":       sql.NullString{String: lead.UserAgent, Valid: lead.UserAgent != ""},
		"created_at":       lead.CreatedAt,
	}

	query, args, err := a.db.Insert("leads").Rows(record).Prepared(true).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build lead insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create lead", err)
	}
	return nil
}
