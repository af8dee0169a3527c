package database_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/dentisalud-funnel/internal/adapters/database"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestLeadAdapter_Create(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := database.NewLeadAdapter(client)

	mock.ExpectExec(`INSERT INTO "leads"`).
		WithArgs(anyArgs(10)...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	lead := &entities.Lead{FullName: "Ana", Phone: "600000000", PrivacyAccepted: true}
	require.NoError(t, adapter.Create(context.Background(), lead))

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, entities.LeadStatusNew, lead.Status)
	assert.False(t, lead.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadAdapter_Create_Error(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := database.NewLeadAdapter(client)

	mock.ExpectExec(`INSERT INTO "leads"`).WillReturnError(errors.New("relation does not exist"))

	err := adapter.Create(context.Background(), &entities.Lead{FullName: "Ana", Phone: "600000000"})
	assert.Error(t, err)
}

var treatmentCols = []string{"id", "name", "category", "price_elite", "is_free", "grace_period_months"}

func TestTreatmentAdapter_Search_NoFiltersOrdersByPrice(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := database.NewTreatmentAdapter(client)

	mock.ExpectQuery(`FROM "treatments" ORDER BY "price_elite" ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows(treatmentCols).
			AddRow("t1", "Limpieza", "Preventiva", 0.0, true, 0).
			AddRow("t2", "Empaste", "Conservadora", 25.0, false, 3))

	got, err := adapter.Search(context.Background(), entities.TreatmentFilter{Category: entities.AllTreatmentsCategory})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsFree)
	assert.Equal(t, 3, got[1].GracePeriodMonths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTreatmentAdapter_Search_Filters(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := database.NewTreatmentAdapter(client)

	mock.ExpectQuery(`"category" ILIKE \$1.*"name" ILIKE \$2`).
		WithArgs("%Implantes%", "%corona%", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(treatmentCols))

	got, err := adapter.Search(context.Background(), entities.TreatmentFilter{Category: "Implantes", Query: "corona"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTreatmentAdapter_ListAll(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := database.NewTreatmentAdapter(client)

	mock.ExpectQuery(`FROM "treatments" ORDER BY "id" ASC`).
		WillReturnRows(sqlmock.NewRows(treatmentCols).AddRow("t1", "Limpieza", "Preventiva", 0.0, true, 0))

	got, err := adapter.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestQuoteAdapter_CreateProject(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := database.NewQuoteAdapter(client)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "calculation_projects"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "insured_members"`).WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectCommit()

	project := &entities.CalculationProject{
		TotalMonthlyElite: 21.8,
		SelectedFrequency: entities.FrequencyMonthly,
		Members: []entities.InsuredMember{
			{BirthDate: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), IsAdult: true},
			{BirthDate: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	require.NoError(t, adapter.CreateProject(context.Background(), project))

	assert.NotEmpty(t, project.ID)
	assert.Equal(t, project.ID, project.Members[1].ProjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteAdapter_CreateProject_RollsBack(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := database.NewQuoteAdapter(client)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "calculation_projects"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "insured_members"`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := adapter.CreateProject(context.Background(), &entities.CalculationProject{
		Members: []entities.InsuredMember{{BirthDate: time.Now()}},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
