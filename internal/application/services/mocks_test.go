package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

type mockDirectoryRepository struct{ mock.Mock }

func (m *mockDirectoryRepository) SearchServicePoints(ctx context.Context, q entities.ServicePointQuery) ([]entities.ServicePoint, error) {
	args := m.Called(ctx, q)
	points, _ := args.Get(0).([]entities.ServicePoint)
	return points, args.Error(1)
}

func (m *mockDirectoryRepository) ListRegions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	regions, _ := args.Get(0).([]string)
	return regions, args.Error(1)
}

func (m *mockDirectoryRepository) ListSubregions(ctx context.Context, region string) ([]string, error) {
	args := m.Called(ctx, region)
	towns, _ := args.Get(0).([]string)
	return towns, args.Error(1)
}

func (m *mockDirectoryRepository) ListRowsByServicePoint(ctx context.Context, id string) ([]entities.DirectoryRow, error) {
	args := m.Called(ctx, id)
	rows, _ := args.Get(0).([]entities.DirectoryRow)
	return rows, args.Error(1)
}

type mockLeadRepository struct{ mock.Mock }

func (m *mockLeadRepository) Create(ctx context.Context, lead *entities.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

type mockNotifier struct {
	mock.Mock
	channel string
}

func (m *mockNotifier) Channel() string { return m.channel }

func (m *mockNotifier) NotifyLead(ctx context.Context, lead *entities.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

type mockEventBus struct{ mock.Mock }

func (m *mockEventBus) Publish(ctx context.Context, channel string, event *entities.LeadEvent) error {
	return m.Called(ctx, channel, event).Error(0)
}

func (m *mockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.LeadEvent, error) {
	args := m.Called(ctx, channel)
	ch, _ := args.Get(0).(<-chan *entities.LeadEvent)
	return ch, args.Error(1)
}

func (m *mockEventBus) Close() error { return m.Called().Error(0) }

type mockQuoteRepository struct{ mock.Mock }

func (m *mockQuoteRepository) CreateProject(ctx context.Context, p *entities.CalculationProject) error {
	return m.Called(ctx, p).Error(0)
}

type mockTreatmentRepository struct{ mock.Mock }

func (m *mockTreatmentRepository) Search(ctx context.Context, f entities.TreatmentFilter) ([]entities.Treatment, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]entities.Treatment)
	return out, args.Error(1)
}

func (m *mockTreatmentRepository) ListAll(ctx context.Context) ([]entities.Treatment, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]entities.Treatment)
	return out, args.Error(1)
}

type mockTreatmentIndex struct{ mock.Mock }

func (m *mockTreatmentIndex) Search(ctx context.Context, f entities.TreatmentFilter) ([]entities.Treatment, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]entities.Treatment)
	return out, args.Error(1)
}

func (m *mockTreatmentIndex) Index(ctx context.Context, t []entities.Treatment) error {
	return m.Called(ctx, t).Error(0)
}

type mockDirectoryWriter struct{ mock.Mock }

func (m *mockDirectoryWriter) UpsertRecords(ctx context.Context, records []map[string]any) error {
	return m.Called(ctx, records).Error(0)
}

type mockInvalidator struct{ mock.Mock }

func (m *mockInvalidator) Invalidate(ctx context.Context, regions []string) error {
	return m.Called(ctx, regions).Error(0)
}
