package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
	"github.com/zatekoja/dentisalud-funnel/internal/locator"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
	"github.com/zatekoja/dentisalud-funnel/pkg/utils"
)

// ServicePointSearch is a one-shot locator query
type ServicePointSearch struct {
	Query      string
	Region     string
	Subregion  string
	PostalCode string
	Near       *locator.Coordinates
}

// ServicePointView is a clinic with its grouped practitioners
type ServicePointView struct {
	ID         string `json:"sp_id"`
	Name       string `json:"sp_name"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	Town       string `json:"town"`
	Province   string `json:"province"`
	*entities.ServicePointDetail
}

// LocatorService serves clinic lookups and is the gateway behind locator sessions
type LocatorService struct {
	repo     repositories.DirectoryRepository
	settings locator.Settings
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

var _ locator.Gateway = (*LocatorService)(nil)

// NewLocatorService creates a new locator service
func NewLocatorService(repo repositories.DirectoryRepository, settings locator.Settings, metrics *observability.Metrics) *LocatorService {
	return &LocatorService{
		repo:     repo,
		settings: settings,
		metrics:  metrics,
		logger:   observability.Component("locator_service"),
	}
}

// Settings returns the locator tuning the service was built with
func (s *LocatorService) Settings() locator.Settings {
	return s.settings
}

// Search runs a single gateway call for the given filters
func (s *LocatorService) Search(ctx context.Context, params ServicePointSearch) ([]entities.ServicePoint, error) {
	filter := locator.FilterState{}.WithQuery(params.Query)
	if params.Region != "" {
		region, err := s.resolveRegion(ctx, params.Region)
		if err != nil {
			return nil, err
		}
		filter = filter.WithRegion(region).WithSubregion(params.Subregion).WithPostalCode(params.PostalCode)
	}
	if params.Near != nil {
		if !entities.ValidCoordinates(params.Near.Latitude, params.Near.Longitude) {
			return nil, apperrors.NewValidationError("invalid coordinates")
		}
		filter = filter.WithNearMe(*params.Near)
	}

	if !filter.Triggers(s.settings.MinQueryLength) {
		return nil, apperrors.NewValidationError("search needs a query of at least 3 characters, a region or coordinates")
	}

	query, nearMe := s.settings.QueryFor(filter)
	points, err := s.SearchServicePoints(ctx, query)
	mode := "filter"
	if nearMe {
		mode = "near_me"
	}
	observability.RecordLocatorSearch(ctx, s.metrics, mode, outcome(err, len(points)))
	return points, err
}

// SearchServicePoints implements locator.Gateway
func (s *LocatorService) SearchServicePoints(ctx context.Context, query entities.ServicePointQuery) ([]entities.ServicePoint, error) {
	ctx, span := observability.StartSpan(ctx, "locator.search_service_points")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("locator.text", query.Text),
		attribute.String("locator.province", query.Region),
		attribute.Float64("locator.max_dist_meters", query.MaxDistanceMeters),
	)

	start := time.Now()
	points, err := s.repo.SearchServicePoints(ctx, query)
	observability.RecordDBMetric(ctx, s.metrics, "get_service_points", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("locator.results", len(points)))
	return points, nil
}

// ListRowsByServicePoint implements locator.Gateway
func (s *LocatorService) ListRowsByServicePoint(ctx context.Context, servicePointID string) ([]entities.DirectoryRow, error) {
	ctx, span := observability.StartSpan(ctx, "locator.list_rows")
	defer span.End()
	span.SetAttributes(attribute.String("locator.sp_id", servicePointID))

	start := time.Now()
	rows, err := s.repo.ListRowsByServicePoint(ctx, servicePointID)
	observability.RecordDBMetric(ctx, s.metrics, "list_rows_by_service_point", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
	}
	return rows, err
}

// Detail returns a service point with its contact phone and grouped practitioners
func (s *LocatorService) Detail(ctx context.Context, servicePointID string) (*ServicePointView, error) {
	rows, err := s.ListRowsByServicePoint(ctx, servicePointID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFoundError("service point not found")
	}

	head := rows[0]
	g := locator.GroupPractitioners(head.ServicePointName, rows)
	if len(g.UnknownSpecialties) > 0 {
		s.logger.Debug().Strs("labels", g.UnknownSpecialties).Str("sp_id", servicePointID).Msg("unrecognized specialty labels")
	}

	return &ServicePointView{
		ID:                 servicePointID,
		Name:               head.ServicePointName,
		Address:            head.Address,
		PostalCode:         head.PostalCode,
		Town:               head.Town,
		Province:           head.Province,
		ServicePointDetail: g.Detail(servicePointID),
	}, nil
}

// Regions lists the provinces with at least one clinic
func (s *LocatorService) Regions(ctx context.Context) ([]string, error) {
	return s.repo.ListRegions(ctx)
}

// Subregions lists the towns of a province. The province name is matched
// ignoring case and accents.
func (s *LocatorService) Subregions(ctx context.Context, region string) ([]string, error) {
	resolved, err := s.resolveRegion(ctx, region)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSubregions(ctx, resolved)
}

func (s *LocatorService) resolveRegion(ctx context.Context, region string) (string, error) {
	region = strings.TrimSpace(region)
	regions, err := s.repo.ListRegions(ctx)
	if err != nil {
		return "", err
	}
	if match, ok := utils.MatchFolded(regions, region); ok {
		return match, nil
	}
	return "", apperrors.NewNotFoundError("unknown region: " + region)
}

// Observer reports session search outcomes as metrics
func (s *LocatorService) Observer() locator.Observer {
	return metricsObserver{metrics: s.metrics}
}

type metricsObserver struct {
	metrics *observability.Metrics
}

func (o metricsObserver) SearchCompleted(mode, outcome string) {
	observability.RecordLocatorSearch(context.Background(), o.metrics, mode, outcome)
}

func (o metricsObserver) StaleDiscarded() {
	observability.RecordLocatorStale(context.Background(), o.metrics)
}

func outcome(err error, n int) string {
	switch {
	case err != nil:
		return "error"
	case n == 0:
		return "empty"
	default:
		return "ok"
	}
}
