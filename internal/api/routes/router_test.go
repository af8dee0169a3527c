package routes_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/dentisalud-funnel/internal/adapters/cache"
	"github.com/zatekoja/dentisalud-funnel/internal/api/handlers"
	"github.com/zatekoja/dentisalud-funnel/internal/api/middleware"
	"github.com/zatekoja/dentisalud-funnel/internal/api/routes"
	"github.com/zatekoja/dentisalud-funnel/internal/application/services"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/locator"
)

type emptyDirectory struct{}

func (emptyDirectory) SearchServicePoints(ctx context.Context, q entities.ServicePointQuery) ([]entities.ServicePoint, error) {
	return []entities.ServicePoint{}, nil
}

func (emptyDirectory) ListRowsByServicePoint(ctx context.Context, id string) ([]entities.DirectoryRow, error) {
	return nil, nil
}

func (emptyDirectory) ListRegions(ctx context.Context) ([]string, error) {
	return []string{"Madrid"}, nil
}

func (emptyDirectory) ListSubregions(ctx context.Context, region string) ([]string, error) {
	return []string{"Madrid"}, nil
}

type nopProjects struct{}

func (nopProjects) CreateProject(ctx context.Context, p *entities.CalculationProject) error {
	p.ID = "p1"
	return nil
}

type nopTreatments struct{}

func (nopTreatments) Search(ctx context.Context, f entities.TreatmentFilter) ([]entities.Treatment, error) {
	return []entities.Treatment{}, nil
}

func (nopTreatments) ListAll(ctx context.Context) ([]entities.Treatment, error) {
	return nil, nil
}

type nopLeads struct{}

func (nopLeads) Create(ctx context.Context, lead *entities.Lead) error {
	lead.ID = "l1"
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	memCache := cache.NewMemoryAdapter(100, time.Hour)

	locatorService := services.NewLocatorService(emptyDirectory{}, locator.DefaultSettings(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	hub := locator.NewHub(ctx, locatorService, locatorService.Settings(), 10, time.Minute, zerolog.Nop())
	t.Cleanup(func() {
		hub.Close()
		cancel()
	})

	leadService := services.NewLeadService(nopLeads{}, nil, nil, nil)

	r := routes.NewRouter(
		handlers.NewLocatorHandler(locatorService),
		handlers.NewSessionHandler(hub),
		handlers.NewTreatmentHandler(services.NewTreatmentService(nopTreatments{}, nil)),
		handlers.NewCalculatorHandler(services.NewQuoteService(nopProjects{})),
		handlers.NewContactHandler(leadService, memCache),
		nil,
		middleware.NewCacheMiddleware(memCache, nil),
		[]string{"*"},
		nil,
	)
	return r.SetupRoutes()
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRouter_Routes(t *testing.T) {
	h := newTestRouter(t)

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/regions", "", http.StatusOK},
		{http.MethodGet, "/api/regions/Madrid/subregions", "", http.StatusOK},
		{http.MethodGet, "/api/service-points?q=clinica", "", http.StatusOK},
		{http.MethodGet, "/api/treatments", "", http.StatusOK},
		{http.MethodGet, "/api/treatments/categories", "", http.StatusOK},
		{http.MethodGet, "/api/calculator/quote?adults=1", "", http.StatusOK},
		{http.MethodPost, "/api/locator/sessions", "", http.StatusCreated},
		{http.MethodPost, "/api/contact", `{"name":"Ana","phone":"600000000","privacyAccepted":true}`, http.StatusOK},
		{http.MethodPost, "/api/admin/directory/import", "", http.StatusNotFound},
		{http.MethodDelete, "/api/treatments", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, body))
			require.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}
