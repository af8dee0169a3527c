package routes

import (
	"net/http"

	"github.com/zatekoja/dentisalud-funnel/internal/api/handlers"
	"github.com/zatekoja/dentisalud-funnel/internal/api/middleware"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	locatorHandler    *handlers.LocatorHandler
	sessionHandler    *handlers.SessionHandler
	treatmentHandler  *handlers.TreatmentHandler
	calculatorHandler *handlers.CalculatorHandler
	contactHandler    *handlers.ContactHandler
	adminHandler      *handlers.AdminHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	locatorHandler *handlers.LocatorHandler,
	sessionHandler *handlers.SessionHandler,
	treatmentHandler *handlers.TreatmentHandler,
	calculatorHandler *handlers.CalculatorHandler,
	contactHandler *handlers.ContactHandler,
	adminHandler *handlers.AdminHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		locatorHandler:    locatorHandler,
		sessionHandler:    sessionHandler,
		treatmentHandler:  treatmentHandler,
		calculatorHandler: calculatorHandler,
		contactHandler:    contactHandler,
		adminHandler:      adminHandler,
		cacheMiddleware:   cacheMiddleware,
		allowedOrigins:    allowedOrigins,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Clinic locator
	r.mux.HandleFunc("GET /api/service-points", r.locatorHandler.SearchServicePoints)
	r.mux.HandleFunc("GET /api/service-points/{id}", r.locatorHandler.GetServicePoint)
	r.mux.HandleFunc("GET /api/regions", r.locatorHandler.ListRegions)
	r.mux.HandleFunc("GET /api/regions/{region}/subregions", r.locatorHandler.ListSubregions)

	// Locator sessions
	r.mux.HandleFunc("POST /api/locator/sessions", r.sessionHandler.CreateSession)
	r.mux.HandleFunc("GET /api/locator/sessions/{id}", r.sessionHandler.GetSession)
	r.mux.HandleFunc("DELETE /api/locator/sessions/{id}", r.sessionHandler.DeleteSession)
	r.mux.HandleFunc("POST /api/locator/sessions/{id}/events", r.sessionHandler.PostEvent)
	r.mux.HandleFunc("GET /api/locator/sessions/{id}/stream", r.sessionHandler.StreamSession)

	// Treatments
	r.mux.HandleFunc("GET /api/treatments", r.treatmentHandler.SearchTreatments)
	r.mux.HandleFunc("GET /api/treatments/categories", r.treatmentHandler.ListCategories)

	// Premium calculator
	r.mux.HandleFunc("GET /api/calculator/quote", r.calculatorHandler.GetQuote)
	r.mux.HandleFunc("POST /api/calculator/projects", r.calculatorHandler.SaveProject)

	// Leads
	r.mux.HandleFunc("POST /api/contact", r.contactHandler.SubmitContact)

	// Development-only maintenance
	if r.adminHandler != nil {
		r.mux.HandleFunc("POST /api/admin/directory/import", r.adminHandler.ImportDirectory)
		r.mux.HandleFunc("GET /api/admin/leads/stream", r.adminHandler.StreamLeads)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
