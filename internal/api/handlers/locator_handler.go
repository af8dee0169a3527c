package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/dentisalud-funnel/internal/application/services"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/locator"
)

// LocatorService defines the clinic lookups used by the handler.
type LocatorService interface {
	Search(ctx context.Context, params services.ServicePointSearch) ([]entities.ServicePoint, error)
	Detail(ctx context.Context, servicePointID string) (*services.ServicePointView, error)
	Regions(ctx context.Context) ([]string, error)
	Subregions(ctx context.Context, region string) ([]string, error)
}

// LocatorHandler serves one-shot clinic searches and the region cascade.
type LocatorHandler struct {
	service LocatorService
}

// NewLocatorHandler creates a new locator handler
func NewLocatorHandler(service LocatorService) *LocatorHandler {
	return &LocatorHandler{service: service}
}

// SearchServicePoints handles GET /api/service-points
func (h *LocatorHandler) SearchServicePoints(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := services.ServicePointSearch{
		Query:      query.Get("q"),
		Region:     strings.TrimSpace(query.Get("region")),
		Subregion:  strings.TrimSpace(query.Get("subregion")),
		PostalCode: strings.TrimSpace(query.Get("postal_code")),
	}

	if query.Get("near") == "true" || query.Has("lat") || query.Has("lon") {
		lat, err := strconv.ParseFloat(query.Get("lat"), 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid latitude parameter")
			return
		}
		lon, err := strconv.ParseFloat(query.Get("lon"), 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid longitude parameter")
			return
		}
		params.Near = &locator.Coordinates{Latitude: lat, Longitude: lon}
	}

	points, err := h.service.Search(r.Context(), params)
	if err != nil {
		respondWithAppError(w, r, err, "failed to search service points")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"service_points": points,
		"count":          len(points),
	})
}

// GetServicePoint handles GET /api/service-points/{id}
func (h *LocatorHandler) GetServicePoint(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "service point ID is required")
		return
	}

	view, err := h.service.Detail(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load service point")
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// ListRegions handles GET /api/regions
func (h *LocatorHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions(r.Context())
	if err != nil {
		respondWithAppError(w, r, err, "failed to list regions")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"regions": regions})
}

// ListSubregions handles GET /api/regions/{region}/subregions
func (h *LocatorHandler) ListSubregions(w http.ResponseWriter, r *http.Request) {
	region := r.PathValue("region")
	towns, err := h.service.Subregions(r.Context(), region)
	if err != nil {
		respondWithAppError(w, r, err, "failed to list subregions")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"region":     region,
		"subregions": towns,
	})
}
