package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// TreatmentService defines the treatment lookups used by the handler.
type TreatmentService interface {
	Search(ctx context.Context, filter entities.TreatmentFilter) ([]entities.Treatment, error)
	Categories() []string
}

// TreatmentHandler serves the treatment price lookup
type TreatmentHandler struct {
	service TreatmentService
}

// NewTreatmentHandler creates a new treatment handler
func NewTreatmentHandler(service TreatmentService) *TreatmentHandler {
	return &TreatmentHandler{service: service}
}

// SearchTreatments handles GET /api/treatments?q=&category=
func (h *TreatmentHandler) SearchTreatments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := entities.TreatmentFilter{
		Query:    query.Get("q"),
		Category: query.Get("category"),
	}
	if len(filter.Query) > 100 {
		respondWithError(w, http.StatusBadRequest, "query is too long")
		return
	}

	treatments, err := h.service.Search(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err, "failed to search treatments")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"treatments": treatments,
		"count":      len(treatments),
	})
}

// ListCategories handles GET /api/treatments/categories
func (h *TreatmentHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.service.Categories(),
	})
}
