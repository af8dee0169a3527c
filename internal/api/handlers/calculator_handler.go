package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zatekoja/dentisalud-funnel/internal/application/services"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// QuoteService defines the calculator operations used by the handler.
type QuoteService interface {
	Quote(adults, children int) (entities.Quote, error)
	SaveProject(ctx context.Context, req services.SaveProjectRequest) (*entities.CalculationProject, entities.Quote, error)
}

// CalculatorHandler serves the premium calculator
type CalculatorHandler struct {
	service QuoteService
}

// NewCalculatorHandler creates a new calculator handler
func NewCalculatorHandler(service QuoteService) *CalculatorHandler {
	return &CalculatorHandler{service: service}
}

// GetQuote handles GET /api/calculator/quote?adults=&children=
func (h *CalculatorHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	adults, err := intParam(r, "adults")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid adults parameter")
		return
	}
	children, err := intParam(r, "children")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid children parameter")
		return
	}

	quote, err := h.service.Quote(adults, children)
	if err != nil {
		respondWithAppError(w, r, err, "failed to calculate quote")
		return
	}
	respondWithJSON(w, http.StatusOK, quote)
}

// SaveProject handles POST /api/calculator/projects
func (h *CalculatorHandler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var req services.SaveProjectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<10)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	project, quote, err := h.service.SaveProject(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err, "Error guardando cotización")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"project_id": project.ID,
		"project":    project,
		"quote":      quote,
	})
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
