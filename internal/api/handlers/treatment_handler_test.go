package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/dentisalud-funnel/internal/api/handlers"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

type stubTreatmentService struct {
	lastFilter entities.TreatmentFilter
}

func (s *stubTreatmentService) Search(ctx context.Context, filter entities.TreatmentFilter) ([]entities.Treatment, error) {
	s.lastFilter = filter
	return []entities.Treatment{{ID: "t1", Name: "Limpieza", Category: "Preventiva", IsFree: true}}, nil
}

func (s *stubTreatmentService) Categories() []string {
	return []string{entities.AllTreatmentsCategory, "Preventiva"}
}

func TestTreatmentHandler(t *testing.T) {
	svc := &stubTreatmentService{}
	h := handlers.NewTreatmentHandler(svc)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/treatments", h.SearchTreatments)
	mux.HandleFunc("GET /api/treatments/categories", h.ListCategories)

	w := get(mux, "/api/treatments?q=limp&category=Preventiva")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Treatments []entities.Treatment `json:"treatments"`
		Count      int                  `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.True(t, resp.Treatments[0].IsFree)
	assert.Equal(t, "Preventiva", svc.lastFilter.Category)

	assert.Equal(t, http.StatusBadRequest, get(mux, "/api/treatments?q="+strings.Repeat("a", 101)).Code)

	w = get(mux, "/api/treatments/categories")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Preventiva")
}
