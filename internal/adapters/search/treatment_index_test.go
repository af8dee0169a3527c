package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typesense/typesense-go/v2/typesense"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	tsclient "github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/typesense"
)

func TestSearchParams(t *testing.T) {
	p := searchParams(entities.TreatmentFilter{Category: entities.AllTreatmentsCategory})
	assert.Equal(t, "*", *p.Q)
	assert.Nil(t, p.FilterBy)
	require.NotNil(t, p.SortBy)
	assert.Equal(t, "price_elite:asc", *p.SortBy)
	assert.Equal(t, 50, *p.PerPage)

	p = searchParams(entities.TreatmentFilter{Query: " corona ", Category: "Prótesis", Limit: 500})
	assert.Equal(t, "corona", *p.Q)
	assert.Equal(t, "category:=`Prótesis`", *p.FilterBy)
	assert.Nil(t, p.SortBy)
	assert.Equal(t, 50, *p.PerPage)
}

func TestTreatmentDocument(t *testing.T) {
	doc := treatmentDocument(entities.Treatment{ID: "t1", Name: "Extracción simple", Category: "Cirugía", PriceElite: 12.5})
	assert.Equal(t, []string{"extraccion", "simple", "cirugia"}, doc["search_terms"])

	back := treatmentFromDocument(map[string]interface{}{
		"id": "t1", "name": "Extracción simple", "category": "Cirugía",
		"price_elite": 12.5, "is_free": false, "grace_period_months": float64(6),
	})
	assert.Equal(t, entities.Treatment{ID: "t1", Name: "Extracción simple", Category: "Cirugía", PriceElite: 12.5, GracePeriodMonths: 6}, back)
}

func TestTreatmentIndex_Search(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/collections/treatments/documents/search") {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"found": 1,
			"hits": []map[string]any{{
				"document": map[string]any{
					"id": "t9", "name": "Blanqueamiento", "category": "Estética",
					"price_elite": 180.0, "is_free": false, "grace_period_months": 0,
				},
			}},
		})
	}))
	defer srv.Close()

	client := tsclient.NewClientFrom(typesense.NewClient(
		typesense.WithServer(srv.URL),
		typesense.WithAPIKey("test"),
	))
	index := NewTreatmentIndex(client)

	got, err := index.Search(context.Background(), entities.TreatmentFilter{Query: "blanq"})
	require.NoError(t, err)
	assert.Equal(t, "blanq", gotQuery)
	require.Len(t, got, 1)
	assert.Equal(t, "Blanqueamiento", got[0].Name)
	assert.Equal(t, 180.0, got[0].PriceElite)
}

func TestTreatmentIndex_SearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := tsclient.NewClientFrom(typesense.NewClient(
		typesense.WithServer(srv.URL),
		typesense.WithAPIKey("test"),
	))

	_, err := NewTreatmentIndex(client).Search(context.Background(), entities.TreatmentFilter{})
	assert.Error(t, err)
}
