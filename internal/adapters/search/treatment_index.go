package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	tsclient "github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/dentisalud-funnel/pkg/utils"
)

const treatmentsCollection = "treatments"

const maxTreatmentHits = 50

// TreatmentIndex implements treatment search on Typesense
type TreatmentIndex struct {
	client *tsclient.Client
}

var _ repositories.TreatmentSearchRepository = (*TreatmentIndex)(nil)

// NewTreatmentIndex creates a new Typesense treatment index
func NewTreatmentIndex(client *tsclient.Client) *TreatmentIndex {
	return &TreatmentIndex{client: client}
}

// InitSchema ensures the collection exists
func (a *TreatmentIndex) InitSchema(ctx context.Context) error {
	if _, err := a.client.Client().Collection(treatmentsCollection).Retrieve(ctx); err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: treatmentsCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "price_elite", Type: "float"},
			{Name: "is_free", Type: "bool"},
			{Name: "grace_period_months", Type: "int32"},
			{Name: "search_terms", Type: "string[]", Optional: pointer.True()},
		},
		DefaultSortingField: pointer.String("price_elite"),
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return nil
}

func treatmentDocument(t entities.Treatment) map[string]interface{} {
	return map[string]interface{}{
		"id":                  t.ID,
		"name":                t.Name,
		"category":            t.Category,
		"price_elite":         t.PriceElite,
		"is_free":             t.IsFree,
		"grace_period_months": t.GracePeriodMonths,
		"search_terms":        utils.SearchTerms(t.Name + " " + t.Category),
	}
}

// Index upserts treatments one document at a time
func (a *TreatmentIndex) Index(ctx context.Context, treatments []entities.Treatment) error {
	docs := a.client.Client().Collection(treatmentsCollection).Documents()
	for _, t := range treatments {
		if _, err := docs.Upsert(ctx, treatmentDocument(t)); err != nil {
			return fmt.Errorf("failed to index treatment %s: %w", t.ID, err)
		}
	}
	return nil
}

func searchParams(filter entities.TreatmentFilter) *api.SearchCollectionParams {
	q := strings.TrimSpace(filter.Query)
	if q == "" {
		q = "*"
	}
	limit := filter.Limit
	if limit <= 0 || limit > maxTreatmentHits {
		limit = maxTreatmentHits
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("name,search_terms"),
		PerPage: pointer.Int(limit),
	}
	if filter.HasCategory() {
		params.FilterBy = pointer.String(fmt.Sprintf("category:=`%s`", filter.Category))
	}
	if q == "*" && !filter.HasCategory() {
		params.SortBy = pointer.String("price_elite:asc")
	}
	return params
}

// Search queries the index
func (a *TreatmentIndex) Search(ctx context.Context, filter entities.TreatmentFilter) ([]entities.Treatment, error) {
	result, err := a.client.Client().Collection(treatmentsCollection).Documents().Search(ctx, searchParams(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to search treatments: %w", err)
	}

	treatments := []entities.Treatment{}
	if result.Hits == nil {
		return treatments, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		treatments = append(treatments, treatmentFromDocument(*hit.Document))
	}
	return treatments, nil
}

func treatmentFromDocument(doc map[string]interface{}) entities.Treatment {
	t := entities.Treatment{}
	t.ID, _ = doc["id"].(string)
	t.Name, _ = doc["name"].(string)
	t.Category, _ = doc["category"].(string)
	t.IsFree, _ = doc["is_free"].(bool)
	if v, ok := doc["price_elite"].(float64); ok {
		t.PriceElite = v
	}
	if v, ok := doc["grace_period_months"].(float64); ok {
		t.GracePeriodMonths = int(v)
	}
	return t
}
