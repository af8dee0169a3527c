package entities

// Treatment is a dental treatment with its plan price
type Treatment struct {
	ID                string  `json:"id" db:"id"`
	Name              string  `json:"name" db:"name"`
	Category          string  `json:"category" db:"category"`
	PriceElite        float64 `json:"price_elite" db:"price_elite"`
	IsFree            bool    `json:"is_free" db:"is_free"`
	GracePeriodMonths int     `json:"grace_period_months" db:"grace_period_months"`
}

// AllTreatmentsCategory disables the category filter
const AllTreatmentsCategory = "Todos"

// TreatmentCategories lists the categories offered by the lookup, in display order
var TreatmentCategories = []string{
	AllTreatmentsCategory,
	"Preventiva",
	"Conservadora",
	"Cirugía",
	"Endodoncia",
	"Periodoncia",
	"Implantes",
	"Ortodoncia",
	"Prótesis",
	"Estética",
}

// TreatmentFilter narrows a treatment lookup
type TreatmentFilter struct {
	Query    string
	Category string
	Limit    int
}

// HasCategory reports whether a real category filter is set
func (f TreatmentFilter) HasCategory() bool {
	return f.Category != "" && f.Category != AllTreatmentsCategory
}
