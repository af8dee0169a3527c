package entities

import "time"

// PaymentFrequency is how often the premium is charged
type PaymentFrequency string

const (
	FrequencyMonthly    PaymentFrequency = "mensual"
	FrequencyQuarterly  PaymentFrequency = "trimestral"
	FrequencySemiannual PaymentFrequency = "semestral"
	FrequencyAnnual     PaymentFrequency = "anual"
)

// Frequencies lists every payment frequency, most frequent first
var Frequencies = []PaymentFrequency{
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencySemiannual,
	FrequencyAnnual,
}

// ParseFrequency returns the frequency named by s
func ParseFrequency(s string) (PaymentFrequency, bool) {
	for _, f := range Frequencies {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// PriceDetails is one priced payment option
type PriceDetails struct {
	Frequency       PaymentFrequency `json:"frequency"`
	Total           float64          `json:"total"`
	PerPerson       float64          `json:"per_person"`
	IsAllowed       bool             `json:"is_allowed"`
	AnnualizedTotal float64          `json:"annualized_total"`
	SavingsVsAnnual float64          `json:"savings_vs_annual"`
}

// Quote is the result of a premium calculation
type Quote struct {
	Price            map[PaymentFrequency]PriceDetails `json:"price"`
	AdultsCount      int                               `json:"adults_count"`
	ChildrenCount    int                               `json:"children_count"`
	AppliedDiscounts []string                          `json:"applied_discounts"`
}

// Resolve returns the requested option, falling back to annual when the
// requested frequency is unknown or not allowed for this household.
func (q Quote) Resolve(freq PaymentFrequency) PriceDetails {
	if p, ok := q.Price[freq]; ok && p.IsAllowed {
		return p
	}
	return q.Price[FrequencyAnnual]
}

// CalculationProject is a saved quote
type CalculationProject struct {
	ID                string           `json:"id" db:"id"`
	TotalMonthlyElite float64          `json:"total_monthly_elite" db:"total_monthly_elite"`
	SelectedFrequency PaymentFrequency `json:"selected_frequency" db:"selected_frequency"`
	SelectedTotal     float64          `json:"selected_total" db:"selected_total"`
	AdultsCount       int              `json:"adults_count" db:"adults_count"`
	ChildrenCount     int              `json:"children_count" db:"children_count"`
	Members           []InsuredMember  `json:"members" db:"-"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
}

// InsuredMember is one person covered by a calculation project
type InsuredMember struct {
	ProjectID string    `json:"project_id" db:"project_id"`
	BirthDate time.Time `json:"birth_date" db:"birth_date"`
	IsAdult   bool      `json:"is_adult" db:"is_adult"`
}
