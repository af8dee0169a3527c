package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
)

// Élite plan tariffs per paying member and receipt
var tariffs = map[entities.PaymentFrequency]struct {
	price    float64
	receipts int
}{
	entities.FrequencyMonthly:    {10.90, 12},
	entities.FrequencyQuarterly:  {31.80, 4},
	entities.FrequencySemiannual: {62.36, 2},
	entities.FrequencyAnnual:     {121.68, 1},
}

// FamilyPackDiscount is listed when adults and children share a policy
const FamilyPackDiscount = "Pack Familiar"

// adultAgeYears is the age above which a member counts as an adult
const adultAgeYears = 15

const maxMembers = 20

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}

// frequencyAllowed applies the minimum-receipt rules: a single payer may
// only pay annually or semiannually, two or three payers anything but
// monthly, four or more anything.
func frequencyAllowed(payers int, freq entities.PaymentFrequency) bool {
	switch {
	case payers <= 0:
		return false
	case payers == 1:
		return freq == entities.FrequencyAnnual || freq == entities.FrequencySemiannual
	case payers <= 3:
		return freq != entities.FrequencyMonthly
	default:
		return true
	}
}

// CalculatePremiums prices every payment frequency for a household. Adults
// pay and children ride free; a household of only children pays per child.
func CalculatePremiums(adults, children int) entities.Quote {
	if adults < 0 {
		adults = 0
	}
	if children < 0 {
		children = 0
	}
	payers := adults
	if payers == 0 {
		payers = children
	}
	members := adults + children
	if members == 0 {
		members = 1
	}

	annualBase := tariffs[entities.FrequencyAnnual].price * float64(payers)
	quote := entities.Quote{
		Price:            make(map[entities.PaymentFrequency]entities.PriceDetails, len(entities.Frequencies)),
		AdultsCount:      adults,
		ChildrenCount:    children,
		AppliedDiscounts: []string{},
	}
	for _, freq := range entities.Frequencies {
		t := tariffs[freq]
		total := t.price * float64(payers)
		annualized := total * float64(t.receipts)
		quote.Price[freq] = entities.PriceDetails{
			Frequency:       freq,
			Total:           cents(total),
			PerPerson:       cents(total / float64(members)),
			IsAllowed:       frequencyAllowed(payers, freq),
			AnnualizedTotal: cents(annualized),
			SavingsVsAnnual: cents(annualized - annualBase),
		}
	}
	if adults > 0 && children > 0 {
		quote.AppliedDiscounts = append(quote.AppliedDiscounts, FamilyPackDiscount)
	}
	return quote
}

// SaveProjectRequest carries the anonymous household of a quote
type SaveProjectRequest struct {
	BirthDates []string `json:"birth_dates"`
	Frequency  string   `json:"frequency,omitempty"`
}

// QuoteService prices and stores calculation projects
type QuoteService struct {
	repo repositories.QuoteRepository
	now  func() time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(repo repositories.QuoteRepository) *QuoteService {
	return &QuoteService{repo: repo, now: time.Now}
}

// Quote prices a household by head count
func (s *QuoteService) Quote(adults, children int) (entities.Quote, error) {
	if adults < 0 || children < 0 || adults+children > maxMembers {
		return entities.Quote{}, apperrors.NewValidationError("adults and children must be between 0 and 20 in total")
	}
	return CalculatePremiums(adults, children), nil
}

// SaveProject classifies members by birth date, prices the household and
// stores the project with its members.
func (s *QuoteService) SaveProject(ctx context.Context, req SaveProjectRequest) (*entities.CalculationProject, entities.Quote, error) {
	if len(req.BirthDates) == 0 || len(req.BirthDates) > maxMembers {
		return nil, entities.Quote{}, apperrors.NewValidationError("between 1 and 20 birth dates are required")
	}

	now := s.now().UTC()
	cutoff := now.AddDate(-adultAgeYears, 0, 0)

	members := make([]entities.InsuredMember, 0, len(req.BirthDates))
	adults, children := 0, 0
	for _, raw := range req.BirthDates {
		born, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
		if err != nil {
			return nil, entities.Quote{}, apperrors.NewValidationError("invalid birth date: " + raw)
		}
		if born.After(now) {
			return nil, entities.Quote{}, apperrors.NewValidationError("birth date in the future: " + raw)
		}
		adult := born.Before(cutoff)
		if adult {
			adults++
		} else {
			children++
		}
		members = append(members, entities.InsuredMember{BirthDate: born, IsAdult: adult})
	}

	quote := CalculatePremiums(adults, children)

	freq := entities.FrequencyMonthly
	if req.Frequency != "" {
		parsed, ok := entities.ParseFrequency(strings.ToLower(req.Frequency))
		if !ok {
			return nil, entities.Quote{}, apperrors.NewValidationError("unknown payment frequency: " + req.Frequency)
		}
		freq = parsed
	}
	selected := quote.Resolve(freq)

	project := &entities.CalculationProject{
		TotalMonthlyElite: quote.Price[entities.FrequencyMonthly].Total,
		SelectedFrequency: selected.Frequency,
		SelectedTotal:     selected.Total,
		AdultsCount:       adults,
		ChildrenCount:     children,
		Members:           members,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, entities.Quote{}, err
	}
	return project, quote, nil
}
