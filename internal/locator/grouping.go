package locator

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// Grouping is the per-person view of one service point's directory rows.
type Grouping struct {
	Practitioners []entities.GroupedPractitioner
	Phone         string

	// UnknownSpecialties lists raw labels that fell outside the
	// normalization table, in first-seen order.
	UnknownSpecialties []string
}

// GroupPractitioners deduplicates the rows of one service point into people.
//
// Rows naming the centre itself (blank, equal to the service point name or to
// the row's combined name) are skipped. Radiology is kept out of a person's
// specialties but still counts the person as present. The result is sorted by
// display name using Spanish collation. Malformed rows are skipped, never
// reported as errors.
func GroupPractitioners(servicePointName string, rows []entities.DirectoryRow) Grouping {
	g := Grouping{Practitioners: []entities.GroupedPractitioner{}}
	if len(rows) > 0 {
		g.Phone = strings.TrimSpace(rows[0].Phone)
	}

	fold := cases.Fold()
	key := func(s string) string { return fold.String(strings.TrimSpace(s)) }

	spKey := key(servicePointName)

	type entry struct {
		display string
		specs   map[string]struct{}
	}
	byName := make(map[string]*entry)
	order := make([]string, 0)
	unknown := make(map[string]struct{})

	for _, row := range rows {
		name := strings.TrimSpace(row.PractitionerName)
		if name == "" {
			continue
		}
		k := key(name)
		if k == spKey {
			continue
		}
		if combined := key(row.CombinedName); combined != "" && k == combined {
			continue
		}

		e, ok := byName[k]
		if !ok {
			e = &entry{display: name, specs: make(map[string]struct{})}
			byName[k] = e
			order = append(order, k)
		}

		switch spec := NormalizeSpecialty(row.Specialty); spec {
		case SpecialtyRadiology:
			// hidden per person
		case SpecialtyUnknown:
			raw := strings.TrimSpace(row.Specialty)
			if _, seen := unknown[raw]; !seen {
				unknown[raw] = struct{}{}
				g.UnknownSpecialties = append(g.UnknownSpecialties, raw)
			}
		default:
			e.specs[spec] = struct{}{}
		}
	}

	for _, k := range order {
		e := byName[k]
		specs := make([]string, 0, len(e.specs))
		for s := range e.specs {
			specs = append(specs, s)
		}
		sortSpanish(specs)
		g.Practitioners = append(g.Practitioners, entities.GroupedPractitioner{
			Name:        e.display,
			Specialties: specs,
		})
	}

	c := collate.New(language.Spanish)
	sort.SliceStable(g.Practitioners, func(i, j int) bool {
		return c.CompareString(g.Practitioners[i].Name, g.Practitioners[j].Name) < 0
	})

	return g
}

// Detail packages the grouping for the detail view.
func (g Grouping) Detail(servicePointID string) *entities.ServicePointDetail {
	return &entities.ServicePointDetail{
		ServicePointID: servicePointID,
		Phone:          g.Phone,
		PhoneDisplay:   FormatSpanishPhone(g.Phone),
		Practitioners:  g.Practitioners,
	}
}

// sortSpanish sorts labels in place using Spanish collation.
func sortSpanish(values []string) {
	collate.New(language.Spanish).SortStrings(values)
}
