package locator

import "strings"

// Canonical specialty labels shown to users.
const (
	SpecialtyGeneral      = "Odontología General"
	SpecialtyImplants     = "Implantes"
	SpecialtyOrthodontics = "Ortodoncia"
	SpecialtyRadiology    = "Radiología"
	SpecialtyInnovation   = "Innovaciones"

	// SpecialtyUnknown marks a raw label outside the table; it is never displayed.
	SpecialtyUnknown = "unknown"
)

var specialtyTable = map[string]string{
	"Odontología General":                    SpecialtyGeneral,
	"Odontología Implantes":                  SpecialtyImplants,
	"Odontología Ortodoncia":                 SpecialtyOrthodontics,
	"Radiología Dental":                      SpecialtyRadiology,
	"Innovaciones tecnológicas bucodentales": SpecialtyInnovation,
}

// NormalizeSpecialty maps a raw directory label onto the canonical set.
// Blank and unrecognized labels yield SpecialtyUnknown.
func NormalizeSpecialty(raw string) string {
	if canonical, ok := specialtyTable[strings.TrimSpace(raw)]; ok {
		return canonical
	}
	return SpecialtyUnknown
}

// NormalizeSpecialties normalizes a list, dropping unknown labels and duplicates.
func NormalizeSpecialties(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, label := range raw {
		s := NormalizeSpecialty(label)
		if s == SpecialtyUnknown {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sortSpanish(out)
	return out
}
