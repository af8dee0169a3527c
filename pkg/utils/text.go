package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldAccents lowercases s, strips diacritics and trims spaces, so that
// "  Málaga" and "malaga" compare equal.
func FoldAccents(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)
	return s
}

// MatchFolded returns the candidate equal to s after folding.
func MatchFolded(candidates []string, s string) (string, bool) {
	key := FoldAccents(s)
	if key == "" {
		return "", false
	}
	for _, c := range candidates {
		if FoldAccents(c) == key {
			return c, true
		}
	}
	return "", false
}

// SearchTerms splits s into distinct folded words, keeping order.
func SearchTerms(s string) []string {
	fields := strings.FieldsFunc(FoldAccents(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
