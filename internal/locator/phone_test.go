package locator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/dentisalud-funnel/internal/locator"
)

func TestFormatSpanishPhone(t *testing.T) {
	tests := map[string]string{
		"912345678":     "91 234 56 78",
		"93 123 45 67":  "93 123 45 67",
		"612345678":     "612 34 56 78",
		"965-12-34-56":  "965 12 34 56",
		"+34 612345678": "+34 612345678",
		"12345":         "12345",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, locator.FormatSpanishPhone(in), "input %q", in)
	}
}
