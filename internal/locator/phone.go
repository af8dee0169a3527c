package locator

import "strings"

var twoDigitPrefixes = []string{"91", "81", "93", "83"}

// FormatSpanishPhone groups a nine digit Spanish number for display.
// Madrid and Barcelona landlines (91/81/93/83) read "91 234 56 78", every
// other number "612 34 56 78". Anything that is not nine digits is returned
// as given.
func FormatSpanishPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 9 {
		return phone
	}

	for _, p := range twoDigitPrefixes {
		if strings.HasPrefix(digits, p) {
			return digits[0:2] + " " + digits[2:5] + " " + digits[5:7] + " " + digits[7:9]
		}
	}
	return digits[0:3] + " " + digits[3:5] + " " + digits[5:7] + " " + digits[7:9]
}
