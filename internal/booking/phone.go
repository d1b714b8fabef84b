package booking

import (
	"strings"
	"unicode"
)

// NormalizePhone strips everything except ASCII digits, so "(555) 123-4567"
// and "555.123.4567" both become "5551234567".
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
