package normalize

import (
	"strings"
	"unicode"
)

// Title canonicalizes a title for duplicate comparison: lowercase, punctuation
// stripped, whitespace collapsed. The result is comparison-only and must never
// be used as display text or identity.
func Title(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// Punctuation and symbols are dropped entirely.
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
