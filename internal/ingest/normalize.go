package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle reduces a scraped film title to the form used for film
// matching: Unicode-lowercased, diacritics folded away, punctuation
// dropped, inner whitespace collapsed.  "Amélie", "AMELIE " and "Amelie!"
// all normalize identically.  The policy is deliberately exact beyond
// that: no edit-distance matching, because a duplicate film row is
// recoverable by curation and a false merge is not.
func NormalizeTitle(title string) string {
	decomposed := norm.NFD.String(title)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from decomposition: drop it
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-' || r == '/' || r == ':':
			b.WriteRune(' ')
		}
		// any other punctuation is dropped entirely
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
