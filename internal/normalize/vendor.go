package normalize

import (
	"strings"
	"unicode"
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// Vendor produces the canonical matching key for a vendor name: lower-cased,
// apostrophe variants unified, punctuation stripped except apostrophes and
// hyphens, whitespace collapsed. The result is only ever used for matching;
// the original string is what gets stored and displayed.
func Vendor(s string) string {
	s = apostrophes.Replace(strings.ToLower(s))

	var b strings.Builder

	for _, c := range s {
		switch {
		case unicode.IsLetter(c) || unicode.IsDigit(c) || unicode.IsSpace(c):
			b.WriteRune(c)
		case c == '\'' || c == '-':
			b.WriteRune(c)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
