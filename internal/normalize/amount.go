package normalize

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a free-form amount cell into a signed decimal. It accepts
// currency symbols, thousands separators in both UK/US and European styles,
// and accountant-style parentheses for negatives. The second return value is
// false when nothing numeric remains.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder

	for _, c := range s {
		if unicode.IsDigit(c) || c == ',' || c == '.' || c == '-' || c == '+' {
			b.WriteRune(c)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	// "1.234,56" has its last comma exactly three characters from the end with
	// nothing but the decimals after it; that marks the European convention.
	// Everything else treats commas as thousands separators.
	if idx := strings.LastIndex(cleaned, ","); idx >= 0 && idx == len(cleaned)-3 {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}

	if negative {
		d = d.Neg()
	}

	return d, true
}
