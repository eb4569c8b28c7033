// Package normalize converts the free-form date, amount, and vendor strings
// found in bank exports into canonical values. Parsers report failure with a
// bool rather than an error: a bad cell is routine, not exceptional.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// DateFormat is the hint given to ParseDate. Auto tries every known shape with
// a day-first bias for ambiguous numeric dates.
type DateFormat string

const (
	DateAuto       DateFormat = "auto"
	DateISO        DateFormat = "iso"         // 2024-01-31
	DateDayFirst   DateFormat = "day-first"   // 31/01/2024, 31.01.2024, 31-01-2024
	DateMonthFirst DateFormat = "month-first" // 01/31/2024
	DateMonthName  DateFormat = "month-name"  // 31 Jan 2024, 31-Jan-2024, Jan 31, 2024
)

var monthNames = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseDate parses a single date cell into canonical YYYY-MM-DD form. The
// second return value is false when the cell cannot be read as a date under
// the given format hint.
func ParseDate(s string, hint DateFormat) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	switch hint {
	case DateISO:
		return parseISO(s)
	case DateDayFirst:
		return parseTriple(s, false)
	case DateMonthFirst:
		return parseTriple(s, true)
	case DateMonthName:
		return parseMonthName(s)
	}

	if out, ok := parseISO(s); ok {
		return out, true
	}

	if out, ok := parseTripleAuto(s); ok {
		return out, true
	}

	return parseMonthName(s)
}

// DetectDateFormat inspects up to 20 sample values from a column and picks one
// fixed format for the whole file. Ambiguous all-numeric dates stay day-first;
// only a sample whose second component exceeds 12 flips the column to
// month-first.
func DetectDateFormat(samples []string) DateFormat {
	var iso, dayFirst, monthFirst, named int

	seen := 0

	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		if seen++; seen > 20 {
			break
		}

		if _, ok := parseISO(s); ok {
			iso++
			continue
		}

		if a, b, _, ok := splitTriple(s); ok {
			switch {
			case a > 12:
				dayFirst++
			case b > 12:
				monthFirst++
			}

			continue
		}

		if _, ok := parseMonthName(s); ok {
			named++
		}
	}

	switch {
	case iso > 0 && dayFirst == 0 && monthFirst == 0 && named == 0:
		return DateISO
	case monthFirst > 0 && dayFirst == 0:
		return DateMonthFirst
	case named > 0 && dayFirst == 0 && monthFirst == 0:
		return DateMonthName
	case dayFirst > 0 || monthFirst > 0 || iso > 0 || named > 0:
		return DateDayFirst
	}

	return DateAuto
}

func parseISO(s string) (string, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return "", false
	}

	y, m, d, ok := atoiTriple(parts[0], parts[1], parts[2])
	if !ok {
		return "", false
	}

	return formatDate(y, m, d)
}

// parseTripleAuto applies the day-first heuristic: a first component over 12
// must be a day, a second component over 12 forces month-first, and anything
// ambiguous defaults to day-first.
func parseTripleAuto(s string) (string, bool) {
	a, b, _, ok := splitTriple(s)
	if !ok {
		return "", false
	}

	monthFirst := a <= 12 && b > 12

	return parseTriple(s, monthFirst)
}

func parseTriple(s string, monthFirst bool) (string, bool) {
	a, b, y, ok := splitTriple(s)
	if !ok {
		return "", false
	}

	if monthFirst {
		return formatDate(y, a, b)
	}

	return formatDate(y, b, a)
}

// splitTriple splits a numeric date on slash, dot, or dash into its first two
// components and a 4-digit year.
func splitTriple(s string) (a, b, year int, ok bool) {
	sep := ""

	for _, candidate := range []string{"/", ".", "-"} {
		if strings.Count(s, candidate) == 2 {
			sep = candidate
			break
		}
	}

	if sep == "" {
		return 0, 0, 0, false
	}

	parts := strings.Split(s, sep)
	if len(parts[2]) != 4 {
		return 0, 0, 0, false
	}

	year, b, a, ok = atoiTriple(parts[2], parts[1], parts[0])
	if !ok {
		return 0, 0, 0, false
	}

	return a, b, year, true
}

// parseMonthName handles "31 Jan 2024", "31-Jan-2024", and "Jan 31, 2024".
func parseMonthName(s string) (string, bool) {
	cleaned := strings.NewReplacer("-", " ", ",", " ").Replace(s)

	parts := strings.Fields(cleaned)
	if len(parts) != 3 {
		return "", false
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", false
	}

	// Day-first: "31 Jan 2024".
	if month, ok := monthNames[strings.ToLower(parts[1])]; ok {
		day, err := strconv.Atoi(parts[0])
		if err != nil {
			return "", false
		}

		return formatDate(year, month, day)
	}

	// Month-first: "Jan 31, 2024".
	if month, ok := monthNames[strings.ToLower(parts[0])]; ok {
		day, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", false
		}

		return formatDate(year, month, day)
	}

	return "", false
}

func atoiTriple(ys, ms, ds string) (y, m, d int, ok bool) {
	y, err1 := strconv.Atoi(ys)
	m, err2 := strconv.Atoi(ms)
	d, err3 := strconv.Atoi(ds)

	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}

	return y, m, d, true
}

// formatDate validates calendar bounds and renders the canonical form.
func formatDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 || year > 2100 {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
