// Package format guesses which exporter produced an uploaded file by matching
// its header row against known profiles, and builds the role-to-column mapping
// the transaction builder consumes. Confidence is a static per-profile score,
// not something computed from the data itself.
package format

import "strings"

const (
	profileThreshold = 0.8
	genericThreshold = 0.5
)

// Result is the outcome of header detection.
type Result struct {
	Format     Format
	Mapping    Mapping
	Confidence float64
}

// Detect runs the named profiles in priority order, then the generic detector,
// and finally falls back to a best-guess positional mapping with confidence 0.
func Detect(headers []string) Result {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, p := range profiles {
		if mapping, ok := match(p, normalized); ok && p.confidence >= profileThreshold {
			return Result{Format: p.format, Mapping: mapping, Confidence: p.confidence}
		}
	}

	if mapping, ok := matchGeneric(normalized); ok && generic.confidence >= genericThreshold {
		return Result{Format: FormatCustom, Mapping: mapping, Confidence: generic.confidence}
	}

	return Result{Format: FormatCustom, Mapping: fallbackMapping(len(normalized)), Confidence: 0}
}

// match resolves a profile's roles against the normalized headers. It fails if
// any mandatory role cannot be placed; optional roles are filled when possible.
func match(p profile, headers []string) (Mapping, bool) {
	mapping := NewMapping()
	claimed := make(map[int]bool)

	for _, rc := range p.mandatory {
		idx := findColumn(headers, rc.candidates, claimed)
		if idx < 0 {
			return Mapping{}, false
		}

		mapping.set(rc.role, idx)
		claimed[idx] = true
	}

	for _, rc := range p.optional {
		if idx := findColumn(headers, rc.candidates, claimed); idx >= 0 {
			mapping.set(rc.role, idx)
			claimed[idx] = true
		}
	}

	return mapping, true
}

// matchGeneric is the loose detector: it only demands date-like and amount-like
// columns. A vendor column is matched by name if possible, otherwise inferred
// as the first column no role has claimed, before the remaining optional roles
// get a chance to claim it.
func matchGeneric(headers []string) (Mapping, bool) {
	mapping := NewMapping()
	claimed := make(map[int]bool)

	for _, rc := range generic.mandatory {
		idx := findColumn(headers, rc.candidates, claimed)
		if idx < 0 {
			return Mapping{}, false
		}

		mapping.set(rc.role, idx)
		claimed[idx] = true
	}

	for _, rc := range generic.optional {
		if rc.role != RoleVendor {
			continue
		}

		mapping.Vendor = findColumn(headers, rc.candidates, claimed)
	}

	if mapping.Vendor < 0 {
		for i := range headers {
			if !claimed[i] {
				mapping.Vendor = i
				break
			}
		}
	}

	if mapping.Vendor < 0 {
		return Mapping{}, false
	}

	claimed[mapping.Vendor] = true

	for _, rc := range generic.optional {
		if rc.role == RoleVendor {
			continue
		}

		if idx := findColumn(headers, rc.candidates, claimed); idx >= 0 {
			mapping.set(rc.role, idx)
			claimed[idx] = true
		}
	}

	return mapping, true
}

// findColumn locates the first unclaimed header satisfying any candidate name,
// preferring exact matches over substring containment.
func findColumn(headers, candidates []string, claimed map[int]bool) int {
	for _, c := range candidates {
		for i, h := range headers {
			if !claimed[i] && h == c {
				return i
			}
		}
	}

	for _, c := range candidates {
		for i, h := range headers {
			if !claimed[i] && strings.Contains(h, c) {
				return i
			}
		}
	}

	return -1
}

// fallbackMapping assigns the first three columns to date, vendor, and amount.
// It is the guess of last resort and carries zero confidence.
func fallbackMapping(n int) Mapping {
	mapping := NewMapping()

	if n > 0 {
		mapping.Date = 0
	}

	if n > 1 {
		mapping.Vendor = 1
	}

	if n > 2 {
		mapping.Amount = 2
	}

	return mapping
}
