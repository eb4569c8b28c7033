package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dclay/budgie/internal/format"
	"github.com/dclay/budgie/internal/normalize"
	"github.com/dclay/budgie/internal/tokenizer"
)

// startingBalancePhrase marks rows that record an account's opening balance
// rather than a real transaction. Purely a vendor-name heuristic.
const startingBalancePhrase = "starting balance"

// BuildCandidates turns tokenized data rows into candidate transactions using
// the confirmed column mapping. Rows with an unparseable date, an empty
// vendor, or an unparseable amount are dropped; each drop is reported as a
// SkipRecord rather than failing the build. The same input always yields the
// same output.
func BuildCandidates(table *tokenizer.Table, mapping format.Mapping, dateFormat normalize.DateFormat) ([]Candidate, []SkipRecord) {
	var (
		candidates []Candidate
		skips      []SkipRecord
	)

	for i, row := range table.Rows {
		date, ok := normalize.ParseDate(cell(row, mapping.Date), dateFormat)
		if !ok {
			skips = append(skips, SkipRecord{Row: i, Reason: SkipBadDate})
			continue
		}

		vendor := cell(row, mapping.Vendor)
		if vendor == "" {
			skips = append(skips, SkipRecord{Row: i, Reason: SkipEmptyVendor})
			continue
		}

		amount, ok := rowAmount(row, mapping)
		if !ok {
			skips = append(skips, SkipRecord{Row: i, Reason: SkipBadAmount})
			continue
		}

		normVendor := normalize.Vendor(vendor)

		candidates = append(candidates, Candidate{
			SourceRow:        i,
			Date:             date,
			Vendor:           vendor,
			NormalizedVendor: normVendor,
			Amount:           amount,
			Description:      cell(row, mapping.Description),
			CSVCategory:      cell(row, mapping.Category),
			StartingBalance:  strings.Contains(normVendor, startingBalancePhrase),
		})
	}

	return candidates, skips
}

// rowAmount resolves the signed amount from either the single amount column or
// the inflow/outflow pair, as inflow minus outflow.
func rowAmount(row []string, mapping format.Mapping) (amount decimal.Decimal, ok bool) {
	if mapping.Amount >= 0 {
		return normalize.ParseAmount(cell(row, mapping.Amount))
	}

	inflowCell := cell(row, mapping.Inflow)
	outflowCell := cell(row, mapping.Outflow)

	if inflowCell == "" && outflowCell == "" {
		return decimal.Decimal{}, false
	}

	inflow := decimal.Zero

	if inflowCell != "" {
		inflow, ok = normalize.ParseAmount(inflowCell)
		if !ok {
			return decimal.Decimal{}, false
		}
	}

	outflow := decimal.Zero

	if outflowCell != "" {
		outflow, ok = normalize.ParseAmount(outflowCell)
		if !ok {
			return decimal.Decimal{}, false
		}
	}

	return inflow.Sub(outflow), true
}

// cell safely reads a trimmed-at-tokenize-time cell; out-of-range or unmapped
// columns read as empty.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}
