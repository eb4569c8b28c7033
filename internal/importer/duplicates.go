package importer

import (
	"github.com/shopspring/decimal"

	"github.com/dclay/budgie/internal/ledger"
	"github.com/dclay/budgie/internal/normalize"
)

// duplicateTolerance absorbs rounding drift between the export and what was
// stored, not near-miss amounts that are genuinely different.
var duplicateTolerance = decimal.NewFromFloat(0.015)

// MarkDuplicates flags candidates that already exist in the ledger: same exact
// date string, same normalized vendor, and an amount within the tolerance
// window. Existing entries are bucketed by date so each candidate costs one
// lookup. Starting-balance rows are never flagged. Flags are set in place;
// any previous flags are recomputed.
func MarkDuplicates(candidates []Candidate, existing []ledger.TransactionKey) {
	type entry struct {
		vendor string
		amount decimal.Decimal
	}

	buckets := make(map[string][]entry, len(existing))

	for _, key := range existing {
		buckets[key.Date] = append(buckets[key.Date], entry{
			vendor: normalize.Vendor(key.Vendor),
			amount: key.Amount,
		})
	}

	for i := range candidates {
		c := &candidates[i]
		c.Duplicate = false

		if c.StartingBalance {
			continue
		}

		for _, e := range buckets[c.Date] {
			if e.vendor != c.NormalizedVendor {
				continue
			}

			if c.Amount.Sub(e.amount).Abs().Cmp(duplicateTolerance) <= 0 {
				c.Duplicate = true
				break
			}
		}
	}
}
