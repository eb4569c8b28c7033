package importer_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dclay/budgie/internal/importer"
	"github.com/dclay/budgie/internal/ledger"
	"github.com/dclay/budgie/internal/normalize"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func candidate(date, vendor, amt string) importer.Candidate {
	return importer.Candidate{
		Date:             date,
		Vendor:           vendor,
		NormalizedVendor: normalize.Vendor(vendor),
		Amount:           amount(amt),
	}
}

func TestMarkDuplicates(t *testing.T) {
	existing := []ledger.TransactionKey{
		{Date: "2024-01-05", Vendor: "Tesco", Amount: amount("-42.00")},
	}

	tests := []struct {
		name string
		cand importer.Candidate
		want bool
	}{
		{"same vendor different case", candidate("2024-01-05", "TESCO", "-42.00"), true},
		{"within tolerance", candidate("2024-01-05", "Tesco", "-42.01"), true},
		{"outside tolerance", candidate("2024-01-05", "Tesco", "-42.50"), false},
		{"different date", candidate("2024-01-06", "Tesco", "-42.00"), false},
		{"different vendor", candidate("2024-01-05", "Asda", "-42.00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := []importer.Candidate{tt.cand}
			importer.MarkDuplicates(candidates, existing)
			assert.Equal(t, tt.want, candidates[0].Duplicate)
		})
	}
}

func TestMarkDuplicates_StartingBalanceNeverFlagged(t *testing.T) {
	existing := []ledger.TransactionKey{
		{Date: "2024-01-01", Vendor: "Starting Balance", Amount: amount("500.00")},
	}

	c := candidate("2024-01-01", "Starting Balance", "500.00")
	c.StartingBalance = true

	candidates := []importer.Candidate{c}
	importer.MarkDuplicates(candidates, existing)

	assert.False(t, candidates[0].Duplicate)
}

func TestMarkDuplicates_Recomputes(t *testing.T) {
	c := candidate("2024-01-05", "Tesco", "-42.00")
	c.Duplicate = true

	candidates := []importer.Candidate{c}
	importer.MarkDuplicates(candidates, nil)

	assert.False(t, candidates[0].Duplicate)
}
