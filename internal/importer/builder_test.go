package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dclay/budgie/internal/format"
	"github.com/dclay/budgie/internal/importer"
	"github.com/dclay/budgie/internal/normalize"
	"github.com/dclay/budgie/internal/tokenizer"
)

func singleAmountMapping() format.Mapping {
	m := format.NewMapping()
	m.Date = 0
	m.Vendor = 1
	m.Amount = 2
	m.Description = 3
	m.Category = 4

	return m
}

func TestBuildCandidates_ValidRows(t *testing.T) {
	table := &tokenizer.Table{
		Headers: []string{"Date", "Payee", "Amount", "Memo", "Category"},
		Rows: [][]string{
			{"2024-01-05", "Tesco", "-42.00", "weekly shop", "Groceries"},
			{"2024-01-06", "Acme Payroll", "1,250.00", "", "Income"},
		},
	}

	candidates, skips := importer.BuildCandidates(table, singleAmountMapping(), normalize.DateAuto)

	require.Empty(t, skips)
	require.Len(t, candidates, 2)

	assert.Equal(t, 0, candidates[0].SourceRow)
	assert.Equal(t, "2024-01-05", candidates[0].Date)
	assert.Equal(t, "Tesco", candidates[0].Vendor)
	assert.Equal(t, "tesco", candidates[0].NormalizedVendor)
	assert.Equal(t, "-42", candidates[0].Amount.String())
	assert.Equal(t, "weekly shop", candidates[0].Description)
	assert.Equal(t, "Groceries", candidates[0].CSVCategory)
	assert.False(t, candidates[0].StartingBalance)

	assert.Equal(t, "1250", candidates[1].Amount.String())
}

func TestBuildCandidates_SkipRecords(t *testing.T) {
	table := &tokenizer.Table{
		Headers: []string{"Date", "Payee", "Amount"},
		Rows: [][]string{
			{"not a date", "Tesco", "-1.00"},
			{"2024-01-05", "", "-1.00"},
			{"2024-01-05", "Tesco", "n/a"},
			{"2024-01-05", "Tesco", "-1.00"},
		},
	}

	candidates, skips := importer.BuildCandidates(table, singleAmountMapping(), normalize.DateAuto)

	require.Len(t, candidates, 1)
	assert.Equal(t, 3, candidates[0].SourceRow)

	require.Len(t, skips, 3)
	assert.Equal(t, importer.SkipRecord{Row: 0, Reason: importer.SkipBadDate}, skips[0])
	assert.Equal(t, importer.SkipRecord{Row: 1, Reason: importer.SkipEmptyVendor}, skips[1])
	assert.Equal(t, importer.SkipRecord{Row: 2, Reason: importer.SkipBadAmount}, skips[2])
}

func TestBuildCandidates_InflowOutflow(t *testing.T) {
	m := format.NewMapping()
	m.Date = 0
	m.Vendor = 1
	m.Outflow = 2
	m.Inflow = 3

	table := &tokenizer.Table{
		Headers: []string{"Date", "Payee", "Outflow", "Inflow"},
		Rows: [][]string{
			{"2024-01-05", "Tesco", "42.00", ""},
			{"2024-01-06", "Acme Payroll", "", "1250.00"},
			{"2024-01-07", "No amounts", "", ""},
		},
	}

	candidates, skips := importer.BuildCandidates(table, m, normalize.DateAuto)

	require.Len(t, candidates, 2)
	assert.Equal(t, "-42", candidates[0].Amount.String())
	assert.Equal(t, "1250", candidates[1].Amount.String())

	require.Len(t, skips, 1)
	assert.Equal(t, importer.SkipBadAmount, skips[0].Reason)
}

func TestBuildCandidates_StartingBalance(t *testing.T) {
	table := &tokenizer.Table{
		Headers: []string{"Date", "Payee", "Amount"},
		Rows: [][]string{
			{"2024-01-01", "Starting Balance", "500.00"},
			{"2024-01-01", "STARTING BALANCE ADJUSTMENT", "10.00"},
			{"2024-01-05", "Tesco", "-42.00"},
		},
	}

	candidates, _ := importer.BuildCandidates(table, singleAmountMapping(), normalize.DateAuto)

	require.Len(t, candidates, 3)
	assert.True(t, candidates[0].StartingBalance)
	assert.True(t, candidates[1].StartingBalance)
	assert.False(t, candidates[2].StartingBalance)
}

func TestBuildCandidates_Deterministic(t *testing.T) {
	table := &tokenizer.Table{
		Headers: []string{"Date", "Payee", "Amount"},
		Rows: [][]string{
			{"2024-01-05", "Tesco", "-42.00"},
			{"bad", "Tesco", "-1.00"},
		},
	}

	first, firstSkips := importer.BuildCandidates(table, singleAmountMapping(), normalize.DateAuto)
	second, secondSkips := importer.BuildCandidates(table, singleAmountMapping(), normalize.DateAuto)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSkips, secondSkips)
}
