package importer_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dclay/budgie/internal/importer"
)

func groceriesCandidates() []importer.Candidate {
	return []importer.Candidate{
		{CSVCategory: "Groceries", Vendor: "Tesco", NormalizedVendor: "tesco"},
		{CSVCategory: "Groceries", Vendor: "Asda", NormalizedVendor: "asda"},
		{CSVCategory: "Eating Out", Vendor: "Greggs", NormalizedVendor: "greggs"},
	}
}

func TestResolver_MergeIsIdempotent(t *testing.T) {
	target := uuid.New()
	candidates := groceriesCandidates()

	r := importer.NewResolver()
	r.SetAction("Groceries", importer.CategoryAction{Kind: importer.ActionMerge, TargetID: target})

	r.Apply(candidates)

	first := make([]importer.CategoryRef, len(candidates))
	for i, c := range candidates {
		first[i] = c.Assigned
	}

	r.Apply(candidates)

	for i, c := range candidates {
		assert.Equal(t, first[i], c.Assigned)
	}

	id, ok := candidates[0].Assigned.ID()
	require.True(t, ok)
	assert.Equal(t, target, id)

	id, ok = candidates[1].Assigned.ID()
	require.True(t, ok)
	assert.Equal(t, target, id)

	assert.True(t, candidates[2].Assigned.IsZero())
}

func TestResolver_CreateAssignsPendingRef(t *testing.T) {
	candidates := groceriesCandidates()

	r := importer.NewResolver()
	r.SetAction("Groceries", importer.CategoryAction{
		Kind:  importer.ActionCreate,
		Name:  "Food Shopping",
		Group: importer.PendingGroup("Imported"),
	})
	r.Apply(candidates)

	name, ok := candidates[0].Assigned.Pending()
	require.True(t, ok)
	assert.Equal(t, "Groceries", name)

	name, ok = candidates[1].Assigned.Pending()
	require.True(t, ok)
	assert.Equal(t, "Groceries", name)
}

func TestResolver_SkipClearsAssignment(t *testing.T) {
	candidates := groceriesCandidates()

	r := importer.NewResolver()
	r.SetAction("Groceries", importer.CategoryAction{Kind: importer.ActionMerge, TargetID: uuid.New()})
	r.Apply(candidates)

	r.SetAction("Groceries", importer.CategoryAction{Kind: importer.ActionSkip})
	r.Apply(candidates)

	assert.True(t, candidates[0].Assigned.IsZero())
	assert.True(t, candidates[1].Assigned.IsZero())
}

func TestResolver_VendorRuleFillsUnassignedOnly(t *testing.T) {
	merged := uuid.New()
	ruled := uuid.New()
	candidates := groceriesCandidates()

	r := importer.NewResolver()
	r.SetAction("Groceries", importer.CategoryAction{Kind: importer.ActionMerge, TargetID: merged})
	r.SetVendorRule("TESCO", ruled)
	r.SetVendorRule("Greggs", ruled)
	r.Apply(candidates)

	// The explicit category decision wins over the vendor rule.
	id, ok := candidates[0].Assigned.ID()
	require.True(t, ok)
	assert.Equal(t, merged, id)

	// The rule fills the candidate with no decision for its category.
	id, ok = candidates[2].Assigned.ID()
	require.True(t, ok)
	assert.Equal(t, ruled, id)
}

func TestResolver_VendorRuleDoesNotOverrideSkip(t *testing.T) {
	candidates := groceriesCandidates()

	r := importer.NewResolver()
	r.SetAction("Groceries", importer.CategoryAction{Kind: importer.ActionSkip})
	r.SetVendorRule("Tesco", uuid.New())
	r.Apply(candidates)

	assert.True(t, candidates[0].Assigned.IsZero())
}

func TestResolver_VendorRuleIsIdempotent(t *testing.T) {
	ruled := uuid.New()
	candidates := groceriesCandidates()

	r := importer.NewResolver()
	r.SetVendorRule("Greggs", ruled)

	r.Apply(candidates)
	first := candidates[2].Assigned

	r.Apply(candidates)
	assert.Equal(t, first, candidates[2].Assigned)
}
