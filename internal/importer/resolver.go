package importer

import (
	"github.com/google/uuid"

	"github.com/dclay/budgie/internal/normalize"
)

// ActionKind says what to do with every candidate sharing one raw CSV
// category string.
type ActionKind int

const (
	// ActionMerge assigns an existing category.
	ActionMerge ActionKind = iota
	// ActionCreate materializes a new category (and possibly its group) at
	// commit time.
	ActionCreate
	// ActionSkip leaves the candidates explicitly uncategorized.
	ActionSkip
)

// CategoryAction is the user's decision for one raw CSV category string.
type CategoryAction struct {
	Kind     ActionKind
	TargetID uuid.UUID // Merge: the existing category
	Name     string    // Create: the new category's name
	Group    GroupRef  // Create: the group it belongs to
}

// Resolver accumulates category actions and vendor rules during the
// categorization stage and applies them to the candidate set. Application is
// idempotent, and the precedence is fixed here rather than left to call
// order: CSV-category actions are always evaluated before vendor rules, and a
// vendor rule never touches a candidate whose CSV category has an explicit
// action, even a Skip.
type Resolver struct {
	actions map[string]CategoryAction // keyed by raw CSV category string
	rules   map[string]uuid.UUID      // keyed by normalized vendor
}

func NewResolver() *Resolver {
	return &Resolver{
		actions: make(map[string]CategoryAction),
		rules:   make(map[string]uuid.UUID),
	}
}

// SetAction records the decision for a CSV category. Setting it again
// replaces the previous decision.
func (r *Resolver) SetAction(csvCategory string, action CategoryAction) {
	r.actions[csvCategory] = action
}

// Action returns the recorded decision for a CSV category, if any.
func (r *Resolver) Action(csvCategory string) (CategoryAction, bool) {
	a, ok := r.actions[csvCategory]
	return a, ok
}

// Actions returns all recorded decisions keyed by raw CSV category.
func (r *Resolver) Actions() map[string]CategoryAction {
	return r.actions
}

// SetVendorRule maps every candidate sharing the vendor to an existing
// category. The vendor is normalized before keying.
func (r *Resolver) SetVendorRule(vendor string, categoryID uuid.UUID) {
	r.rules[normalize.Vendor(vendor)] = categoryID
}

// Apply writes both resolution surfaces into the candidates' assigned
// category. Calling it any number of times yields the same assignments.
func (r *Resolver) Apply(candidates []Candidate) {
	for i := range candidates {
		c := &candidates[i]

		action, ok := r.actions[c.CSVCategory]
		if ok {
			switch action.Kind {
			case ActionMerge:
				c.Assigned = CategoryID(action.TargetID)
			case ActionCreate:
				c.Assigned = PendingCategory(c.CSVCategory)
			case ActionSkip:
				c.Assigned = CategoryRef{}
			}

			continue
		}

		if !c.Assigned.IsZero() {
			continue
		}

		if id, ok := r.rules[c.NormalizedVendor]; ok {
			c.Assigned = CategoryID(id)
		}
	}
}
