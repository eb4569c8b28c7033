// Package importer implements the import pipeline: building candidate
// transactions from tokenized rows, duplicate detection against the ledger,
// category resolution, the wizard state machine that sequences the stages, and
// the transactional commit.
package importer

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRef points at a category that either already exists or will be
// created at commit time. The zero value means no category is assigned.
type CategoryRef struct {
	id      uuid.UUID
	pending string
}

// CategoryID references an existing persisted category.
func CategoryID(id uuid.UUID) CategoryRef {
	return CategoryRef{id: id}
}

// PendingCategory references a category that a Create action will materialize
// at commit time, keyed by the raw CSV category name.
func PendingCategory(name string) CategoryRef {
	return CategoryRef{pending: name}
}

func (r CategoryRef) IsZero() bool {
	return r.id == uuid.Nil && r.pending == ""
}

// ID returns the persisted category id, if this is a resolved reference.
func (r CategoryRef) ID() (uuid.UUID, bool) {
	return r.id, r.id != uuid.Nil
}

// Pending returns the CSV category name awaiting creation, if any.
func (r CategoryRef) Pending() (string, bool) {
	return r.pending, r.id == uuid.Nil && r.pending != ""
}

// GroupRef points at a group that either exists or will be created at commit
// time, with the same shape as CategoryRef.
type GroupRef struct {
	id      uuid.UUID
	pending string
}

func GroupID(id uuid.UUID) GroupRef {
	return GroupRef{id: id}
}

func PendingGroup(name string) GroupRef {
	return GroupRef{pending: name}
}

func (r GroupRef) ID() (uuid.UUID, bool) {
	return r.id, r.id != uuid.Nil
}

func (r GroupRef) Pending() (string, bool) {
	return r.pending, r.id == uuid.Nil && r.pending != ""
}

// Candidate is a parsed-but-not-yet-committed transaction. It is immutable
// once built except for the categorization and duplicate-review fields.
type Candidate struct {
	SourceRow        int
	Date             string // canonical YYYY-MM-DD
	Vendor           string // original string, kept for storage and display
	NormalizedVendor string // matching key only
	Amount           decimal.Decimal
	Description      string
	CSVCategory      string
	StartingBalance  bool

	Assigned      CategoryRef
	Duplicate     bool
	IncludeAnyway bool
}

// SkipReason explains why a row produced no candidate.
type SkipReason string

const (
	SkipBadDate     SkipReason = "unparseable date"
	SkipEmptyVendor SkipReason = "empty vendor"
	SkipBadAmount   SkipReason = "unparseable amount"
)

// SkipRecord ties a dropped row back to its position in the uploaded file.
type SkipRecord struct {
	Row    int
	Reason SkipReason
}
