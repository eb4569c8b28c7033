package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dclay/budgie/internal/ledger"
	"github.com/dclay/budgie/internal/normalize"
)

// commitBatchSize is how many transactions go into one insert call. Batches
// are strictly sequential: progress reporting and the partial-failure
// semantics both assume only a contiguous prefix has been written.
const commitBatchSize = 50

// startingBalanceLabel is the vendor sentinel that never enters the vendor
// registry.
const startingBalanceLabel = "Starting Balance"

// CommitResult reports what a successful commit wrote. Batches is the
// watermark of fully-written batches, useful when an earlier attempt failed
// partway.
type CommitResult struct {
	Inserted int
	Skipped  int
	Batches  int
}

// Commit runs the dependency-ordered write sequence: new account first, then
// groups and categories for every Create action (at most one group per
// distinct pending name), then the surviving candidates in fixed-size
// sequential batches, and finally a best-effort vendor registry sync. Any
// fatal error aborts the remaining stages; batches already written are not
// rolled back. The wizard stays on the review stage either way so partial
// progress can be inspected and the commit retried.
func (w *Wizard) Commit(ctx context.Context) (*CommitResult, error) {
	if w.committing {
		return nil, ErrCommitInFlight
	}

	if w.stage != StageReview {
		return nil, errors.New("commit is only available from the review stage")
	}

	w.committing = true
	defer func() { w.committing = false }()

	w.commitErr = ""

	result, err := w.commit(ctx)
	if err != nil {
		w.commitErr = err.Error()
		return nil, err
	}

	if w.invalidate != nil {
		w.invalidate()
	}

	return result, nil
}

func (w *Wizard) commit(ctx context.Context) (*CommitResult, error) {
	accountID, err := w.ensureAccount(ctx)
	if err != nil {
		return nil, err
	}

	pendingCategories, err := w.createCategories(ctx)
	if err != nil {
		return nil, err
	}

	txs, skipped := w.insertableTransactions(accountID, pendingCategories)

	w.progressDone = 0
	w.progressTotal = len(txs)

	batches := 0

	for start := 0; start < len(txs); start += commitBatchSize {
		end := min(start+commitBatchSize, len(txs))

		if err := w.repo.CreateTransactions(ctx, txs[start:end]); err != nil {
			return nil, fmt.Errorf("insert batch %d: %w", batches+1, err)
		}

		batches++
		w.progressDone = end

		if w.onProgress != nil {
			w.onProgress(end, len(txs))
		}
	}

	w.syncVendors(ctx, txs)

	return &CommitResult{Inserted: len(txs), Skipped: skipped, Batches: batches}, nil
}

// ensureAccount creates the drafted account if there is one. The created id
// replaces the draft so a retry after a later failure does not create a
// second account.
func (w *Wizard) ensureAccount(ctx context.Context) (uuid.UUID, error) {
	if w.accountDraft == "" {
		return w.accountID, nil
	}

	account := &ledger.Account{ID: uuid.New(), UserID: w.userID, Name: w.accountDraft}

	if err := w.repo.CreateAccount(ctx, account); err != nil {
		return uuid.Nil, fmt.Errorf("create account %q: %w", w.accountDraft, err)
	}

	w.accountID = account.ID
	w.accountDraft = ""

	return account.ID, nil
}

// createCategories materializes every Create action, resolving pending group
// references against known groups plus groups created earlier in this same
// commit (case-insensitive), so one pending name yields exactly one group.
// Returns the mapping from pending CSV category name to created category id.
func (w *Wizard) createCategories(ctx context.Context) (map[string]uuid.UUID, error) {
	var creates []string

	for csvName, action := range w.resolver.Actions() {
		if action.Kind == ActionCreate {
			creates = append(creates, csvName)
		}
	}

	if len(creates) == 0 {
		return nil, nil
	}

	sort.Strings(creates)

	groups, err := w.repo.ListGroups(ctx, w.userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	knownGroups := make(map[string]uuid.UUID, len(groups))
	for _, g := range groups {
		knownGroups[strings.ToLower(g.Name)] = g.ID
	}

	created := make(map[string]uuid.UUID, len(creates))

	for _, csvName := range creates {
		action, _ := w.resolver.Action(csvName)

		groupID, err := w.ensureGroup(ctx, action.Group, knownGroups)
		if err != nil {
			return nil, err
		}

		category := &ledger.Category{
			ID:      uuid.New(),
			UserID:  w.userID,
			GroupID: groupID,
			Name:    action.Name,
		}

		if err := w.repo.CreateCategory(ctx, category); err != nil {
			return nil, fmt.Errorf("create category %q: %w", action.Name, err)
		}

		created[csvName] = category.ID
	}

	return created, nil
}

func (w *Wizard) ensureGroup(ctx context.Context, ref GroupRef, known map[string]uuid.UUID) (uuid.UUID, error) {
	if id, ok := ref.ID(); ok {
		return id, nil
	}

	name, ok := ref.Pending()
	if !ok {
		return uuid.Nil, errors.New("create action has no group reference")
	}

	if id, ok := known[strings.ToLower(name)]; ok {
		return id, nil
	}

	group := &ledger.Group{ID: uuid.New(), UserID: w.userID, Name: name}

	if err := w.repo.CreateGroup(ctx, group); err != nil {
		return uuid.Nil, fmt.Errorf("create group %q: %w", name, err)
	}

	known[strings.ToLower(name)] = group.ID

	return group.ID, nil
}

// insertableTransactions builds the final insert list: flagged duplicates are
// excluded unless overridden, pending category references are resolved
// through the just-created categories, and each transaction gets its ledger
// type.
func (w *Wizard) insertableTransactions(accountID uuid.UUID, pendingCategories map[string]uuid.UUID) ([]*ledger.Transaction, int) {
	var (
		txs     []*ledger.Transaction
		skipped int
	)

	for i := range w.candidates {
		c := &w.candidates[i]

		if c.Duplicate && !c.IncludeAnyway {
			skipped++
			continue
		}

		var categoryID *uuid.UUID

		if id, ok := c.Assigned.ID(); ok {
			categoryID = &id
		} else if name, ok := c.Assigned.Pending(); ok {
			if id, ok := pendingCategories[name]; ok {
				categoryID = &id
			}
		}

		txType := ledger.TypePayment

		switch {
		case c.StartingBalance:
			txType = ledger.TypeStarting
		case c.Amount.IsPositive():
			txType = ledger.TypeIncome
		}

		txs = append(txs, &ledger.Transaction{
			ID:          uuid.New(),
			UserID:      w.userID,
			AccountID:   accountID,
			CategoryID:  categoryID,
			Amount:      c.Amount,
			Date:        c.Date,
			Vendor:      c.Vendor,
			Description: c.Description,
			Type:        txType,
		})
	}

	return txs, skipped
}

// syncVendors registers vendor names seen in the inserted set that the ledger
// does not know yet. Best effort: failures are logged, never fatal, and do
// not distinguish themselves from the overall commit outcome.
func (w *Wizard) syncVendors(ctx context.Context, txs []*ledger.Transaction) {
	existing, err := w.repo.ListVendors(ctx, w.userID)
	if err != nil {
		slog.Warn("vendor sync skipped", "error", err)
		return
	}

	known := make(map[string]bool, len(existing))
	for _, v := range existing {
		known[normalize.Vendor(v.Name)] = true
	}

	var missing []*ledger.Vendor

	for _, tx := range txs {
		if tx.Vendor == startingBalanceLabel {
			continue
		}

		key := normalize.Vendor(tx.Vendor)
		if key == "" || known[key] {
			continue
		}

		known[key] = true

		missing = append(missing, &ledger.Vendor{ID: uuid.New(), UserID: w.userID, Name: tx.Vendor})
	}

	for start := 0; start < len(missing); start += commitBatchSize {
		end := min(start+commitBatchSize, len(missing))

		if err := w.repo.CreateVendors(ctx, missing[start:end]); err != nil {
			slog.Warn("vendor sync batch failed", "error", err)
		}
	}
}
