package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dclay/budgie/internal/format"
	"github.com/dclay/budgie/internal/ledger"
	"github.com/dclay/budgie/internal/normalize"
	"github.com/dclay/budgie/internal/tokenizer"
)

// Stage is one step of the import wizard. Navigation moves strictly one step
// forward or back.
type Stage int

const (
	StageUpload Stage = iota
	StageMapping
	StageAccount
	StageCategories
	StageReview
)

func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "upload"
	case StageMapping:
		return "mapping"
	case StageAccount:
		return "account"
	case StageCategories:
		return "categories"
	case StageReview:
		return "review"
	}

	return "unknown"
}

// ErrCommitInFlight rejects navigation and resets while a commit is running.
var ErrCommitInFlight = errors.New("commit in progress")

// Wizard owns the whole import flow's state and is the only thing that
// mutates it. It is not safe for concurrent use; callers serialize operations
// (one in flight at a time), which is also all the commit guard assumes.
type Wizard struct {
	repo       ledger.Repository
	invalidate func()
	userID     uuid.UUID

	stage      Stage
	table      *tokenizer.Table
	detected   format.Result
	mapping    format.Mapping
	dateFormat normalize.DateFormat
	candidates []Candidate
	skips      []SkipRecord
	resolver   *Resolver

	accountID    uuid.UUID
	accountDraft string

	committing    bool
	progressDone  int
	progressTotal int
	commitErr     string
	onProgress    func(done, total int)
}

// NewWizard creates a wizard for one user's import flow. The invalidate hook
// is called after a successful commit so cached ledger reads can be refreshed;
// it may be nil.
func NewWizard(repo ledger.Repository, userID uuid.UUID, invalidate func()) *Wizard {
	return &Wizard{
		repo:       repo,
		invalidate: invalidate,
		userID:     userID,
		stage:      StageUpload,
		mapping:    format.NewMapping(),
		dateFormat: normalize.DateAuto,
		resolver:   NewResolver(),
	}
}

// LoadFile tokenizes an uploaded file and runs format detection. Re-selecting
// a file replaces all derived state wholesale.
func (w *Wizard) LoadFile(r io.Reader) error {
	if w.committing {
		return ErrCommitInFlight
	}

	table, err := tokenizer.Tokenize(r)
	if err != nil {
		return err
	}

	w.reset()
	w.table = table
	w.detected = format.Detect(table.Headers)
	w.mapping = w.detected.Mapping
	w.dateFormat = w.detectDateFormat()

	return nil
}

// detectDateFormat samples the mapped date column to pick one fixed format
// for the whole file.
func (w *Wizard) detectDateFormat() normalize.DateFormat {
	if w.mapping.Date < 0 {
		return normalize.DateAuto
	}

	samples := make([]string, 0, len(w.table.Rows))
	for _, row := range w.table.Rows {
		samples = append(samples, cell(row, w.mapping.Date))
	}

	return normalize.DetectDateFormat(samples)
}

// Next advances one stage, enforcing the per-stage readiness gate. Leaving
// the mapping stage builds the candidate set; entering review runs the
// duplicate check against the chosen account.
func (w *Wizard) Next(ctx context.Context) error {
	if w.committing {
		return ErrCommitInFlight
	}

	switch w.stage {
	case StageUpload:
		if w.table == nil || len(w.table.Rows) == 0 {
			return errors.New("no rows tokenized yet")
		}

	case StageMapping:
		if !w.mapping.Complete() {
			return errors.New("mapping incomplete: date, vendor, and an amount column (or inflow and outflow) are required")
		}

		w.rebuild()

	case StageAccount:
		if w.accountID == uuid.Nil && w.accountDraft == "" {
			return errors.New("choose an account or name a new one")
		}

	case StageCategories:
		if err := w.refreshDuplicates(ctx); err != nil {
			return err
		}

	case StageReview:
		return errors.New("already at review: committing is an explicit action, not a step")
	}

	w.stage++

	return nil
}

// Back moves one stage backward. Returning to upload does not clear state;
// only re-selecting a file or an explicit reset does.
func (w *Wizard) Back() error {
	if w.committing {
		return ErrCommitInFlight
	}

	if w.stage == StageUpload {
		return errors.New("already at the first stage")
	}

	w.stage--

	return nil
}

// Reset clears the whole flow back to the upload stage.
func (w *Wizard) Reset() error {
	if w.committing {
		return ErrCommitInFlight
	}

	w.reset()

	return nil
}

func (w *Wizard) reset() {
	w.stage = StageUpload
	w.table = nil
	w.detected = format.Result{}
	w.mapping = format.NewMapping()
	w.dateFormat = normalize.DateAuto
	w.candidates = nil
	w.skips = nil
	w.resolver = NewResolver()
	w.accountID = uuid.Nil
	w.accountDraft = ""
	w.progressDone = 0
	w.progressTotal = 0
	w.commitErr = ""
}

// rebuild regenerates candidates from the current mapping and re-applies the
// accumulated category decisions. Assignments survive a rebuild exactly when
// the underlying CSV category string is unchanged, because they are re-derived
// from the decisions rather than copied.
func (w *Wizard) rebuild() {
	w.candidates, w.skips = BuildCandidates(w.table, w.mapping, w.dateFormat)
	w.resolver.Apply(w.candidates)
}

// refreshDuplicates loads the chosen account's transaction keys and re-marks
// the candidate set. A drafted (not yet created) account has no history.
func (w *Wizard) refreshDuplicates(ctx context.Context) error {
	var existing []ledger.TransactionKey

	if w.accountID != uuid.Nil {
		keys, err := w.repo.ListTransactionKeys(ctx, w.accountID)
		if err != nil {
			return fmt.Errorf("load existing transactions: %w", err)
		}

		existing = keys
	}

	MarkDuplicates(w.candidates, existing)

	return nil
}

// SetMapping replaces the column mapping and rebuilds the candidate set.
func (w *Wizard) SetMapping(m format.Mapping) error {
	if w.committing {
		return ErrCommitInFlight
	}

	if w.table == nil {
		return errors.New("no file loaded")
	}

	w.mapping = m

	if w.stage > StageMapping {
		w.rebuild()
	}

	return nil
}

// SetDateFormat overrides the detected date format and rebuilds if candidates
// already exist.
func (w *Wizard) SetDateFormat(f normalize.DateFormat) {
	w.dateFormat = f

	if w.stage > StageMapping {
		w.rebuild()
	}
}

// SetAccount targets an existing account and clears any new-account draft.
func (w *Wizard) SetAccount(id uuid.UUID) {
	w.accountID = id
	w.accountDraft = ""
}

// SetAccountDraft names a new account to create at commit time.
func (w *Wizard) SetAccountDraft(name string) {
	w.accountDraft = name
	w.accountID = uuid.Nil
}

// SetCategoryAction records a decision for a CSV category and immediately
// re-applies all decisions to the candidates.
func (w *Wizard) SetCategoryAction(csvCategory string, action CategoryAction) {
	w.resolver.SetAction(csvCategory, action)
	w.resolver.Apply(w.candidates)
}

// SetVendorRule records a vendor rule and immediately re-applies decisions.
// Rules only fill candidates without an explicit category decision.
func (w *Wizard) SetVendorRule(vendor string, categoryID uuid.UUID) {
	w.resolver.SetVendorRule(vendor, categoryID)
	w.resolver.Apply(w.candidates)
}

// SetIncludeAnyway forces a flagged duplicate into (or back out of) the
// commit.
func (w *Wizard) SetIncludeAnyway(candidateIndex int, include bool) error {
	if candidateIndex < 0 || candidateIndex >= len(w.candidates) {
		return fmt.Errorf("candidate index %d out of range", candidateIndex)
	}

	w.candidates[candidateIndex].IncludeAnyway = include

	return nil
}

// SetProgressFunc registers a callback for commit progress updates.
func (w *Wizard) SetProgressFunc(fn func(done, total int)) {
	w.onProgress = fn
}

// CategoryAction returns the recorded decision for a CSV category, if any.
func (w *Wizard) CategoryAction(csvCategory string) (CategoryAction, bool) {
	return w.resolver.Action(csvCategory)
}

func (w *Wizard) UserID() uuid.UUID { return w.userID }

func (w *Wizard) Stage() Stage { return w.stage }

func (w *Wizard) Table() *tokenizer.Table { return w.table }

func (w *Wizard) Detected() format.Result { return w.detected }

func (w *Wizard) Mapping() format.Mapping { return w.mapping }

func (w *Wizard) DateFormat() normalize.DateFormat { return w.dateFormat }

func (w *Wizard) Candidates() []Candidate { return w.candidates }

func (w *Wizard) Skips() []SkipRecord { return w.skips }

func (w *Wizard) AccountID() uuid.UUID { return w.accountID }

func (w *Wizard) AccountDraft() string { return w.accountDraft }

func (w *Wizard) Committing() bool { return w.committing }

func (w *Wizard) CommitError() string { return w.commitErr }

// Progress reports the commit's batch progress as a monotonically increasing
// (done, total) pair of transaction counts.
func (w *Wizard) Progress() (done, total int) {
	return w.progressDone, w.progressTotal
}
