// Package importwizard exposes the import flow over HTTP. Each upload opens a
// session owning one wizard; every subsequent call addresses that session.
package importwizard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dclay/budgie/internal/format"
	"github.com/dclay/budgie/internal/http/auth"
	"github.com/dclay/budgie/internal/importer"
	"github.com/dclay/budgie/internal/ledger"
	"github.com/dclay/budgie/internal/normalize"
)

const sampleRowCount = 5

type Handler struct {
	repo           ledger.Repository
	invalidate     func()
	maxUploadBytes int64

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// session serializes operations on one wizard: one in flight at a time is the
// only concurrency discipline the wizard needs.
type session struct {
	mu     sync.Mutex
	id     uuid.UUID
	userID uuid.UUID
	wizard *importer.Wizard
}

func NewHandler(repo ledger.Repository, invalidate func(), maxUploadBytes int64) *Handler {
	return &Handler{
		repo:           repo,
		invalidate:     invalidate,
		maxUploadBytes: maxUploadBytes,
		sessions:       make(map[uuid.UUID]*session),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)

	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.state)
		r.Delete("/", h.remove)
		r.Post("/file", h.replaceFile)
		r.Patch("/mapping", h.updateMapping)
		r.Post("/next", h.next)
		r.Post("/back", h.back)
		r.Put("/account", h.setAccount)
		r.Put("/categories", h.setCategoryAction)
		r.Put("/vendor-rules", h.setVendorRule)
		r.Put("/candidates/{index}", h.setIncludeAnyway)
		r.Post("/commit", h.commit)
	})
}

type mappingDTO struct {
	Date        int `json:"date"`
	Vendor      int `json:"vendor"`
	Amount      int `json:"amount"`
	Inflow      int `json:"inflow"`
	Outflow     int `json:"outflow"`
	Description int `json:"description"`
	Category    int `json:"category"`
}

type skipDTO struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type candidateDTO struct {
	Index           int        `json:"index"`
	Date            string     `json:"date"`
	Vendor          string     `json:"vendor"`
	Amount          string     `json:"amount"`
	Description     string     `json:"description,omitempty"`
	CSVCategory     string     `json:"csv_category,omitempty"`
	StartingBalance bool       `json:"starting_balance"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	PendingCategory string     `json:"pending_category,omitempty"`
	Duplicate       bool       `json:"duplicate"`
	IncludeAnyway   bool       `json:"include_anyway"`
}

type stateResponse struct {
	SessionID     uuid.UUID      `json:"session_id"`
	Stage         string         `json:"stage"`
	Format        string         `json:"format,omitempty"`
	Confidence    float64        `json:"confidence"`
	DateFormat    string         `json:"date_format"`
	Headers       []string       `json:"headers,omitempty"`
	SampleRows    [][]string     `json:"sample_rows,omitempty"`
	Mapping       *mappingDTO    `json:"mapping,omitempty"`
	Candidates    []candidateDTO `json:"candidates,omitempty"`
	Skips         []skipDTO      `json:"skips,omitempty"`
	AccountID     *uuid.UUID     `json:"account_id,omitempty"`
	AccountDraft  string         `json:"account_draft,omitempty"`
	Committing    bool           `json:"committing"`
	ProgressDone  int            `json:"progress_done"`
	ProgressTotal int            `json:"progress_total"`
	CommitError   string         `json:"commit_error,omitempty"`
}

type commitResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Batches  int `json:"batches"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	wizard := importer.NewWizard(h.repo, userID, h.invalidate)

	if err := wizard.LoadFile(file); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s := &session{id: uuid.New(), userID: userID, wizard: wizard}

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, toState(s))
}

// session resolves the addressed session and checks it belongs to the caller.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil
	}

	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return nil
	}

	h.mu.Lock()
	s, found := h.sessions[id]
	h.mu.Unlock()

	if !found || s.userID != userID {
		http.Error(w, "import session not found", http.StatusNotFound)
		return nil
	}

	return s
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, toState(s))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wizard.Reset(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	h.mu.Lock()
	delete(h.sessions, s.id)
	h.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) replaceFile(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wizard.LoadFile(file); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, importer.ErrCommitInFlight) {
			status = http.StatusConflict
		}

		http.Error(w, err.Error(), status)

		return
	}

	writeJSON(w, http.StatusOK, toState(s))
}

type mappingRequest struct {
	Mapping    mappingDTO `json:"mapping"`
	DateFormat string     `json:"date_format,omitempty"`
}

func (h *Handler) updateMapping(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wizard.SetMapping(toMapping(req.Mapping)); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	if req.DateFormat != "" {
		s.wizard.SetDateFormat(normalize.DateFormat(req.DateFormat))
	}

	writeJSON(w, http.StatusOK, toState(s))
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wizard.Next(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, toState(s))
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wizard.Back(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, toState(s))
}

type accountRequest struct {
	AccountID *uuid.UUID `json:"account_id"`
	DraftName string     `json:"draft_name"`
}

func (h *Handler) setAccount(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case req.AccountID != nil:
		s.wizard.SetAccount(*req.AccountID)
	case req.DraftName != "":
		s.wizard.SetAccountDraft(req.DraftName)
	default:
		http.Error(w, "account_id or draft_name is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toState(s))
}

type categoryActionRequest struct {
	CSVCategory string     `json:"csv_category"`
	Action      string     `json:"action"` // merge | create | skip
	TargetID    *uuid.UUID `json:"target_id,omitempty"`
	Name        string     `json:"name,omitempty"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	GroupName   string     `json:"group_name,omitempty"`
}

func (h *Handler) setCategoryAction(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req categoryActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	action, err := toAction(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.wizard.SetCategoryAction(req.CSVCategory, action)

	writeJSON(w, http.StatusOK, toState(s))
}

func toAction(req categoryActionRequest) (importer.CategoryAction, error) {
	switch req.Action {
	case "merge":
		if req.TargetID == nil {
			return importer.CategoryAction{}, errors.New("merge requires target_id")
		}

		return importer.CategoryAction{Kind: importer.ActionMerge, TargetID: *req.TargetID}, nil

	case "create":
		name := req.Name
		if name == "" {
			name = req.CSVCategory
		}

		var group importer.GroupRef

		switch {
		case req.GroupID != nil:
			group = importer.GroupID(*req.GroupID)
		case req.GroupName != "":
			group = importer.PendingGroup(req.GroupName)
		default:
			return importer.CategoryAction{}, errors.New("create requires group_id or group_name")
		}

		return importer.CategoryAction{Kind: importer.ActionCreate, Name: name, Group: group}, nil

	case "skip":
		return importer.CategoryAction{Kind: importer.ActionSkip}, nil
	}

	return importer.CategoryAction{}, errors.New("action must be merge, create, or skip")
}

type vendorRuleRequest struct {
	Vendor     string    `json:"vendor"`
	CategoryID uuid.UUID `json:"category_id"`
}

func (h *Handler) setVendorRule(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req vendorRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Vendor == "" || req.CategoryID == uuid.Nil {
		http.Error(w, "vendor and category_id are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.wizard.SetVendorRule(req.Vendor, req.CategoryID)

	writeJSON(w, http.StatusOK, toState(s))
}

type includeRequest struct {
	IncludeAnyway bool `json:"include_anyway"`
}

func (h *Handler) setIncludeAnyway(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid candidate index", http.StatusBadRequest)
		return
	}

	var req includeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wizard.SetIncludeAnyway(index, req.IncludeAnyway); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toState(s))
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.wizard.Commit(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, importer.ErrCommitInFlight) {
			status = http.StatusConflict
		}

		http.Error(w, err.Error(), status)

		return
	}

	writeJSON(w, http.StatusOK, commitResponse{
		Inserted: result.Inserted,
		Skipped:  result.Skipped,
		Batches:  result.Batches,
	})
}

func toMapping(dto mappingDTO) format.Mapping {
	return format.Mapping{
		Date:        dto.Date,
		Vendor:      dto.Vendor,
		Amount:      dto.Amount,
		Inflow:      dto.Inflow,
		Outflow:     dto.Outflow,
		Description: dto.Description,
		Category:    dto.Category,
	}
}

func toMappingDTO(m format.Mapping) *mappingDTO {
	return &mappingDTO{
		Date:        m.Date,
		Vendor:      m.Vendor,
		Amount:      m.Amount,
		Inflow:      m.Inflow,
		Outflow:     m.Outflow,
		Description: m.Description,
		Category:    m.Category,
	}
}

func toState(s *session) stateResponse {
	wz := s.wizard

	resp := stateResponse{
		SessionID:    s.id,
		Stage:        wz.Stage().String(),
		DateFormat:   string(wz.DateFormat()),
		AccountDraft: wz.AccountDraft(),
		Committing:   wz.Committing(),
		CommitError:  wz.CommitError(),
	}

	resp.ProgressDone, resp.ProgressTotal = wz.Progress()

	if id := wz.AccountID(); id != uuid.Nil {
		resp.AccountID = &id
	}

	if table := wz.Table(); table != nil {
		resp.Headers = table.Headers
		resp.SampleRows = table.Rows[:min(sampleRowCount, len(table.Rows))]
		resp.Format = string(wz.Detected().Format)
		resp.Confidence = wz.Detected().Confidence
		resp.Mapping = toMappingDTO(wz.Mapping())
	}

	for _, skip := range wz.Skips() {
		resp.Skips = append(resp.Skips, skipDTO{Row: skip.Row, Reason: string(skip.Reason)})
	}

	for i, c := range wz.Candidates() {
		dto := candidateDTO{
			Index:           i,
			Date:            c.Date,
			Vendor:          c.Vendor,
			Amount:          c.Amount.String(),
			Description:     c.Description,
			CSVCategory:     c.CSVCategory,
			StartingBalance: c.StartingBalance,
			Duplicate:       c.Duplicate,
			IncludeAnyway:   c.IncludeAnyway,
		}

		if id, ok := c.Assigned.ID(); ok {
			dto.CategoryID = &id
		} else if name, ok := c.Assigned.Pending(); ok {
			dto.PendingCategory = name
		}

		resp.Candidates = append(resp.Candidates, dto)
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
