// Package ledgerapi serves read access to the ledger entities the import
// wizard's clients need: accounts to target, groups and categories to map
// onto, vendors, and committed transactions.
package ledgerapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dclay/budgie/internal/http/auth"
	"github.com/dclay/budgie/internal/ledger"
)

type Handler struct {
	service *ledger.Service
}

func NewHandler(service *ledger.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/accounts", h.accounts)
	r.Get("/groups", h.groups)
	r.Get("/categories", h.categories)
	r.Get("/vendors", h.vendors)
	r.Get("/transactions", h.transactions)
}

type accountResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type groupResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type vendorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type transactionResponse struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   uuid.UUID  `json:"account_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Amount      string     `json:"amount"`
	Date        string     `json:"date"`
	Vendor      string     `json:"vendor"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (h *Handler) accounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	accounts, err := h.service.Accounts(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list accounts", "error", err)
		http.Error(w, "failed to list accounts", http.StatusInternalServerError)

		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, accountResponse{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt})
	}

	writeJSON(w, resp)
}

func (h *Handler) groups(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	groups, err := h.service.Groups(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list groups", "error", err)
		http.Error(w, "failed to list groups", http.StatusInternalServerError)

		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, groupResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt})
	}

	writeJSON(w, resp)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	categories, err := h.service.Categories(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list categories", "error", err)
		http.Error(w, "failed to list categories", http.StatusInternalServerError)

		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, categoryResponse{ID: c.ID, GroupID: c.GroupID, Name: c.Name, CreatedAt: c.CreatedAt})
	}

	writeJSON(w, resp)
}

func (h *Handler) vendors(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	vendors, err := h.service.Vendors(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list vendors", "error", err)
		http.Error(w, "failed to list vendors", http.StatusInternalServerError)

		return
	}

	resp := make([]vendorResponse, 0, len(vendors))
	for _, v := range vendors {
		resp = append(resp, vendorResponse{ID: v.ID, Name: v.Name, CreatedAt: v.CreatedAt})
	}

	writeJSON(w, resp)
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var accountID *uuid.UUID

	if raw := r.URL.Query().Get("account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid account_id", http.StatusBadRequest)
			return
		}

		accountID = &id
	}

	txs, err := h.service.Transactions(r.Context(), userID, accountID)
	if err != nil {
		slog.Error("failed to list transactions", "error", err)
		http.Error(w, "failed to list transactions", http.StatusInternalServerError)

		return
	}

	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, transactionResponse{
			ID:          tx.ID,
			AccountID:   tx.AccountID,
			CategoryID:  tx.CategoryID,
			Amount:      tx.Amount.String(),
			Date:        tx.Date,
			Vendor:      tx.Vendor,
			Description: tx.Description,
			Type:        string(tx.Type),
			CreatedAt:   tx.CreatedAt,
		})
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
