package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	budgieHttp "github.com/dclay/budgie/internal/http"
	"github.com/dclay/budgie/internal/http/importwizard"
	"github.com/dclay/budgie/internal/http/ledgerapi"
	"github.com/dclay/budgie/internal/ledger"
)

const testSecret = "test-secret"

const ynabCSV = `Date,Payee,Category,Memo,Outflow,Inflow
2024-01-01,Starting Balance,Groceries,,,500.00
2024-01-05,Tesco,Groceries,weekly shop,42.00,
2024-01-06,Asda,Groceries,,10.00,
`

func newTestServer(t *testing.T) (*httptest.Server, *ledger.MockRepository, uuid.UUID) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)
	userID := uuid.New()

	importsH := importwizard.NewHandler(repo, nil, 1<<20)
	ledgerH := ledgerapi.NewHandler(ledger.NewService(repo))

	router := budgieHttp.New(testSecret, []string{"*"}, importsH, ledgerH)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, repo, userID
}

func bearerToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	return token
}

func doJSON(t *testing.T, srv *httptest.Server, token, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

func uploadFile(t *testing.T, srv *httptest.Server, token, csv string) *http.Response {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "export.csv")
	require.NoError(t, err)

	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/imports", &buf)
	require.NoError(t, err)

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

func decodeState(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()

	var state map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))

	return state
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/accounts")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RejectsForeignSession(t *testing.T) {
	srv, _, userID := newTestServer(t)
	token := bearerToken(t, userID)

	resp := uploadFile(t, srv, token, ynabCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	state := decodeState(t, resp)
	sessionID := state["session_id"].(string)

	otherToken := bearerToken(t, uuid.New())

	other := doJSON(t, srv, otherToken, http.MethodGet, "/api/v1/imports/"+sessionID, nil)
	defer other.Body.Close()

	assert.Equal(t, http.StatusNotFound, other.StatusCode)
}

func TestRouter_ImportFlow(t *testing.T) {
	srv, repo, userID := newTestServer(t)
	token := bearerToken(t, userID)

	resp := uploadFile(t, srv, token, ynabCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	state := decodeState(t, resp)
	assert.Equal(t, "upload", state["stage"])
	assert.Equal(t, "ynab", state["format"])
	require.NotEmpty(t, state["session_id"])

	base := "/api/v1/imports/" + state["session_id"].(string)

	// upload -> mapping -> account
	state = decodeState(t, doJSON(t, srv, token, http.MethodPost, base+"/next", nil))
	assert.Equal(t, "mapping", state["stage"])

	state = decodeState(t, doJSON(t, srv, token, http.MethodPost, base+"/next", nil))
	assert.Equal(t, "account", state["stage"])
	assert.Len(t, state["candidates"], 3)

	// the account gate rejects advancing before an account is chosen
	blocked := doJSON(t, srv, token, http.MethodPost, base+"/next", nil)
	blocked.Body.Close()
	assert.Equal(t, http.StatusConflict, blocked.StatusCode)

	state = decodeState(t, doJSON(t, srv, token, http.MethodPut, base+"/account", map[string]any{
		"draft_name": "Current Account",
	}))
	assert.Equal(t, "Current Account", state["account_draft"])

	state = decodeState(t, doJSON(t, srv, token, http.MethodPost, base+"/next", nil))
	assert.Equal(t, "categories", state["stage"])

	state = decodeState(t, doJSON(t, srv, token, http.MethodPut, base+"/categories", map[string]any{
		"csv_category": "Groceries",
		"action":       "skip",
	}))
	assert.Equal(t, "categories", state["stage"])

	// a drafted account has no history, so no duplicate lookup happens
	state = decodeState(t, doJSON(t, srv, token, http.MethodPost, base+"/next", nil))
	assert.Equal(t, "review", state["stage"])

	repo.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, account *ledger.Account) error {
			assert.Equal(t, "Current Account", account.Name)
			assert.Equal(t, userID, account.UserID)

			return nil
		})

	var inserted []*ledger.Transaction

	repo.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, txs []*ledger.Transaction) error {
			inserted = txs
			return nil
		})

	repo.EXPECT().ListVendors(gomock.Any(), userID).Return(nil, nil)
	repo.EXPECT().
		CreateVendors(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, vendors []*ledger.Vendor) error {
			assert.Len(t, vendors, 2) // Tesco and Asda; the sentinel stays out
			return nil
		})

	commit := doJSON(t, srv, token, http.MethodPost, base+"/commit", nil)
	defer commit.Body.Close()
	require.Equal(t, http.StatusOK, commit.StatusCode)

	var result struct {
		Inserted int `json:"inserted"`
		Skipped  int `json:"skipped"`
		Batches  int `json:"batches"`
	}
	require.NoError(t, json.NewDecoder(commit.Body).Decode(&result))

	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, result.Batches)
	require.Len(t, inserted, 3)
	assert.Equal(t, ledger.TypeStarting, inserted[0].Type)
}

func TestRouter_LedgerReads(t *testing.T) {
	srv, repo, userID := newTestServer(t)
	token := bearerToken(t, userID)

	accountID := uuid.New()

	repo.EXPECT().ListAccounts(gomock.Any(), userID).Return([]ledger.Account{
		{ID: accountID, UserID: userID, Name: "Current Account"},
	}, nil)

	resp := doJSON(t, srv, token, http.MethodGet, "/api/v1/accounts", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var accounts []struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accounts))

	require.Len(t, accounts, 1)
	assert.Equal(t, accountID, accounts[0].ID)
	assert.Equal(t, "Current Account", accounts[0].Name)
}
