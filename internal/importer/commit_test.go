package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dclay/budgie/internal/importer"
	"github.com/dclay/budgie/internal/ledger"
)

func TestCommit_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	userID := uuid.New()
	accountID := uuid.New()
	groceries := uuid.New()

	invalidated := false
	w := importer.NewWizard(repo, userID, func() { invalidated = true })

	// One starting-balance row, one duplicate of an existing entry, one new row.
	driveToReview(t, w, repo, accountID, []ledger.TransactionKey{
		{Date: "2024-01-05", Vendor: "Tesco", Amount: amount("-42.00")},
	})

	w.SetCategoryAction("Groceries", importer.CategoryAction{
		Kind:     importer.ActionMerge,
		TargetID: groceries,
	})

	var progress [][2]int

	w.SetProgressFunc(func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})

	var inserted []*ledger.Transaction

	repo.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*ledger.Transaction) error {
			inserted = txs
			return nil
		})

	repo.EXPECT().ListVendors(gomock.Any(), userID).Return(nil, nil)

	var vendors []*ledger.Vendor

	repo.EXPECT().
		CreateVendors(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, vs []*ledger.Vendor) error {
			vendors = vs
			return nil
		})

	result, err := w.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Batches)

	require.Len(t, inserted, 2)

	first, second := inserted[0], inserted[1]
	assert.Equal(t, ledger.TypeStarting, first.Type)
	assert.Equal(t, "Starting Balance", first.Vendor)
	assert.Equal(t, ledger.TypePayment, second.Type)
	assert.Equal(t, "Asda", second.Vendor)

	for _, tx := range inserted {
		require.NotNil(t, tx.CategoryID)
		assert.Equal(t, groceries, *tx.CategoryID)
		assert.Equal(t, accountID, tx.AccountID)
		assert.Equal(t, userID, tx.UserID)
	}

	assert.Equal(t, [2]int{2, 2}, progress[len(progress)-1])

	done, total := w.Progress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, total)

	// The starting-balance sentinel stays out of the vendor registry.
	require.Len(t, vendors, 1)
	assert.Equal(t, "Asda", vendors[0].Name)

	assert.True(t, invalidated)
	assert.Equal(t, importer.StageReview, w.Stage())
}

func TestCommit_PendingGroupDedup(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	userID := uuid.New()
	accountID := uuid.New()

	w := importer.NewWizard(repo, userID, nil)

	csv := `Date,Payee,Category,Memo,Outflow,Inflow
2024-01-05,Tesco,Groceries,,42.00,
2024-01-06,Shell,Fuel,,30.00,
`

	ctx := context.Background()
	require.NoError(t, w.LoadFile(strings.NewReader(csv)))
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.Next(ctx))
	w.SetAccount(accountID)
	require.NoError(t, w.Next(ctx))
	repo.EXPECT().ListTransactionKeys(gomock.Any(), accountID).Return(nil, nil)
	require.NoError(t, w.Next(ctx))

	w.SetCategoryAction("Groceries", importer.CategoryAction{
		Kind:  importer.ActionCreate,
		Name:  "Groceries",
		Group: importer.PendingGroup("Imported"),
	})
	w.SetCategoryAction("Fuel", importer.CategoryAction{
		Kind:  importer.ActionCreate,
		Name:  "Fuel",
		Group: importer.PendingGroup("imported"),
	})

	repo.EXPECT().ListGroups(gomock.Any(), userID).Return(nil, nil)

	var createdGroups []*ledger.Group

	repo.EXPECT().
		CreateGroup(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, g *ledger.Group) error {
			createdGroups = append(createdGroups, g)
			return nil
		})

	var createdCategories []*ledger.Category

	repo.EXPECT().
		CreateCategory(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(func(_ context.Context, c *ledger.Category) error {
			createdCategories = append(createdCategories, c)
			return nil
		})

	var inserted []*ledger.Transaction

	repo.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*ledger.Transaction) error {
			inserted = txs
			return nil
		})

	repo.EXPECT().ListVendors(gomock.Any(), userID).Return(nil, nil)
	repo.EXPECT().CreateVendors(gomock.Any(), gomock.Any()).Return(nil)

	result, err := w.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)

	// Both pending "Imported" references resolved to a single created group.
	require.Len(t, createdGroups, 1)
	require.Len(t, createdCategories, 2)

	for _, c := range createdCategories {
		assert.Equal(t, createdGroups[0].ID, c.GroupID)
	}

	byName := make(map[string]uuid.UUID, 2)
	for _, c := range createdCategories {
		byName[c.Name] = c.ID
	}

	require.Len(t, inserted, 2)

	for _, tx := range inserted {
		require.NotNil(t, tx.CategoryID)
	}

	assert.Equal(t, byName["Groceries"], *inserted[0].CategoryID)
	assert.Equal(t, byName["Fuel"], *inserted[1].CategoryID)
}

func TestCommit_ReusesExistingGroupCaseInsensitive(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	userID := uuid.New()
	accountID := uuid.New()
	existingGroup := ledger.Group{ID: uuid.New(), UserID: userID, Name: "imported"}

	w := importer.NewWizard(repo, userID, nil)
	driveToReview(t, w, repo, accountID, nil)

	w.SetCategoryAction("Groceries", importer.CategoryAction{
		Kind:  importer.ActionCreate,
		Name:  "Groceries",
		Group: importer.PendingGroup("Imported"),
	})

	repo.EXPECT().ListGroups(gomock.Any(), userID).Return([]ledger.Group{existingGroup}, nil)

	var created *ledger.Category

	repo.EXPECT().
		CreateCategory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *ledger.Category) error {
			created = c
			return nil
		})

	repo.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().ListVendors(gomock.Any(), userID).Return(nil, nil)
	repo.EXPECT().CreateVendors(gomock.Any(), gomock.Any()).Return(nil)

	_, err := w.Commit(context.Background())
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, existingGroup.ID, created.GroupID)
}

func TestCommit_CreatesDraftedAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	userID := uuid.New()
	w := importer.NewWizard(repo, userID, nil)

	ctx := context.Background()
	require.NoError(t, w.LoadFile(strings.NewReader(ynabCSV)))
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.Next(ctx))
	w.SetAccountDraft("Current Account")
	require.NoError(t, w.Next(ctx))
	// A drafted account has no history, so no duplicate query happens.
	require.NoError(t, w.Next(ctx))

	var account *ledger.Account

	repo.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *ledger.Account) error {
			account = a
			return nil
		})

	var inserted []*ledger.Transaction

	repo.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*ledger.Transaction) error {
			inserted = txs
			return nil
		})

	repo.EXPECT().ListVendors(gomock.Any(), userID).Return(nil, nil)
	repo.EXPECT().CreateVendors(gomock.Any(), gomock.Any()).Return(nil)

	result, err := w.Commit(ctx)
	require.NoError(t, err)

	require.NotNil(t, account)
	assert.Equal(t, "Current Account", account.Name)
	assert.Equal(t, 3, result.Inserted)

	for _, tx := range inserted {
		assert.Equal(t, account.ID, tx.AccountID)
	}

	assert.Equal(t, account.ID, w.AccountID())
	assert.Empty(t, w.AccountDraft())
}

func TestCommit_BatchFailureLeavesPartialState(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	w := importer.NewWizard(repo, uuid.New(), nil)
	driveToReview(t, w, repo, uuid.New(), nil)

	repo.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		Return(errors.New("connection reset"))

	_, err := w.Commit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert batch 1")

	assert.Equal(t, importer.StageReview, w.Stage())
	assert.NotEmpty(t, w.CommitError())

	done, total := w.Progress()
	assert.Equal(t, 0, done)
	assert.Equal(t, 3, total)
}

func TestCommit_RejectedOutsideReview(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	w := importer.NewWizard(repo, uuid.New(), nil)

	_, err := w.Commit(context.Background())
	assert.Error(t, err)
}
