package ledger

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]Account, error)
	CreateAccount(ctx context.Context, account *Account) error

	ListGroups(ctx context.Context, userID uuid.UUID) ([]Group, error)
	CreateGroup(ctx context.Context, group *Group) error

	ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error)
	CreateCategory(ctx context.Context, category *Category) error

	ListVendors(ctx context.Context, userID uuid.UUID) ([]Vendor, error)
	CreateVendors(ctx context.Context, vendors []*Vendor) error

	ListTransactions(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]*Transaction, error)
	ListTransactionKeys(ctx context.Context, accountID uuid.UUID) ([]TransactionKey, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
}

// Service wraps the repository for the read surfaces the HTTP and TUI layers
// need. The import pipeline talks to the Repository directly.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Accounts(ctx context.Context, userID uuid.UUID) ([]Account, error) {
	return s.repo.ListAccounts(ctx, userID)
}

func (s *Service) Groups(ctx context.Context, userID uuid.UUID) ([]Group, error) {
	return s.repo.ListGroups(ctx, userID)
}

func (s *Service) Categories(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	return s.repo.ListCategories(ctx, userID)
}

func (s *Service) Vendors(ctx context.Context, userID uuid.UUID) ([]Vendor, error) {
	return s.repo.ListVendors(ctx, userID)
}

func (s *Service) Transactions(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, accountID)
}
