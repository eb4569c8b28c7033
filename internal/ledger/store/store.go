// Package store is the Postgres implementation of the ledger repository
// contract.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dclay/budgie/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) ListAccounts(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account

	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

func (s *Store) CreateAccount(ctx context.Context, account *ledger.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, name, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query, account.ID, account.UserID, account.Name).
		Scan(&account.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) ListGroups(ctx context.Context, userID uuid.UUID) ([]ledger.Group, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM category_groups
		WHERE user_id = $1
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []ledger.Group

	for rows.Next() {
		var g ledger.Group
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}

		groups = append(groups, g)
	}

	return groups, rows.Err()
}

func (s *Store) CreateGroup(ctx context.Context, group *ledger.Group) error {
	query := `
		INSERT INTO category_groups (id, user_id, name, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query, group.ID, group.UserID, group.Name).
		Scan(&group.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating group: %w", err)
	}

	return nil
}

func (s *Store) ListCategories(ctx context.Context, userID uuid.UUID) ([]ledger.Category, error) {
	query := `
		SELECT id, user_id, group_id, name, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []ledger.Category

	for rows.Next() {
		var c ledger.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.GroupID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, category *ledger.Category) error {
	query := `
		INSERT INTO categories (id, user_id, group_id, name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query, category.ID, category.UserID, category.GroupID, category.Name).
		Scan(&category.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) ListVendors(ctx context.Context, userID uuid.UUID) ([]ledger.Vendor, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM vendors
		WHERE user_id = $1
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}
	defer rows.Close()

	var vendors []ledger.Vendor

	for rows.Next() {
		var v ledger.Vendor
		if err := rows.Scan(&v.ID, &v.UserID, &v.Name, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning vendor: %w", err)
		}

		vendors = append(vendors, v)
	}

	return vendors, rows.Err()
}

func (s *Store) CreateVendors(ctx context.Context, vendors []*ledger.Vendor) error {
	if len(vendors) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin vendor insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO vendors (id, user_id, name, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, name) DO NOTHING
	`

	for _, v := range vendors {
		if _, err := tx.ExecContext(ctx, query, v.ID, v.UserID, v.Name); err != nil {
			return fmt.Errorf("creating vendor %q: %w", v.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit vendor insert: %w", err)
	}

	return nil
}

const selectTransactionColumns = `
	t.id, t.user_id, t.account_id, t.category_id, t.amount,
	to_char(t.date, 'YYYY-MM-DD'), t.vendor, t.description, t.type, t.created_at
`

func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var (
		categoryID  *uuid.UUID
		description sql.NullString
		typeStr     string
	)

	if err := s.Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &categoryID, &tx.Amount,
		&tx.Date, &tx.Vendor, &description, &typeStr, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.CategoryID = categoryID
	tx.Description = description.String
	tx.Type = ledger.Type(typeStr)

	return &tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.user_id = $1`

	args := []any{userID}

	if accountID != nil {
		query += ` AND t.account_id = $2`
		args = append(args, *accountID)
	}

	query += ` ORDER BY t.date DESC, t.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

func (s *Store) ListTransactionKeys(ctx context.Context, accountID uuid.UUID) ([]ledger.TransactionKey, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM-DD'), vendor, amount
		FROM transactions
		WHERE account_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing transaction keys: %w", err)
	}
	defer rows.Close()

	var keys []ledger.TransactionKey

	for rows.Next() {
		var k ledger.TransactionKey
		if err := rows.Scan(&k.Date, &k.Vendor, &k.Amount); err != nil {
			return nil, fmt.Errorf("scanning transaction key: %w", err)
		}

		keys = append(keys, k)
	}

	return keys, rows.Err()
}

func (s *Store) CreateTransactions(ctx context.Context, txs []*ledger.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	// One batch is one database transaction: either the whole batch lands or
	// none of it does, which keeps the committed prefix contiguous.
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction insert: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO transactions (id, user_id, account_id, category_id, amount, date, vendor, description, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, NOW())
	`

	for _, t := range txs {
		_, err := dbTx.ExecContext(ctx, query,
			t.ID, t.UserID, t.AccountID, t.CategoryID, t.Amount, t.Date, t.Vendor, t.Description, t.Type,
		)
		if err != nil {
			return fmt.Errorf("inserting transaction for %q on %s: %w", t.Vendor, t.Date, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction insert: %w", err)
	}

	return nil
}
