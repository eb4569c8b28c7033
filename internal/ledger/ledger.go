// Package ledger defines the domain entities the import pipeline reads and
// writes, and the narrow repository contract it needs from the persistent
// store.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// Type classifies a ledger transaction.
type Type string

const (
	TypeStarting Type = "starting"
	TypeIncome   Type = "income"
	TypePayment  Type = "payment"
)

// Account is a bank account transactions are imported into.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Group is a taxonomy bucket holding categories.
type Group struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Category is a taxonomy entry transactions are assigned to.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	GroupID   uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Vendor is a known counterparty name, registered as imports encounter it.
type Vendor struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Transaction is a committed ledger entry. Dates are canonical YYYY-MM-DD
// strings throughout the pipeline; amounts are signed, positive for inflows.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Amount      decimal.Decimal
	Date        string
	Vendor      string
	Description string
	Type        Type
	CreatedAt   time.Time
}

// TransactionKey is the projection of an existing transaction used by the
// duplicate check: exact date string, raw vendor, signed amount.
type TransactionKey struct {
	Date   string
	Vendor string
	Amount decimal.Decimal
}
