package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// MutationFunc computes the balance change for the entry read inside the commit.
// Returning an error aborts the commit without touching the ledger.
type MutationFunc func(entry model.LedgerEntry) (model.Mutation, error)

// LedgerRepository owns per-(customer, business) balances.
type LedgerRepository interface {
	// EnsureEntry returns the entry for the pair, creating it with zero points if absent.
	EnsureEntry(ctx context.Context, customerID string, businessID int64) (*model.LedgerEntry, error)
	GetEntry(ctx context.Context, customerID string, businessID int64) (*model.LedgerEntry, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.LedgerEntry, error)
	// Apply atomically reads the entry, applies the computed mutation guarded by the
	// entry version and appends the transaction record.
	Apply(ctx context.Context, customerID string, businessID int64, amount decimal.Decimal, fn MutationFunc) (*model.Transaction, *model.LedgerEntry, error)
	SetTier(ctx context.Context, customerID string, businessID int64, tierName string) error
	TotalSpent(ctx context.Context, customerID string, businessID int64) (decimal.Decimal, error)
}
