package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/domain/repository"
)

type ledgerRepository struct {
	storage *Storage
}

func (r *ledgerRepository) EnsureEntry(ctx context.Context, customerID string, businessID int64) (*model.LedgerEntry, error) {
	const query = `INSERT INTO ledger_entries (customer_id, business_id) VALUES ($1, $2)
                   ON CONFLICT (customer_id, business_id) DO NOTHING
                   RETURNING points, version, tier_name, updated_at`
	entry := model.LedgerEntry{CustomerID: customerID, BusinessID: businessID}
	err := r.storage.pool.QueryRow(ctx, query, customerID, businessID).
		Scan(&entry.Points, &entry.Version, &entry.TierName, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.GetEntry(ctx, customerID, businessID)
		}
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) GetEntry(ctx context.Context, customerID string, businessID int64) (*model.LedgerEntry, error) {
	const query = `SELECT points, version, tier_name, updated_at FROM ledger_entries WHERE customer_id=$1 AND business_id=$2`
	entry := model.LedgerEntry{CustomerID: customerID, BusinessID: businessID}
	err := r.storage.pool.QueryRow(ctx, query, customerID, businessID).
		Scan(&entry.Points, &entry.Version, &entry.TierName, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.LedgerEntry, error) {
	const query = `SELECT business_id, points, version, tier_name, updated_at
                   FROM ledger_entries WHERE customer_id=$1 ORDER BY business_id`
	rows, err := r.storage.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LedgerEntry
	for rows.Next() {
		entry := model.LedgerEntry{CustomerID: customerID}
		if err := rows.Scan(&entry.BusinessID, &entry.Points, &entry.Version, &entry.TierName, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Apply reads the entry, lets fn compute the change and writes it back only if
// the version is unchanged. A lost race surfaces as ErrConcurrentModification
// and the transaction is rolled back.
func (r *ledgerRepository) Apply(ctx context.Context, customerID string, businessID int64, amount decimal.Decimal, fn repository.MutationFunc) (*model.Transaction, *model.LedgerEntry, error) {
	const (
		selectEntry = `SELECT points, version, tier_name, updated_at FROM ledger_entries
                       WHERE customer_id=$1 AND business_id=$2`
		updateEntry = `UPDATE ledger_entries SET points=$1, version=version+1, updated_at=NOW()
                       WHERE customer_id=$2 AND business_id=$3 AND version=$4
                       RETURNING version, updated_at`
		insertTransaction = `INSERT INTO transactions (customer_id, business_id, amount, points_redeemed, points_accrued)
                             VALUES ($1, $2, $3::numeric, $4, $5)
                             RETURNING id, created_at`
	)

	entry := model.LedgerEntry{CustomerID: customerID, BusinessID: businessID}
	tx := model.Transaction{CustomerID: customerID, BusinessID: businessID, Amount: amount}
	err := r.storage.WithinTransaction(ctx, func(pgTx pgx.Tx) error {
		err := pgTx.QueryRow(ctx, selectEntry, customerID, businessID).
			Scan(&entry.Points, &entry.Version, &entry.TierName, &entry.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		mutation, err := fn(entry)
		if err != nil {
			return err
		}
		next := entry.Points - mutation.PointsRedeemed + mutation.PointsAccrued
		if next < 0 {
			return domainErrors.InsufficientBalanceError{Balance: entry.Points}
		}

		err = pgTx.QueryRow(ctx, updateEntry, next, customerID, businessID, entry.Version).
			Scan(&entry.Version, &entry.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrConcurrentModification
			}
			if pgErrorCode(err) == pgCheckViolation {
				return domainErrors.InsufficientBalanceError{Balance: entry.Points}
			}
			return err
		}
		entry.Points = next

		tx.PointsRedeemed = mutation.PointsRedeemed
		tx.PointsAccrued = mutation.PointsAccrued
		return pgTx.QueryRow(ctx, insertTransaction, customerID, businessID, amount.String(), tx.PointsRedeemed, tx.PointsAccrued).
			Scan(&tx.ID, &tx.CreatedAt)
	})
	if err != nil {
		return nil, nil, err
	}
	return &tx, &entry, nil
}

func (r *ledgerRepository) SetTier(ctx context.Context, customerID string, businessID int64, tierName string) error {
	const query = `UPDATE ledger_entries SET tier_name=$1 WHERE customer_id=$2 AND business_id=$3`
	tag, err := r.storage.pool.Exec(ctx, query, tierName, customerID, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *ledgerRepository) TotalSpent(ctx context.Context, customerID string, businessID int64) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(amount), 0)::text FROM transactions WHERE customer_id=$1 AND business_id=$2`
	var raw string
	if err := r.storage.pool.QueryRow(ctx, query, customerID, businessID).Scan(&raw); err != nil {
		return decimal.Zero, err
	}
	return parseDecimal(raw)
}
