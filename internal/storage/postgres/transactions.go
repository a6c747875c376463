package postgres

import (
	"context"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

type transactionRepository struct {
	storage *Storage
}

// ListByPair returns the newest transactions first. A non-positive limit returns all.
func (r *transactionRepository) ListByPair(ctx context.Context, customerID string, businessID int64, limit int) ([]model.Transaction, error) {
	const query = `SELECT id, amount::text, points_redeemed, points_accrued, created_at
                   FROM transactions WHERE customer_id=$1 AND business_id=$2
                   ORDER BY created_at DESC, id DESC
                   LIMIT NULLIF($3, 0)`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.storage.pool.Query(ctx, query, customerID, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Transaction
	for rows.Next() {
		tx := model.Transaction{CustomerID: customerID, BusinessID: businessID}
		var amount string
		if err := rows.Scan(&tx.ID, &amount, &tx.PointsRedeemed, &tx.PointsAccrued, &tx.CreatedAt); err != nil {
			return nil, err
		}
		if tx.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
