package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

type tierRepository struct {
	storage *Storage
}

func (r *tierRepository) ListByBusiness(ctx context.Context, businessID int64) ([]model.RewardTier, error) {
	const query = `SELECT id, name, min_threshold::text, cashback_percent::text
                   FROM reward_tiers WHERE business_id=$1 ORDER BY min_threshold`
	rows, err := r.storage.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.RewardTier
	for rows.Next() {
		tier := model.RewardTier{BusinessID: businessID}
		var threshold, cashback string
		if err := rows.Scan(&tier.ID, &tier.Name, &threshold, &cashback); err != nil {
			return nil, err
		}
		if tier.MinThreshold, err = parseDecimal(threshold); err != nil {
			return nil, err
		}
		if tier.CashbackPercent, err = parseDecimal(cashback); err != nil {
			return nil, err
		}
		result = append(result, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Replace swaps the whole tier table of a business in one transaction.
func (r *tierRepository) Replace(ctx context.Context, businessID int64, tiers []model.RewardTier) error {
	const (
		deleteTiers = `DELETE FROM reward_tiers WHERE business_id=$1`
		insertTier  = `INSERT INTO reward_tiers (business_id, name, min_threshold, cashback_percent)
                       VALUES ($1, $2, $3::numeric, $4::numeric)`
	)
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteTiers, businessID); err != nil {
			return err
		}
		for _, tier := range tiers {
			if _, err := tx.Exec(ctx, insertTier, businessID, tier.Name, tier.MinThreshold.String(), tier.CashbackPercent.String()); err != nil {
				return err
			}
		}
		return nil
	})
}
