package repository

import (
	"context"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// TierRepository stores business defined reward tiers.
type TierRepository interface {
	ListByBusiness(ctx context.Context, businessID int64) ([]model.RewardTier, error)
	Replace(ctx context.Context, businessID int64, tiers []model.RewardTier) error
}
