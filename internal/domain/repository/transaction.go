package repository

import (
	"context"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// TransactionRepository provides access to the purchase log.
type TransactionRepository interface {
	ListByPair(ctx context.Context, customerID string, businessID int64, limit int) ([]model.Transaction, error)
}
