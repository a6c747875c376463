package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// BusinessRepository manages enrolled merchants.
type BusinessRepository interface {
	Create(ctx context.Context, operatorID int64, name string, conversionRate decimal.Decimal) (*model.Business, error)
	GetByID(ctx context.Context, id int64) (*model.Business, error)
	ListByOperator(ctx context.Context, operatorID int64) ([]model.Business, error)
}
