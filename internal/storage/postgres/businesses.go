package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

type businessRepository struct {
	storage *Storage
}

func (r *businessRepository) Create(ctx context.Context, operatorID int64, name string, conversionRate decimal.Decimal) (*model.Business, error) {
	const query = `INSERT INTO businesses (name, conversion_rate, operator_id) VALUES ($1, $2::numeric, $3) RETURNING id, created_at`
	b := model.Business{Name: name, ConversionRate: conversionRate, OperatorID: operatorID}
	err := r.storage.pool.QueryRow(ctx, query, name, conversionRate.String(), operatorID).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case pgForeignKeyViolation:
			return nil, domainErrors.ErrNotFound
		case pgCheckViolation:
			return nil, domainErrors.ErrInvalidConversionRate
		}
		return nil, err
	}
	return &b, nil
}

func (r *businessRepository) GetByID(ctx context.Context, id int64) (*model.Business, error) {
	const query = `SELECT id, name, conversion_rate::text, operator_id, created_at FROM businesses WHERE id=$1`
	b, err := scanBusiness(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *businessRepository) ListByOperator(ctx context.Context, operatorID int64) ([]model.Business, error) {
	const query = `SELECT id, name, conversion_rate::text, operator_id, created_at
                   FROM businesses WHERE operator_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, operatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanBusiness(row pgx.Row) (*model.Business, error) {
	var (
		b    model.Business
		rate string
	)
	if err := row.Scan(&b.ID, &b.Name, &rate, &b.OperatorID, &b.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := parseDecimal(rate)
	if err != nil {
		return nil, err
	}
	b.ConversionRate = parsed
	return &b, nil
}
