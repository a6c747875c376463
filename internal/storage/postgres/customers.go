package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

type customerRepository struct {
	storage *Storage
}

func (r *customerRepository) Upsert(ctx context.Context, customer model.Customer) (*model.Customer, error) {
	const query = `INSERT INTO customers (id, display_name, handle) VALUES ($1, $2, $3)
                   ON CONFLICT (id) DO UPDATE
                   SET display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), customers.display_name),
                       handle = COALESCE(NULLIF(EXCLUDED.handle, ''), customers.handle)
                   RETURNING id, display_name, handle, created_at`
	var c model.Customer
	err := r.storage.pool.QueryRow(ctx, query, customer.ID, customer.DisplayName, customer.Handle).
		Scan(&c.ID, &c.DisplayName, &c.Handle, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	const query = `SELECT id, display_name, handle, created_at FROM customers WHERE id=$1`
	var c model.Customer
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.DisplayName, &c.Handle, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
