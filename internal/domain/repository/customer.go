package repository

import (
	"context"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// CustomerRepository stores customers known by their platform id.
type CustomerRepository interface {
	// Upsert creates the customer on first contact and refreshes name and handle afterwards.
	Upsert(ctx context.Context, customer model.Customer) (*model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
}
