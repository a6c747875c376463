package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

type operatorRepository struct {
	storage *Storage
}

func (r *operatorRepository) Create(ctx context.Context, login, passwordHash string) (*model.Operator, error) {
	const query = `INSERT INTO operators (login, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var op model.Operator
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&op.ID, &op.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	op.Login = login
	op.PasswordHash = passwordHash
	return &op, nil
}

func (r *operatorRepository) GetByLogin(ctx context.Context, login string) (*model.Operator, error) {
	const query = `SELECT id, login, password_hash, created_at FROM operators WHERE login=$1`
	return r.get(ctx, query, login)
}

func (r *operatorRepository) GetByID(ctx context.Context, id int64) (*model.Operator, error) {
	const query = `SELECT id, login, password_hash, created_at FROM operators WHERE id=$1`
	return r.get(ctx, query, id)
}

func (r *operatorRepository) get(ctx context.Context, query string, arg any) (*model.Operator, error) {
	var op model.Operator
	err := r.storage.pool.QueryRow(ctx, query, arg).Scan(&op.ID, &op.Login, &op.PasswordHash, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}
