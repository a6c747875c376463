package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

func TestOperatorRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &operatorRepository{storage: storage}

	createdAt := time.Now()
	mock.ExpectQuery("INSERT INTO operators").WithArgs("owner", "hash").WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt),
	)
	op, err := repo.Create(context.Background(), "owner", "hash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.ID != 1 || op.Login != "owner" || op.PasswordHash != "hash" {
		t.Fatalf("unexpected operator: %+v", op)
	}

	mock.ExpectQuery("INSERT INTO operators").WithArgs("owner", "hash").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(context.Background(), "owner", "hash"); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists error, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO operators").WithArgs("owner", "hash").WillReturnError(errors.New("other"))
	if _, err := repo.Create(context.Background(), "owner", "hash"); err == nil {
		t.Fatal("expected error")
	}

	columns := []string{"id", "login", "password_hash", "created_at"}
	mock.ExpectQuery("SELECT id, login, password_hash, created_at FROM operators WHERE login=").WithArgs("owner").WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow(int64(1), "owner", "hash", createdAt))
	if _, err := repo.GetByLogin(context.Background(), "owner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("SELECT id, login, password_hash, created_at FROM operators WHERE login=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByLogin(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT id, login, password_hash, created_at FROM operators WHERE id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow(int64(1), "owner", "hash", createdAt))
	if _, err := repo.GetByID(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("SELECT id, login, password_hash, created_at FROM operators WHERE id=").WithArgs(int64(3)).WillReturnError(errors.New("boom"))
	if _, err := repo.GetByID(context.Background(), 3); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestCustomerRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &customerRepository{storage: storage}

	now := time.Now()
	columns := []string{"id", "display_name", "handle", "created_at"}
	mock.ExpectQuery("INSERT INTO customers").WithArgs("42", "Ann", "ann").WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow("42", "Ann", "ann", now))
	c, err := repo.Upsert(context.Background(), model.Customer{ID: "42", DisplayName: "Ann", Handle: "ann"})
	if err != nil || c.ID != "42" || c.DisplayName != "Ann" {
		t.Fatalf("unexpected result %+v (%v)", c, err)
	}

	mock.ExpectQuery("INSERT INTO customers").WithArgs("42", "", "").WillReturnError(errors.New("down"))
	if _, err := repo.Upsert(context.Background(), model.Customer{ID: "42"}); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("SELECT id, display_name, handle, created_at FROM customers").WithArgs("42").WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow("42", "Ann", "ann", now))
	if c, err := repo.GetByID(context.Background(), "42"); err != nil || c.Handle != "ann" {
		t.Fatalf("unexpected result %+v (%v)", c, err)
	}

	mock.ExpectQuery("SELECT id, display_name, handle, created_at FROM customers").WithArgs("7").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), "7"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestBusinessRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &businessRepository{storage: storage}

	now := time.Now()
	rate := decimal.RequireFromString("12.5")
	mock.ExpectQuery("INSERT INTO businesses").WithArgs("Cafe", rate.String(), int64(3)).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))
	b, err := repo.Create(context.Background(), 3, "Cafe", rate)
	if err != nil || b.ID != 5 || !b.ConversionRate.Equal(rate) {
		t.Fatalf("unexpected result %+v (%v)", b, err)
	}

	mock.ExpectQuery("INSERT INTO businesses").WithArgs("Cafe", rate.String(), int64(99)).WillReturnError(&pgconn.PgError{Code: "23503"})
	if _, err := repo.Create(context.Background(), 99, "Cafe", rate); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO businesses").WithArgs("Cafe", "500", int64(3)).WillReturnError(&pgconn.PgError{Code: "23514"})
	if _, err := repo.Create(context.Background(), 3, "Cafe", decimal.NewFromInt(500)); !errors.Is(err, domainErrors.ErrInvalidConversionRate) {
		t.Fatalf("expected invalid rate, got %v", err)
	}

	columns := []string{"id", "name", "conversion_rate", "operator_id", "created_at"}
	mock.ExpectQuery("SELECT id, name, conversion_rate::text, operator_id, created_at FROM businesses WHERE id=").WithArgs(int64(5)).WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow(int64(5), "Cafe", "12.50", int64(3), now))
	b, err = repo.GetByID(context.Background(), 5)
	if err != nil || b.Name != "Cafe" || !b.ConversionRate.Equal(rate) {
		t.Fatalf("unexpected result %+v (%v)", b, err)
	}

	mock.ExpectQuery("SELECT id, name, conversion_rate::text, operator_id, created_at FROM businesses WHERE id=").WithArgs(int64(6)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 6); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT id, name, conversion_rate::text, operator_id, created_at FROM businesses WHERE id=").WithArgs(int64(7)).WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow(int64(7), "Broken", "n/a", int64(3), now))
	if _, err := repo.GetByID(context.Background(), 7); err == nil {
		t.Fatal("expected numeric parse error")
	}

	mock.ExpectQuery("SELECT id, name, conversion_rate::text, operator_id, created_at\\s+FROM businesses WHERE operator_id=").WithArgs(int64(3)).WillReturnRows(
		pgxmockv3.NewRows(columns).
			AddRow(int64(5), "Cafe", "12.50", int64(3), now).
			AddRow(int64(8), "Bakery", "10.00", int64(3), now))
	list, err := repo.ListByOperator(context.Background(), 3)
	if err != nil || len(list) != 2 || list[1].Name != "Bakery" {
		t.Fatalf("unexpected list %+v (%v)", list, err)
	}

	mock.ExpectQuery("FROM businesses WHERE operator_id=").WithArgs(int64(4)).WillReturnError(errors.New("query"))
	if _, err := repo.ListByOperator(context.Background(), 4); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestBusinessRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &businessRepository{storage: storage}
	if _, err := repo.ListByOperator(context.Background(), 1); err == nil {
		t.Fatal("expected rows error")
	}
}
