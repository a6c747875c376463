package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	testhelpers "github.com/polkiloo/qrloyalty/internal/test"
)

func TestBusinessUseCaseCreate(t *testing.T) {
	repo := testhelpers.NewBusinessRepositoryStub()
	uc := NewBusinessUseCase(repo)

	b, err := uc.Create(context.Background(), 3, "  Coffee House ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Name != "Coffee House" || b.OperatorID != 3 || !b.ConversionRate.Equal(DefaultConversionRate) {
		t.Fatalf("unexpected business %+v", b)
	}

	rate := dec("2.5")
	b, err = uc.Create(context.Background(), 3, "Bakery", &rate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.ConversionRate.Equal(rate) {
		t.Fatalf("expected rate 2.5, got %s", b.ConversionRate)
	}

	list, err := uc.List(context.Background(), 3)
	if err != nil || len(list) != 2 {
		t.Fatalf("expected two businesses, got %v (%v)", list, err)
	}
}

func TestBusinessUseCaseCreateValidation(t *testing.T) {
	uc := NewBusinessUseCase(testhelpers.NewBusinessRepositoryStub())

	if _, err := uc.Create(context.Background(), 1, " ", nil); !errors.Is(err, ErrInvalidBusinessName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := uc.Create(context.Background(), 1, strings.Repeat("x", 101), nil); !errors.Is(err, ErrInvalidBusinessName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	for _, raw := range []string{"0", "-1", "100.01", "1.234"} {
		rate := dec(raw)
		if _, err := uc.Create(context.Background(), 1, "Shop", &rate); !errors.Is(err, domainErrors.ErrInvalidConversionRate) {
			t.Errorf("rate %s: expected invalid conversion rate, got %v", raw, err)
		}
	}
}

func TestBusinessUseCaseGet(t *testing.T) {
	repo := testhelpers.NewBusinessRepositoryStub()
	uc := NewBusinessUseCase(repo)
	if _, err := uc.Get(context.Background(), 5); !errors.Is(err, domainErrors.ErrBusinessNotFound) {
		t.Fatalf("expected business not found, got %v", err)
	}
	created, _ := uc.Create(context.Background(), 1, "Shop", nil)
	got, err := uc.Get(context.Background(), created.ID)
	if err != nil || got.Name != "Shop" {
		t.Fatalf("unexpected result %+v (%v)", got, err)
	}
}
