package usecase

import (
	"io"
	"log/slog"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/qrloyalty/internal/config"
	"github.com/polkiloo/qrloyalty/internal/domain/repository"
	pkgAuth "github.com/polkiloo/qrloyalty/internal/pkg/auth"
	testhelpers "github.com/polkiloo/qrloyalty/internal/test"
)

func TestModuleProvidesUseCases(t *testing.T) {
	cfg := &config.Config{
		AccrualPolicy:        "combined",
		AccrualRounding:      "floor",
		RedemptionCapPercent: 40,
		TierBasis:            "points",
		CommitMaxRetries:     2,
	}
	ledger := testhelpers.NewLedgerRepositoryStub()
	businesses := testhelpers.NewBusinessRepositoryStub()

	var (
		ledgerUC *LedgerUseCase
		tierUC   *TierUseCase
		authUC   *AuthUseCase
		bizUC    *BusinessUseCase
	)
	app := fxtest.New(t,
		fx.Supply(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil))),
		fx.Provide(
			func() repository.OperatorRepository { return testhelpers.NewOperatorRepositoryStub() },
			func() repository.CustomerRepository { return testhelpers.NewCustomerRepositoryStub() },
			func() repository.BusinessRepository { return businesses },
			func() repository.LedgerRepository { return ledger },
			func() repository.TransactionRepository { return ledger },
			func() repository.TierRepository { return testhelpers.NewTierRepositoryStub() },
			func() pkgAuth.PasswordHasher { return testhelpers.HasherStub{} },
			func() pkgAuth.Strategy { return testhelpers.StrategyStub{} },
		),
		Module,
		fx.Populate(&ledgerUC, &tierUC, &authUC, &bizUC),
	)
	app.RequireStart()
	defer app.RequireStop()

	if ledgerUC == nil || tierUC == nil || authUC == nil || bizUC == nil {
		t.Fatal("expected all use cases to be provided")
	}
	policy := ledgerUC.Policy()
	if policy.Accrual != AccrualCombined || policy.Rounding != RoundFloor || policy.RedemptionCapPercent != 40 {
		t.Fatalf("policy not built from config: %+v", policy)
	}
	if tierUC.Basis() != "points" {
		t.Fatalf("expected points basis, got %s", tierUC.Basis())
	}
	if ledgerUC.retry.MaxRetries != 2 {
		t.Fatalf("expected retries from config, got %d", ledgerUC.retry.MaxRetries)
	}
}
