package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/qrloyalty/internal/config"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewBusinessUseCase,
	newPolicy,
	newTierUseCase,
	newLedgerUseCase,
)

func newPolicy(cfg *config.Config) Policy {
	return Policy{
		Accrual:              AccrualMode(cfg.AccrualPolicy),
		Rounding:             RoundingMode(cfg.AccrualRounding),
		RedemptionCapPercent: int64(cfg.RedemptionCapPercent),
	}
}

func newTierUseCase(cfg *config.Config, tiers repository.TierRepository, businesses repository.BusinessRepository) *TierUseCase {
	return NewTierUseCase(tiers, businesses, model.TierBasis(cfg.TierBasis))
}

type ledgerParams struct {
	fx.In

	Config       *config.Config
	Ledger       repository.LedgerRepository
	Transactions repository.TransactionRepository
	Businesses   repository.BusinessRepository
	Customers    repository.CustomerRepository
	Tiers        *TierUseCase
	Policy       Policy
	Observer     LedgerObserver `optional:"true"`
	Logger       *slog.Logger
}

func newLedgerUseCase(p ledgerParams) *LedgerUseCase {
	return NewLedgerUseCase(LedgerDeps{
		Ledger:       p.Ledger,
		Transactions: p.Transactions,
		Businesses:   p.Businesses,
		Customers:    p.Customers,
		Tiers:        p.Tiers,
		Policy:       p.Policy,
		Retry:        RetryOptions{MaxRetries: p.Config.CommitMaxRetries, Backoff: p.Config.CommitRetryBackoff},
		Observer:     p.Observer,
		Logger:       p.Logger,
	})
}
