package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/usecase"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

// HealthChecker reports whether backing services are reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// LoyaltyFacade is the single entry point the transport layer talks to.
type LoyaltyFacade struct {
	auth       *usecase.AuthUseCase
	businesses *usecase.BusinessUseCase
	tiers      *usecase.TierUseCase
	ledger     *usecase.LedgerUseCase
	dispatcher *workflow.Dispatcher
	engine     *workflow.Engine
	health     HealthChecker
}

func NewLoyaltyFacade(
	auth *usecase.AuthUseCase,
	businesses *usecase.BusinessUseCase,
	tiers *usecase.TierUseCase,
	ledger *usecase.LedgerUseCase,
	dispatcher *workflow.Dispatcher,
	engine *workflow.Engine,
	health HealthChecker,
) *LoyaltyFacade {
	return &LoyaltyFacade{
		auth:       auth,
		businesses: businesses,
		tiers:      tiers,
		ledger:     ledger,
		dispatcher: dispatcher,
		engine:     engine,
		health:     health,
	}
}

func (f *LoyaltyFacade) Register(ctx context.Context, login, password string) (*model.Operator, string, error) {
	return f.auth.Register(ctx, login, password)
}

func (f *LoyaltyFacade) Authenticate(ctx context.Context, login, password string) (*model.Operator, string, error) {
	return f.auth.Authenticate(ctx, login, password)
}

func (f *LoyaltyFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *LoyaltyFacade) Operator(ctx context.Context, operatorID int64) (*model.Operator, error) {
	return f.auth.Operator(ctx, operatorID)
}

func (f *LoyaltyFacade) CreateBusiness(ctx context.Context, operatorID int64, name string, rate *decimal.Decimal) (*model.Business, error) {
	return f.businesses.Create(ctx, operatorID, name, rate)
}

func (f *LoyaltyFacade) Businesses(ctx context.Context, operatorID int64) ([]model.Business, error) {
	return f.businesses.List(ctx, operatorID)
}

func (f *LoyaltyFacade) Tiers(ctx context.Context, businessID int64) ([]model.RewardTier, error) {
	if _, err := f.businesses.Get(ctx, businessID); err != nil {
		return nil, err
	}
	return f.tiers.ForBusiness(ctx, businessID)
}

func (f *LoyaltyFacade) ReplaceTiers(ctx context.Context, operatorID, businessID int64, tiers []model.RewardTier) ([]model.RewardTier, error) {
	return f.tiers.Replace(ctx, operatorID, businessID, tiers)
}

// Scan dispatches a scan by business id or, when set, by deep-link payload.
func (f *LoyaltyFacade) Scan(ctx context.Context, req workflow.ScanRequest, payload string) (*workflow.DispatchResult, error) {
	if payload != "" {
		return f.dispatcher.DispatchPayload(ctx, payload, req)
	}
	return f.dispatcher.Dispatch(ctx, req)
}

func (f *LoyaltyFacade) ActiveWorkflow(operatorID int64) (*model.WorkflowSession, bool) {
	return f.engine.Session(model.ChannelID(operatorID))
}

func (f *LoyaltyFacade) AdvanceWorkflow(ctx context.Context, operatorID int64, input string) (*model.WorkflowReply, error) {
	return f.engine.Advance(ctx, model.ChannelID(operatorID), input)
}

func (f *LoyaltyFacade) CancelWorkflow(ctx context.Context, operatorID int64) error {
	return f.engine.Cancel(ctx, model.ChannelID(operatorID))
}

func (f *LoyaltyFacade) Profile(ctx context.Context, customerID string) (*model.Profile, error) {
	return f.ledger.Profile(ctx, customerID)
}

func (f *LoyaltyFacade) Balance(ctx context.Context, customerID string, businessID int64) (*model.Balance, error) {
	return f.ledger.GetBalance(ctx, customerID, businessID)
}

func (f *LoyaltyFacade) Transactions(ctx context.Context, customerID string, businessID int64, limit int) ([]model.Transaction, error) {
	return f.ledger.Transactions(ctx, customerID, businessID, limit)
}

func (f *LoyaltyFacade) Stats(ctx context.Context, customerID string, businessID int64) (*model.VisitStats, error) {
	return f.ledger.Stats(ctx, customerID, businessID)
}

func (f *LoyaltyFacade) Ping(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
