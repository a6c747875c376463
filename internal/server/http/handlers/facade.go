package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

// AuthFacade describes operator authentication required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (*model.Operator, string, error)
	Authenticate(ctx context.Context, login, password string) (*model.Operator, string, error)
	ParseToken(token string) (int64, error)
	Operator(ctx context.Context, operatorID int64) (*model.Operator, error)
}

// BusinessFacade manages businesses and their tier tables.
type BusinessFacade interface {
	CreateBusiness(ctx context.Context, operatorID int64, name string, rate *decimal.Decimal) (*model.Business, error)
	Businesses(ctx context.Context, operatorID int64) ([]model.Business, error)
	Tiers(ctx context.Context, businessID int64) ([]model.RewardTier, error)
	ReplaceTiers(ctx context.Context, operatorID, businessID int64, tiers []model.RewardTier) ([]model.RewardTier, error)
}

// WorkflowFacade drives scans and purchase conversations.
type WorkflowFacade interface {
	Scan(ctx context.Context, req workflow.ScanRequest, payload string) (*workflow.DispatchResult, error)
	ActiveWorkflow(operatorID int64) (*model.WorkflowSession, bool)
	AdvanceWorkflow(ctx context.Context, operatorID int64, input string) (*model.WorkflowReply, error)
	CancelWorkflow(ctx context.Context, operatorID int64) error
}

// CustomerFacade exposes read models of a customer.
type CustomerFacade interface {
	Profile(ctx context.Context, customerID string) (*model.Profile, error)
	Balance(ctx context.Context, customerID string, businessID int64) (*model.Balance, error)
	Transactions(ctx context.Context, customerID string, businessID int64, limit int) ([]model.Transaction, error)
	Stats(ctx context.Context, customerID string, businessID int64) (*model.VisitStats, error)
}

// HealthFacade reports service readiness.
type HealthFacade interface {
	Ping(ctx context.Context) error
}

// LoyaltyFacade aggregates the full set of operations used across handlers.
type LoyaltyFacade interface {
	AuthFacade
	BusinessFacade
	WorkflowFacade
	CustomerFacade
	HealthFacade
}
