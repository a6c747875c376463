// Package facadestub holds HTTP facade stubs for handler and router tests.
package facadestub

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
	testhelpers "github.com/polkiloo/qrloyalty/internal/test"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

// BusinessFacadeStub provides controllable behaviour for business endpoints.
type BusinessFacadeStub struct {
	CreateFn       func(context.Context, int64, string, *decimal.Decimal) (*model.Business, error)
	BusinessesFn   func(context.Context, int64) ([]model.Business, error)
	TiersFn        func(context.Context, int64) ([]model.RewardTier, error)
	ReplaceTiersFn func(context.Context, int64, int64, []model.RewardTier) ([]model.RewardTier, error)
}

// CreateBusiness delegates to provided function or echoes the request.
func (s BusinessFacadeStub) CreateBusiness(ctx context.Context, operatorID int64, name string, rate *decimal.Decimal) (*model.Business, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, operatorID, name, rate)
	}
	conversion := decimal.NewFromInt(10)
	if rate != nil {
		conversion = *rate
	}
	return &model.Business{ID: 1, Name: name, ConversionRate: conversion, OperatorID: operatorID}, nil
}

// Businesses returns predefined businesses of the operator.
func (s BusinessFacadeStub) Businesses(ctx context.Context, operatorID int64) ([]model.Business, error) {
	if s.BusinessesFn != nil {
		return s.BusinessesFn(ctx, operatorID)
	}
	return []model.Business{{ID: 1, Name: "Coffee", ConversionRate: decimal.NewFromInt(10), OperatorID: operatorID}}, nil
}

// Tiers returns the tier table of the business.
func (s BusinessFacadeStub) Tiers(ctx context.Context, businessID int64) ([]model.RewardTier, error) {
	if s.TiersFn != nil {
		return s.TiersFn(ctx, businessID)
	}
	return []model.RewardTier{{Name: "Bronze", CashbackPercent: decimal.NewFromInt(5)}}, nil
}

// ReplaceTiers echoes the submitted table.
func (s BusinessFacadeStub) ReplaceTiers(ctx context.Context, operatorID, businessID int64, tiers []model.RewardTier) ([]model.RewardTier, error) {
	if s.ReplaceTiersFn != nil {
		return s.ReplaceTiersFn(ctx, operatorID, businessID, tiers)
	}
	return tiers, nil
}

// WorkflowFacadeStub simulates scans and operator input.
type WorkflowFacadeStub struct {
	ScanFn    func(context.Context, workflow.ScanRequest, string) (*workflow.DispatchResult, error)
	Session   *model.WorkflowSession
	AdvanceFn func(context.Context, int64, string) (*model.WorkflowReply, error)
	CancelFn  func(context.Context, int64) error
}

// Scan delegates to provided function or reports a started session.
func (s WorkflowFacadeStub) Scan(ctx context.Context, req workflow.ScanRequest, payload string) (*workflow.DispatchResult, error) {
	if s.ScanFn != nil {
		return s.ScanFn(ctx, req, payload)
	}
	return &workflow.DispatchResult{
		SessionID: uuid.New(),
		Business:  model.Business{ID: req.BusinessID, Name: "Coffee"},
		Customer:  model.Customer{ID: req.CustomerID},
	}, nil
}

// ActiveWorkflow returns the configured session.
func (s WorkflowFacadeStub) ActiveWorkflow(operatorID int64) (*model.WorkflowSession, bool) {
	if s.Session == nil {
		return nil, false
	}
	out := *s.Session
	return &out, true
}

// AdvanceWorkflow delegates to provided function or moves to redemption.
func (s WorkflowFacadeStub) AdvanceWorkflow(ctx context.Context, operatorID int64, input string) (*model.WorkflowReply, error) {
	if s.AdvanceFn != nil {
		return s.AdvanceFn(ctx, operatorID, input)
	}
	return &model.WorkflowReply{State: model.WorkflowAwaitingRedemption, Prompt: "Enter points to redeem."}, nil
}

// CancelWorkflow delegates to provided function.
func (s WorkflowFacadeStub) CancelWorkflow(ctx context.Context, operatorID int64) error {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, operatorID)
	}
	return nil
}

// CustomerFacadeStub serves canned read models.
type CustomerFacadeStub struct {
	ProfileFn      func(context.Context, string) (*model.Profile, error)
	BalanceFn      func(context.Context, string, int64) (*model.Balance, error)
	TransactionsFn func(context.Context, string, int64, int) ([]model.Transaction, error)
	StatsFn        func(context.Context, string, int64) (*model.VisitStats, error)
}

// Profile returns stored profile or a single balance.
func (s CustomerFacadeStub) Profile(ctx context.Context, customerID string) (*model.Profile, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx, customerID)
	}
	balance, _ := s.Balance(ctx, customerID, 1)
	return &model.Profile{Customer: model.Customer{ID: customerID}, Balances: []model.Balance{*balance}}, nil
}

// Balance returns stored balance or a default one.
func (s CustomerFacadeStub) Balance(ctx context.Context, customerID string, businessID int64) (*model.Balance, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx, customerID, businessID)
	}
	return &model.Balance{
		Business: model.Business{ID: businessID, Name: "Coffee"},
		Points:   10,
		Tier:     model.TierProgress{Current: model.RewardTier{Name: "Bronze"}},
	}, nil
}

// Transactions returns preconfigured history.
func (s CustomerFacadeStub) Transactions(ctx context.Context, customerID string, businessID int64, limit int) ([]model.Transaction, error) {
	if s.TransactionsFn != nil {
		return s.TransactionsFn(ctx, customerID, businessID, limit)
	}
	return []model.Transaction{{ID: 1, CustomerID: customerID, BusinessID: businessID, Amount: decimal.NewFromInt(100), PointsAccrued: 10, CreatedAt: time.Unix(0, 0)}}, nil
}

// Stats returns preconfigured statistics.
func (s CustomerFacadeStub) Stats(ctx context.Context, customerID string, businessID int64) (*model.VisitStats, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx, customerID, businessID)
	}
	return &model.VisitStats{TotalVisits: 1, MostFrequentHour: -1}, nil
}

// HealthFacadeStub reports the configured ping error.
type HealthFacadeStub struct {
	Err error
}

// Ping returns Err.
func (s HealthFacadeStub) Ping(ctx context.Context) error {
	return s.Err
}

// LoyaltyFacadeStub aggregates facade dependencies for HTTP layer tests.
type LoyaltyFacadeStub struct {
	testhelpers.AuthFacadeStub
	BusinessFacadeStub
	WorkflowFacadeStub
	CustomerFacadeStub
	HealthFacadeStub
}
