package usecase

import (
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// AccrualMode decides whether accrual and redemption may combine in one purchase.
type AccrualMode string

const (
	// AccrualExclusive accrues points only when nothing is redeemed.
	AccrualExclusive AccrualMode = "exclusive"
	// AccrualCombined accrues on the part of the amount not covered by redeemed points.
	AccrualCombined AccrualMode = "combined"
)

// RoundingMode controls how fractional accruals become integer points.
type RoundingMode string

const (
	RoundHalfEven RoundingMode = "half_even"
	RoundHalfUp   RoundingMode = "half_up"
	RoundFloor    RoundingMode = "floor"
)

var hundred = decimal.NewFromInt(100)

// A purchase may never be paid more than half in points.
const maxRedemptionCapPercent = 50

// Policy holds the accrual and redemption rules applied to every purchase.
type Policy struct {
	Accrual              AccrualMode
	Rounding             RoundingMode
	RedemptionCapPercent int64
}

// DefaultPolicy returns exclusive accrual, banker's rounding and a 50% redemption cap.
func DefaultPolicy() Policy {
	return Policy{Accrual: AccrualExclusive, Rounding: RoundHalfEven, RedemptionCapPercent: 50}
}

// RedemptionCap returns the maximum points redeemable against amount, rounded down.
// Percentages above 50 are clamped to 50.
func (p Policy) RedemptionCap(amount decimal.Decimal) int64 {
	if amount.Sign() <= 0 {
		return 0
	}
	capPercent := p.RedemptionCapPercent
	if capPercent <= 0 || capPercent > maxRedemptionCapPercent {
		capPercent = maxRedemptionCapPercent
	}
	return amount.Mul(decimal.NewFromInt(capPercent)).Div(hundred).Floor().IntPart()
}

// Accrued returns the points earned for a purchase given the business conversion rate.
func (p Policy) Accrued(amount, conversionRate decimal.Decimal, redeemed int64) int64 {
	base := amount
	switch p.Accrual {
	case AccrualCombined:
		base = amount.Sub(decimal.NewFromInt(redeemed))
	default:
		if redeemed > 0 {
			return 0
		}
	}
	if base.Sign() <= 0 || conversionRate.Sign() <= 0 {
		return 0
	}
	return p.round(base.Mul(conversionRate).Div(hundred))
}

func (p Policy) round(v decimal.Decimal) int64 {
	switch p.Rounding {
	case RoundHalfUp:
		return v.Round(0).IntPart()
	case RoundFloor:
		return v.Floor().IntPart()
	default:
		return v.RoundBank(0).IntPart()
	}
}

// Mutation validates a redemption against the stored balance and computes the change.
// The balance is checked before the cap so a commit exceeding the balance always
// reports insufficient balance.
func (p Policy) Mutation(balance int64, amount, conversionRate decimal.Decimal, redeemed int64) (model.Mutation, error) {
	if amount.Sign() <= 0 {
		return model.Mutation{}, domainErrors.ErrInvalidAmount
	}
	if redeemed < 0 {
		return model.Mutation{}, domainErrors.ErrInvalidPoints
	}
	if redeemed > balance {
		return model.Mutation{}, domainErrors.InsufficientBalanceError{Balance: balance}
	}
	if capPoints := p.RedemptionCap(amount); redeemed > capPoints {
		return model.Mutation{}, domainErrors.RedemptionCapError{Cap: capPoints}
	}
	return model.Mutation{
		PointsRedeemed: redeemed,
		PointsAccrued:  p.Accrued(amount, conversionRate, redeemed),
	}, nil
}
