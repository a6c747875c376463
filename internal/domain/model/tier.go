package model

import "github.com/shopspring/decimal"

// TierBasis selects the value tiers are measured against.
type TierBasis string

const (
	TierBasisSpend  TierBasis = "spend"
	TierBasisPoints TierBasis = "points"
)

// RewardTier is a named threshold level unlocking a cashback percentage.
type RewardTier struct {
	ID              int64
	BusinessID      int64
	Name            string
	MinThreshold    decimal.Decimal
	CashbackPercent decimal.Decimal
}

// TierProgress describes the resolved tier and the distance to the next one.
type TierProgress struct {
	Current         RewardTier
	Next            *RewardTier
	Rank            int
	Value           decimal.Decimal
	ProgressPercent decimal.Decimal
}
