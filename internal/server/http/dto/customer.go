package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TierProgressResponse describes the tier reached and the distance to the next.
type TierProgressResponse struct {
	Current         string           `json:"current"`
	CashbackPercent decimal.Decimal  `json:"cashback_percent"`
	Next            string           `json:"next,omitempty"`
	NextThreshold   *decimal.Decimal `json:"next_threshold,omitempty"`
	Value           decimal.Decimal  `json:"value"`
	ProgressPercent decimal.Decimal  `json:"progress_percent"`
}

// BalanceResponse is the balance of a customer at one business.
type BalanceResponse struct {
	BusinessID   int64                `json:"business_id"`
	BusinessName string               `json:"business_name"`
	Points       int64                `json:"points"`
	Tier         TierProgressResponse `json:"tier"`
}

// ProfileResponse lists every balance of a customer.
type ProfileResponse struct {
	CustomerID string            `json:"customer_id"`
	Name       string            `json:"name"`
	Balances   []BalanceResponse `json:"balances"`
}

// TransactionResponse is one settled purchase.
type TransactionResponse struct {
	ID             int64           `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	PointsRedeemed int64           `json:"points_redeemed"`
	PointsAccrued  int64           `json:"points_accrued"`
	CreatedAt      time.Time       `json:"created_at"`
}

// StatsResponse summarises visits of a customer at a business.
type StatsResponse struct {
	TotalVisits        int             `json:"total_visits"`
	CurrentMonthVisits int             `json:"current_month_visits"`
	TotalSpent         decimal.Decimal `json:"total_spent"`
	ByHour             [24]int         `json:"by_hour"`
	ByWeekday          [7]int          `json:"by_weekday"`
	MostFrequentHour   int             `json:"most_frequent_hour"`
}
