package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry holds the points balance of a customer at a business.
type LedgerEntry struct {
	CustomerID string
	BusinessID int64
	Points     int64
	Version    int64
	TierName   string
	UpdatedAt  time.Time
}

// Transaction is an immutable record of one settled purchase.
type Transaction struct {
	ID             int64
	CustomerID     string
	BusinessID     int64
	Amount         decimal.Decimal
	PointsRedeemed int64
	PointsAccrued  int64
	CreatedAt      time.Time
}

// Delta returns the net balance change produced by the transaction.
func (t Transaction) Delta() int64 {
	return t.PointsAccrued - t.PointsRedeemed
}

// Mutation describes a balance change computed against a ledger entry snapshot.
type Mutation struct {
	PointsRedeemed int64
	PointsAccrued  int64
}

// Balance is a read model combining a ledger entry with its business and tier.
type Balance struct {
	Business Business
	Points   int64
	Tier     TierProgress
}

// Profile aggregates every balance of a customer.
type Profile struct {
	Customer Customer
	Balances []Balance
}

// VisitStats summarises purchase activity of a customer at a business.
type VisitStats struct {
	TotalVisits        int
	CurrentMonthVisits int
	TotalSpent         decimal.Decimal
	ByHour             [24]int
	ByWeekday          [7]int // Monday first
	MostFrequentHour   int    // -1 when there are no visits
}
