package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Business is a merchant enrolled in the loyalty program.
type Business struct {
	ID             int64
	Name           string
	ConversionRate decimal.Decimal // percent of the purchase amount accrued as points
	OperatorID     int64
	CreatedAt      time.Time
}

// Channel returns the operator channel owning the business workflows.
func (b Business) Channel() ChannelID {
	return ChannelID(b.OperatorID)
}
