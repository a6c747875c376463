package dto

import "github.com/shopspring/decimal"

// CreateBusinessRequest describes a new business. An omitted rate uses the default.
type CreateBusinessRequest struct {
	Name           string           `json:"name"`
	ConversionRate *decimal.Decimal `json:"conversion_rate,omitempty"`
}

// BusinessResponse describes a business and the payload encoded in its QR code.
type BusinessResponse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	ScanPayload    string          `json:"scan_payload"`
}

// TierRequest is one row of a tier table.
type TierRequest struct {
	Name            string          `json:"name"`
	MinThreshold    decimal.Decimal `json:"min_threshold"`
	CashbackPercent decimal.Decimal `json:"cashback_percent"`
}

// TierResponse is one stored tier.
type TierResponse struct {
	Name            string          `json:"name"`
	MinThreshold    decimal.Decimal `json:"min_threshold"`
	CashbackPercent decimal.Decimal `json:"cashback_percent"`
}
