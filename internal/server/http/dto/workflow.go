package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScanRequest is a customer scanning a business code.
// Either BusinessID or the deep-link Payload identifies the business.
type ScanRequest struct {
	CustomerID  string `json:"customer_id"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`
	BusinessID  int64  `json:"business_id"`
	Payload     string `json:"payload"`
}

// ScanResponse acknowledges a started workflow.
type ScanResponse struct {
	SessionID    uuid.UUID `json:"session_id"`
	BusinessID   int64     `json:"business_id"`
	BusinessName string    `json:"business_name"`
	Balance      int64     `json:"balance"`
}

// WorkflowInputRequest carries raw operator input.
type WorkflowInputRequest struct {
	Input string `json:"input"`
}

// SessionResponse describes the workflow running on the operator channel.
type SessionResponse struct {
	SessionID    uuid.UUID        `json:"session_id"`
	State        string           `json:"state"`
	CustomerID   string           `json:"customer_id"`
	CustomerName string           `json:"customer_name"`
	BusinessID   int64            `json:"business_id"`
	BusinessName string           `json:"business_name"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	StartedAt    time.Time        `json:"started_at"`
}

// WorkflowReplyResponse is the outcome of one operator input.
type WorkflowReplyResponse struct {
	SessionID uuid.UUID             `json:"session_id"`
	State     string                `json:"state"`
	Prompt    string                `json:"prompt"`
	Result    *CommitResultResponse `json:"result,omitempty"`
}

// CommitResultResponse summarises a settled purchase.
type CommitResultResponse struct {
	TransactionID  int64           `json:"transaction_id"`
	Amount         decimal.Decimal `json:"amount"`
	PointsRedeemed int64           `json:"points_redeemed"`
	PointsAccrued  int64           `json:"points_accrued"`
	NewBalance     int64           `json:"new_balance"`
	Tier           string          `json:"tier,omitempty"`
	TierChanged    bool            `json:"tier_changed"`
}

// ErrorResponse explains a rejected workflow input.
type ErrorResponse struct {
	Error   string `json:"error"`
	Cap     *int64 `json:"cap,omitempty"`
	Balance *int64 `json:"balance,omitempty"`
}
