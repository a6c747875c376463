package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkflowState is a step of the purchase conversation.
type WorkflowState string

const (
	WorkflowAwaitingAmount     WorkflowState = "AWAITING_AMOUNT"
	WorkflowAwaitingRedemption WorkflowState = "AWAITING_REDEMPTION"
	WorkflowSettled            WorkflowState = "SETTLED"
	WorkflowCancelled          WorkflowState = "CANCELLED"
	WorkflowTimedOut           WorkflowState = "TIMED_OUT"
	WorkflowFailed             WorkflowState = "FAILED"
)

// Terminal reports whether the state ends the session.
func (s WorkflowState) Terminal() bool {
	switch s {
	case WorkflowAwaitingAmount, WorkflowAwaitingRedemption:
		return false
	default:
		return true
	}
}

// WorkflowSession is the ephemeral conversation bound to an operator channel.
type WorkflowSession struct {
	ID           uuid.UUID
	Channel      ChannelID
	CustomerID   string
	CustomerName string
	BusinessID   int64
	BusinessName string
	State        WorkflowState
	Amount       *decimal.Decimal
	StartedAt    time.Time
	TouchedAt    time.Time
}

// CommitResult is returned by the ledger after a settled purchase.
type CommitResult struct {
	Transaction Transaction
	NewBalance  int64
	Attempts    int
	TierChanged bool
	Tier        TierProgress
}

// WorkflowReply is what the operator sees after advancing a workflow.
type WorkflowReply struct {
	SessionID uuid.UUID
	State     WorkflowState
	Prompt    string
	Result    *CommitResult
}
