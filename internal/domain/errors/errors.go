package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists          = errors.New("already exists")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidPoints          = errors.New("invalid points")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrRedemptionCapExceeded  = errors.New("redemption cap exceeded")
	ErrOperatorBusy           = errors.New("operator busy")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrBusinessNotFound       = errors.New("business not found")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrNoActiveSession        = errors.New("no active workflow session")
	ErrInvalidConversionRate  = errors.New("invalid conversion rate")
	ErrInvalidTiers           = errors.New("invalid reward tiers")
	ErrInvalidScanPayload     = errors.New("invalid scan payload")
)

// RedemptionCapError carries the maximum redeemable points for a purchase.
type RedemptionCapError struct {
	Cap int64
}

func (e RedemptionCapError) Error() string {
	return fmt.Sprintf("%s: at most %d points", ErrRedemptionCapExceeded, e.Cap)
}

func (e RedemptionCapError) Unwrap() error {
	return ErrRedemptionCapExceeded
}

// InsufficientBalanceError carries the balance the redemption was checked against.
type InsufficientBalanceError struct {
	Balance int64
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: %d points available", ErrInsufficientBalance, e.Balance)
}

func (e InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
