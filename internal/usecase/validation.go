package usecase

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
)

var maxAmount = decimal.NewFromInt(1_000_000_000)

// ParseAmount parses an operator supplied purchase amount.
// A comma is accepted as the decimal separator and at most two fractional digits are allowed.
func ParseAmount(input string) (decimal.Decimal, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	if raw == "" || strings.ContainsAny(raw, "eE") {
		return decimal.Zero, domainErrors.ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domainErrors.ErrInvalidAmount
	}
	if amount.Sign() <= 0 || amount.GreaterThan(maxAmount) {
		return decimal.Zero, domainErrors.ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(2)) {
		return decimal.Zero, domainErrors.ErrInvalidAmount
	}
	return amount.Truncate(2), nil
}

// ParsePoints parses a non-negative whole number of points.
func ParsePoints(input string) (int64, error) {
	raw := strings.TrimSpace(input)
	if raw == "" || strings.HasPrefix(raw, "+") {
		return 0, domainErrors.ErrInvalidPoints
	}
	points, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || points < 0 {
		return 0, domainErrors.ErrInvalidPoints
	}
	return points, nil
}
