package workflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

func promptAmount(customer string, balance int64) string {
	return fmt.Sprintf("Customer %s scanned the code. Balance: %d points. Enter the purchase amount.", customer, balance)
}

func promptRedemption(amount decimal.Decimal, balance, capPoints int64) string {
	limit := capPoints
	if balance < limit {
		limit = balance
	}
	return fmt.Sprintf("Purchase amount %s. Balance: %d points. Enter points to redeem, from 0 to %d.", amount.StringFixed(2), balance, limit)
}

func customerWelcome(business string, balance int64) string {
	return fmt.Sprintf("Welcome to %s! Your balance: %d points.", business, balance)
}

func settledOperator(customer string, res *model.CommitResult) string {
	return fmt.Sprintf("Purchase of %s for %s settled: %d points redeemed, %d points accrued, new balance %d.",
		res.Transaction.Amount.StringFixed(2), customer, res.Transaction.PointsRedeemed, res.Transaction.PointsAccrued, res.NewBalance)
}

func settledCustomer(business string, res *model.CommitResult) string {
	text := fmt.Sprintf("Purchase at %s: %s. Redeemed %d, accrued %d points. Balance: %d points.",
		business, res.Transaction.Amount.StringFixed(2), res.Transaction.PointsRedeemed, res.Transaction.PointsAccrued, res.NewBalance)
	if res.TierChanged && res.Tier.Current.Name != "" {
		text += fmt.Sprintf(" Your level is now %s.", res.Tier.Current.Name)
	}
	return text
}

func endedText(state model.WorkflowState, business string) string {
	switch state {
	case model.WorkflowCancelled:
		return fmt.Sprintf("The purchase at %s was cancelled.", business)
	case model.WorkflowTimedOut:
		return fmt.Sprintf("The purchase at %s timed out.", business)
	default:
		return fmt.Sprintf("The purchase at %s could not be completed.", business)
	}
}
