package model

import "time"

// Customer is a loyalty program member identified by the messaging platform id.
type Customer struct {
	ID          string
	DisplayName string
	Handle      string
	CreatedAt   time.Time
}

// Name returns the best human readable label for the customer.
func (c Customer) Name() string {
	switch {
	case c.DisplayName != "":
		return c.DisplayName
	case c.Handle != "":
		return "@" + c.Handle
	default:
		return c.ID
	}
}
