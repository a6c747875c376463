package model

import "time"

// RecipientKind tells whether a message targets an operator or a customer.
type RecipientKind string

const (
	RecipientOperator RecipientKind = "operator"
	RecipientCustomer RecipientKind = "customer"
)

// NotificationEvent classifies outbound messages.
type NotificationEvent string

const (
	EventScanStarted      NotificationEvent = "scan_started"
	EventPurchaseSettled  NotificationEvent = "purchase_settled"
	EventWorkflowCanceled NotificationEvent = "workflow_cancelled"
	EventWorkflowTimedOut NotificationEvent = "workflow_timed_out"
	EventWorkflowFailed   NotificationEvent = "workflow_failed"
)

// Notification is a message for an operator or customer channel.
type Notification struct {
	Kind        RecipientKind
	RecipientID string
	Event       NotificationEvent
	Text        string
	CreatedAt   time.Time
}
