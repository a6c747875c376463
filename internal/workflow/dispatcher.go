package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/pkg/ratelimit"
)

// ErrRateLimited is returned when a customer scans too often.
var ErrRateLimited = errors.New("too many scans")

// Businesses resolves the business a code points at.
type Businesses interface {
	Get(ctx context.Context, id int64) (*model.Business, error)
}

// ScanRequest is a customer scanning the code of a business.
type ScanRequest struct {
	CustomerID  string
	DisplayName string
	Handle      string
	BusinessID  int64
}

// DispatchResult describes the session opened by a scan.
type DispatchResult struct {
	SessionID uuid.UUID
	Channel   model.ChannelID
	Business  model.Business
	Customer  model.Customer
	Balance   int64
}

// Dispatcher routes scans to the operator channel of the scanned business.
type Dispatcher struct {
	engine     *Engine
	ledger     Ledger
	businesses Businesses
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

// NewDispatcher constructs Dispatcher. A nil limiter disables scan throttling.
func NewDispatcher(engine *Engine, businesses Businesses, limiter *ratelimit.Limiter) *Dispatcher {
	return &Dispatcher{
		engine:     engine,
		ledger:     engine.ledger,
		businesses: businesses,
		limiter:    limiter,
		logger:     engine.logger,
	}
}

// Dispatch enrolls the customer and opens a session awaiting the purchase amount.
func (d *Dispatcher) Dispatch(ctx context.Context, req ScanRequest) (*DispatchResult, error) {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	if req.CustomerID == "" {
		d.rejected("customer")
		return nil, domainErrors.ErrCustomerNotFound
	}
	if d.limiter != nil && !d.limiter.Allow(req.CustomerID) {
		d.rejected("rate_limited")
		return nil, ErrRateLimited
	}

	business, err := d.businesses.Get(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrBusinessNotFound) {
			d.logger.Warn("scan for unknown business",
				slog.Int64("business_id", req.BusinessID),
				slog.String("customer_id", req.CustomerID),
			)
			d.rejected("business")
		}
		return nil, err
	}

	slot, err := d.engine.reserve(business.Channel())
	if err != nil {
		if errors.Is(err, domainErrors.ErrOperatorBusy) {
			d.rejected("busy")
		}
		return nil, err
	}

	enrollment, err := d.ledger.Enroll(ctx, model.Customer{
		ID:          req.CustomerID,
		DisplayName: req.DisplayName,
		Handle:      req.Handle,
	}, business.ID)
	if err != nil {
		d.engine.release(slot)
		d.logger.Error("scan enrollment failed",
			slog.Int64("business_id", business.ID),
			slog.String("customer_id", req.CustomerID),
			slog.Any("error", err),
		)
		return nil, err
	}

	customerName := enrollment.Customer.Name()
	started := d.engine.activate(slot, model.WorkflowSession{
		CustomerID:   enrollment.Customer.ID,
		CustomerName: customerName,
		BusinessID:   enrollment.Business.ID,
		BusinessName: enrollment.Business.Name,
	})

	balance := enrollment.Entry.Points
	d.engine.notify(ctx, model.RecipientOperator, started.Channel.String(), model.EventScanStarted, promptAmount(customerName, balance))
	d.engine.notify(ctx, model.RecipientCustomer, started.CustomerID, model.EventScanStarted, customerWelcome(enrollment.Business.Name, balance))

	d.logger.Info("workflow started",
		slog.String("session_id", started.ID.String()),
		slog.String("channel", started.Channel.String()),
		slog.Int64("business_id", started.BusinessID),
		slog.String("customer_id", started.CustomerID),
	)

	return &DispatchResult{
		SessionID: started.ID,
		Channel:   started.Channel,
		Business:  enrollment.Business,
		Customer:  enrollment.Customer,
		Balance:   balance,
	}, nil
}

// DispatchPayload resolves a deep-link payload and dispatches the scan.
func (d *Dispatcher) DispatchPayload(ctx context.Context, payload string, req ScanRequest) (*DispatchResult, error) {
	id, err := ParseScanPayload(payload)
	if err != nil {
		d.rejected("payload")
		return nil, err
	}
	req.BusinessID = id
	return d.Dispatch(ctx, req)
}

func (d *Dispatcher) rejected(reason string) {
	if d.engine.observer != nil {
		d.engine.observer.ScanRejected(reason)
	}
}
