package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/domain/repository"
)

const (
	defaultTransactionsLimit = 50
	maxTransactionsLimit     = 500
)

// CommitOutcome labels the result of a commit for observers.
type CommitOutcome string

const (
	CommitSettled  CommitOutcome = "settled"
	CommitRejected CommitOutcome = "rejected"
	CommitConflict CommitOutcome = "conflict"
	CommitFailed   CommitOutcome = "failed"
)

// LedgerObserver receives commit telemetry.
type LedgerObserver interface {
	ObserveCommit(outcome string, attempts int, elapsed time.Duration)
	ObserveTierChange(businessID int64, tier string)
}

// RetryOptions bounds commit retries on concurrent modification.
type RetryOptions struct {
	MaxRetries int
	Backoff    time.Duration
}

// CommitRequest describes a settled purchase to be written to the ledger.
type CommitRequest struct {
	CustomerID     string
	BusinessID     int64
	Amount         decimal.Decimal
	PointsRedeemed int64
}

// Enrollment is the state a scan produces: the pair exists and is ready for purchases.
type Enrollment struct {
	Customer model.Customer
	Business model.Business
	Entry    model.LedgerEntry
}

// LedgerDeps groups LedgerUseCase collaborators.
type LedgerDeps struct {
	Ledger       repository.LedgerRepository
	Transactions repository.TransactionRepository
	Businesses   repository.BusinessRepository
	Customers    repository.CustomerRepository
	Tiers        *TierUseCase
	Policy       Policy
	Retry        RetryOptions
	Observer     LedgerObserver
	Logger       *slog.Logger
}

// LedgerUseCase owns balances and applies purchases atomically.
type LedgerUseCase struct {
	ledger       repository.LedgerRepository
	transactions repository.TransactionRepository
	businesses   repository.BusinessRepository
	customers    repository.CustomerRepository
	tiers        *TierUseCase
	policy       Policy
	retry        RetryOptions
	observer     LedgerObserver
	logger       *slog.Logger
	now          func() time.Time
}

// NewLedgerUseCase constructs LedgerUseCase.
func NewLedgerUseCase(d LedgerDeps) *LedgerUseCase {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if d.Retry.MaxRetries < 0 {
		d.Retry.MaxRetries = 0
	}
	return &LedgerUseCase{
		ledger:       d.Ledger,
		transactions: d.Transactions,
		businesses:   d.Businesses,
		customers:    d.Customers,
		tiers:        d.Tiers,
		policy:       d.Policy,
		retry:        d.Retry,
		observer:     d.Observer,
		logger:       logger,
		now:          time.Now,
	}
}

// Policy returns the accrual and redemption rules in force.
func (u *LedgerUseCase) Policy() Policy {
	return u.policy
}

// Enroll records the customer and makes sure a ledger entry exists for the business.
func (u *LedgerUseCase) Enroll(ctx context.Context, customer model.Customer, businessID int64) (*Enrollment, error) {
	customer.ID = strings.TrimSpace(customer.ID)
	if customer.ID == "" {
		return nil, domainErrors.ErrCustomerNotFound
	}
	business, err := u.business(ctx, businessID)
	if err != nil {
		return nil, err
	}
	stored, err := u.customers.Upsert(ctx, customer)
	if err != nil {
		return nil, err
	}
	entry, err := u.ledger.EnsureEntry(ctx, stored.ID, business.ID)
	if err != nil {
		return nil, err
	}
	return &Enrollment{Customer: *stored, Business: *business, Entry: *entry}, nil
}

// Balance returns the current points of the pair.
func (u *LedgerUseCase) Balance(ctx context.Context, customerID string, businessID int64) (int64, error) {
	entry, err := u.ledger.GetEntry(ctx, customerID, businessID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return 0, domainErrors.ErrCustomerNotFound
		}
		return 0, err
	}
	return entry.Points, nil
}

// Commit validates and applies a purchase. The balance read, the version guarded
// update and the transaction append happen in one storage transaction; on a
// concurrent modification the whole step is retried with a linear backoff.
func (u *LedgerUseCase) Commit(ctx context.Context, req CommitRequest) (*model.CommitResult, error) {
	started := u.now()
	if req.Amount.Sign() <= 0 {
		u.observe(CommitRejected, 0, started)
		return nil, domainErrors.ErrInvalidAmount
	}
	if req.PointsRedeemed < 0 {
		u.observe(CommitRejected, 0, started)
		return nil, domainErrors.ErrInvalidPoints
	}
	business, err := u.business(ctx, req.BusinessID)
	if err != nil {
		u.observe(CommitRejected, 0, started)
		return nil, err
	}

	mutate := func(entry model.LedgerEntry) (model.Mutation, error) {
		return u.policy.Mutation(entry.Points, req.Amount, business.ConversionRate, req.PointsRedeemed)
	}

	var (
		tx    *model.Transaction
		entry *model.LedgerEntry
	)
	attempts := 0
	for {
		attempts++
		tx, entry, err = u.ledger.Apply(ctx, req.CustomerID, req.BusinessID, req.Amount, mutate)
		if err == nil {
			break
		}
		if !errors.Is(err, domainErrors.ErrConcurrentModification) {
			return nil, u.commitError(err, attempts, started)
		}
		if attempts > u.retry.MaxRetries {
			u.logger.Warn("commit retries exhausted",
				slog.String("customer_id", req.CustomerID),
				slog.Int64("business_id", req.BusinessID),
				slog.Int("attempts", attempts),
			)
			u.observe(CommitConflict, attempts, started)
			return nil, err
		}
		if werr := u.wait(ctx, attempts); werr != nil {
			u.observe(CommitFailed, attempts, started)
			return nil, werr
		}
	}

	result := &model.CommitResult{
		Transaction: *tx,
		NewBalance:  entry.Points,
		Attempts:    attempts,
	}
	result.Tier, result.TierChanged = u.refreshTier(ctx, *entry)
	u.observe(CommitSettled, attempts, started)

	u.logger.Info("purchase committed",
		slog.String("customer_id", req.CustomerID),
		slog.Int64("business_id", req.BusinessID),
		slog.String("amount", req.Amount.StringFixed(2)),
		slog.Int64("points_redeemed", tx.PointsRedeemed),
		slog.Int64("points_accrued", tx.PointsAccrued),
		slog.Int64("balance", entry.Points),
		slog.Int("attempts", attempts),
	)
	return result, nil
}

func (u *LedgerUseCase) commitError(err error, attempts int, started time.Time) error {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		u.observe(CommitRejected, attempts, started)
		return domainErrors.ErrCustomerNotFound
	case errors.Is(err, domainErrors.ErrInsufficientBalance),
		errors.Is(err, domainErrors.ErrRedemptionCapExceeded),
		errors.Is(err, domainErrors.ErrInvalidAmount),
		errors.Is(err, domainErrors.ErrInvalidPoints):
		u.observe(CommitRejected, attempts, started)
		return err
	default:
		u.observe(CommitFailed, attempts, started)
		return err
	}
}

func (u *LedgerUseCase) wait(ctx context.Context, attempt int) error {
	delay := u.retry.Backoff * time.Duration(attempt)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (u *LedgerUseCase) observe(outcome CommitOutcome, attempts int, started time.Time) {
	if u.observer == nil {
		return
	}
	u.observer.ObserveCommit(string(outcome), attempts, u.now().Sub(started))
}

// refreshTier recomputes the tier after a commit and persists its name.
// Failures are logged and never undo the committed purchase.
func (u *LedgerUseCase) refreshTier(ctx context.Context, entry model.LedgerEntry) (model.TierProgress, bool) {
	progress, err := u.progress(ctx, entry)
	if err != nil {
		u.logger.Warn("tier refresh failed",
			slog.String("customer_id", entry.CustomerID),
			slog.Int64("business_id", entry.BusinessID),
			slog.Any("error", err),
		)
		return model.TierProgress{}, false
	}
	name := progress.Current.Name
	if name == entry.TierName {
		return progress, false
	}
	if err := u.ledger.SetTier(ctx, entry.CustomerID, entry.BusinessID, name); err != nil {
		u.logger.Warn("tier update failed",
			slog.String("customer_id", entry.CustomerID),
			slog.Int64("business_id", entry.BusinessID),
			slog.String("tier", name),
			slog.Any("error", err),
		)
		return progress, false
	}
	if u.observer != nil {
		u.observer.ObserveTierChange(entry.BusinessID, name)
	}
	return progress, true
}

func (u *LedgerUseCase) progress(ctx context.Context, entry model.LedgerEntry) (model.TierProgress, error) {
	if u.tiers == nil {
		return model.TierProgress{}, errors.New("tier resolver is not configured")
	}
	tiers, err := u.tiers.ForBusiness(ctx, entry.BusinessID)
	if err != nil {
		return model.TierProgress{}, err
	}
	value := decimal.NewFromInt(entry.Points)
	if u.tiers.Basis() == model.TierBasisSpend {
		value, err = u.ledger.TotalSpent(ctx, entry.CustomerID, entry.BusinessID)
		if err != nil {
			return model.TierProgress{}, err
		}
	}
	return ResolveTier(value, tiers), nil
}

// GetBalance returns the balance of the pair together with tier progress.
func (u *LedgerUseCase) GetBalance(ctx context.Context, customerID string, businessID int64) (*model.Balance, error) {
	business, err := u.business(ctx, businessID)
	if err != nil {
		return nil, err
	}
	entry, err := u.ledger.GetEntry(ctx, customerID, businessID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrCustomerNotFound
		}
		return nil, err
	}
	progress, err := u.progress(ctx, *entry)
	if err != nil {
		return nil, err
	}
	return &model.Balance{Business: *business, Points: entry.Points, Tier: progress}, nil
}

// Profile aggregates every balance of the customer.
func (u *LedgerUseCase) Profile(ctx context.Context, customerID string) (*model.Profile, error) {
	customer, err := u.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrCustomerNotFound
		}
		return nil, err
	}
	entries, err := u.ledger.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	profile := &model.Profile{Customer: *customer, Balances: make([]model.Balance, 0, len(entries))}
	for _, entry := range entries {
		business, err := u.businesses.GetByID(ctx, entry.BusinessID)
		if err != nil {
			return nil, err
		}
		progress, err := u.progress(ctx, entry)
		if err != nil {
			return nil, err
		}
		profile.Balances = append(profile.Balances, model.Balance{Business: *business, Points: entry.Points, Tier: progress})
	}
	return profile, nil
}

// Transactions lists the newest purchases of the pair.
func (u *LedgerUseCase) Transactions(ctx context.Context, customerID string, businessID int64, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = defaultTransactionsLimit
	}
	if limit > maxTransactionsLimit {
		limit = maxTransactionsLimit
	}
	if _, err := u.business(ctx, businessID); err != nil {
		return nil, err
	}
	return u.transactions.ListByPair(ctx, customerID, businessID, limit)
}

// Stats summarises visits of the customer at the business.
func (u *LedgerUseCase) Stats(ctx context.Context, customerID string, businessID int64) (*model.VisitStats, error) {
	if _, err := u.business(ctx, businessID); err != nil {
		return nil, err
	}
	txs, err := u.transactions.ListByPair(ctx, customerID, businessID, 0)
	if err != nil {
		return nil, err
	}
	stats := ComputeVisitStats(txs, u.now())
	return &stats, nil
}

func (u *LedgerUseCase) business(ctx context.Context, id int64) (*model.Business, error) {
	business, err := u.businesses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}
