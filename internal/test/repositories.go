package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/domain/repository"
)

// OperatorRepositoryStub stores operators in-memory for tests.
type OperatorRepositoryStub struct {
	Operators map[string]*model.Operator
	ByID      map[int64]*model.Operator
	Next      int64
	Err       error
}

// NewOperatorRepositoryStub constructs stub repository with initialized maps.
func NewOperatorRepositoryStub() *OperatorRepositoryStub {
	return &OperatorRepositoryStub{
		Operators: make(map[string]*model.Operator),
		ByID:      make(map[int64]*model.Operator),
		Next:      1,
	}
}

// Create registers operator unless already exists or stub has explicit error.
func (s *OperatorRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.Operator, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Operators[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	op := &model.Operator{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Operators[login] = op
	s.ByID[op.ID] = op
	return op, nil
}

// GetByLogin fetches operator by login or returns not found.
func (s *OperatorRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Operator, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if op, ok := s.Operators[login]; ok {
		return op, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches operator by identifier or returns not found.
func (s *OperatorRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Operator, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if op, ok := s.ByID[id]; ok {
		return op, nil
	}
	return nil, domainErrors.ErrNotFound
}

// CustomerRepositoryStub keeps customers keyed by platform id.
type CustomerRepositoryStub struct {
	mu        sync.Mutex
	Customers map[string]*model.Customer
	Err       error
}

// NewCustomerRepositoryStub constructs an empty customer stub.
func NewCustomerRepositoryStub() *CustomerRepositoryStub {
	return &CustomerRepositoryStub{Customers: make(map[string]*model.Customer)}
}

// Upsert stores customer or refreshes non-empty profile fields.
func (s *CustomerRepositoryStub) Upsert(ctx context.Context, customer model.Customer) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Customers == nil {
		s.Customers = make(map[string]*model.Customer)
	}
	stored, ok := s.Customers[customer.ID]
	if !ok {
		c := customer
		c.CreatedAt = time.Now()
		s.Customers[c.ID] = &c
		out := c
		return &out, nil
	}
	if customer.DisplayName != "" {
		stored.DisplayName = customer.DisplayName
	}
	if customer.Handle != "" {
		stored.Handle = customer.Handle
	}
	out := *stored
	return &out, nil
}

// GetByID returns the customer or not found.
func (s *CustomerRepositoryStub) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if c, ok := s.Customers[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

// BusinessRepositoryStub stores businesses in-memory.
type BusinessRepositoryStub struct {
	mu         sync.Mutex
	Businesses map[int64]*model.Business
	Next       int64
	Err        error
}

// NewBusinessRepositoryStub constructs an empty business stub.
func NewBusinessRepositoryStub() *BusinessRepositoryStub {
	return &BusinessRepositoryStub{Businesses: make(map[int64]*model.Business), Next: 1}
}

// Add stores a business directly and returns it.
func (s *BusinessRepositoryStub) Add(b model.Business) *model.Business {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.Next
	}
	if b.ID >= s.Next {
		s.Next = b.ID + 1
	}
	s.Businesses[b.ID] = &b
	return &b
}

// Create registers a business for the operator.
func (s *BusinessRepositoryStub) Create(ctx context.Context, operatorID int64, name string, conversionRate decimal.Decimal) (*model.Business, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Add(model.Business{Name: name, ConversionRate: conversionRate, OperatorID: operatorID, CreatedAt: time.Now()}), nil
}

// GetByID returns the business or not found.
func (s *BusinessRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if b, ok := s.Businesses[id]; ok {
		out := *b
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByOperator returns businesses owned by the operator ordered by id.
func (s *BusinessRepositoryStub) ListByOperator(ctx context.Context, operatorID int64) ([]model.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Business
	for _, b := range s.Businesses {
		if b.OperatorID == operatorID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type ledgerKey struct {
	customer string
	business int64
}

// LedgerRepositoryStub is an in-memory ledger guarded by a single mutex.
// It also serves as the transaction log.
type LedgerRepositoryStub struct {
	mu           sync.Mutex
	entries      map[ledgerKey]*model.LedgerEntry
	transactions []model.Transaction
	nextTx       int64

	// Conflicts makes the next N Apply calls fail with a concurrent modification.
	Conflicts  int
	ApplyCalls int
	Err        error
	ApplyErr   error
	SetTierErr error
	Now        func() time.Time
}

// NewLedgerRepositoryStub constructs an empty ledger.
func NewLedgerRepositoryStub() *LedgerRepositoryStub {
	return &LedgerRepositoryStub{entries: make(map[ledgerKey]*model.LedgerEntry), nextTx: 1}
}

func (s *LedgerRepositoryStub) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Seed sets the balance of a pair, creating the entry when missing.
func (s *LedgerRepositoryStub) Seed(customerID string, businessID int64, points int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ledgerKey{customerID, businessID}] = &model.LedgerEntry{
		CustomerID: customerID,
		BusinessID: businessID,
		Points:     points,
		UpdatedAt:  s.now(),
	}
}

// SeedTransaction appends a historical transaction without touching balances.
func (s *LedgerRepositoryStub) SeedTransaction(tx model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextTx
	s.nextTx++
	s.transactions = append(s.transactions, tx)
}

// Transactions returns a copy of the recorded transaction log.
func (s *LedgerRepositoryStub) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.transactions...)
}

// EnsureEntry returns the pair entry creating it when absent.
func (s *LedgerRepositoryStub) EnsureEntry(ctx context.Context, customerID string, businessID int64) (*model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	key := ledgerKey{customerID, businessID}
	entry, ok := s.entries[key]
	if !ok {
		entry = &model.LedgerEntry{CustomerID: customerID, BusinessID: businessID, UpdatedAt: s.now()}
		s.entries[key] = entry
	}
	out := *entry
	return &out, nil
}

// GetEntry returns the pair entry or not found.
func (s *LedgerRepositoryStub) GetEntry(ctx context.Context, customerID string, businessID int64) (*model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	entry, ok := s.entries[ledgerKey{customerID, businessID}]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *entry
	return &out, nil
}

// ListByCustomer returns every entry of a customer ordered by business id.
func (s *LedgerRepositoryStub) ListByCustomer(ctx context.Context, customerID string) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.LedgerEntry
	for key, entry := range s.entries {
		if key.customer == customerID {
			out = append(out, *entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusinessID < out[j].BusinessID })
	return out, nil
}

// Apply mirrors the storage contract: read, compute, version-checked write, append.
func (s *LedgerRepositoryStub) Apply(ctx context.Context, customerID string, businessID int64, amount decimal.Decimal, fn repository.MutationFunc) (*model.Transaction, *model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ApplyCalls++
	if s.Err != nil {
		return nil, nil, s.Err
	}
	if s.ApplyErr != nil {
		return nil, nil, s.ApplyErr
	}
	if s.Conflicts > 0 {
		s.Conflicts--
		return nil, nil, domainErrors.ErrConcurrentModification
	}
	entry, ok := s.entries[ledgerKey{customerID, businessID}]
	if !ok {
		return nil, nil, domainErrors.ErrNotFound
	}
	mutation, err := fn(*entry)
	if err != nil {
		return nil, nil, err
	}
	next := entry.Points - mutation.PointsRedeemed + mutation.PointsAccrued
	if next < 0 {
		return nil, nil, domainErrors.InsufficientBalanceError{Balance: entry.Points}
	}
	now := s.now()
	entry.Points = next
	entry.Version++
	entry.UpdatedAt = now

	tx := model.Transaction{
		ID:             s.nextTx,
		CustomerID:     customerID,
		BusinessID:     businessID,
		Amount:         amount,
		PointsRedeemed: mutation.PointsRedeemed,
		PointsAccrued:  mutation.PointsAccrued,
		CreatedAt:      now,
	}
	s.nextTx++
	s.transactions = append(s.transactions, tx)

	out := *entry
	return &tx, &out, nil
}

// SetTier stores the tier name of the pair.
func (s *LedgerRepositoryStub) SetTier(ctx context.Context, customerID string, businessID int64, tierName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetTierErr != nil {
		return s.SetTierErr
	}
	entry, ok := s.entries[ledgerKey{customerID, businessID}]
	if !ok {
		return domainErrors.ErrNotFound
	}
	entry.TierName = tierName
	return nil
}

// TotalSpent sums recorded purchase amounts of the pair.
func (s *LedgerRepositoryStub) TotalSpent(ctx context.Context, customerID string, businessID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, tx := range s.transactions {
		if tx.CustomerID == customerID && tx.BusinessID == businessID {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// ListByPair returns the newest transactions of the pair first.
func (s *LedgerRepositoryStub) ListByPair(ctx context.Context, customerID string, businessID int64, limit int) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		tx := s.transactions[i]
		if tx.CustomerID != customerID || tx.BusinessID != businessID {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// TierRepositoryStub keeps custom tiers per business.
type TierRepositoryStub struct {
	mu       sync.Mutex
	Tiers    map[int64][]model.RewardTier
	Err      error
	Replaced int
}

// NewTierRepositoryStub constructs an empty tier stub.
func NewTierRepositoryStub() *TierRepositoryStub {
	return &TierRepositoryStub{Tiers: make(map[int64][]model.RewardTier)}
}

// ListByBusiness returns tiers ordered by threshold.
func (s *TierRepositoryStub) ListByBusiness(ctx context.Context, businessID int64) ([]model.RewardTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.RewardTier(nil), s.Tiers[businessID]...), nil
}

// Replace swaps the tier table of a business.
func (s *TierRepositoryStub) Replace(ctx context.Context, businessID int64, tiers []model.RewardTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Replaced++
	s.Tiers[businessID] = append([]model.RewardTier(nil), tiers...)
	return nil
}

var (
	_ repository.OperatorRepository    = (*OperatorRepositoryStub)(nil)
	_ repository.CustomerRepository    = (*CustomerRepositoryStub)(nil)
	_ repository.BusinessRepository    = (*BusinessRepositoryStub)(nil)
	_ repository.LedgerRepository      = (*LedgerRepositoryStub)(nil)
	_ repository.TransactionRepository = (*LedgerRepositoryStub)(nil)
	_ repository.TierRepository        = (*TierRepositoryStub)(nil)
)
