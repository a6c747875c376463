package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/domain/repository"
)

const maxTierNameLength = 64

var (
	defaultSpendTiers = []model.RewardTier{
		{Name: "Bronze", MinThreshold: decimal.Zero, CashbackPercent: decimal.NewFromInt(5)},
		{Name: "Silver", MinThreshold: decimal.NewFromInt(10000), CashbackPercent: decimal.NewFromInt(10)},
		{Name: "Gold", MinThreshold: decimal.NewFromInt(50000), CashbackPercent: decimal.NewFromInt(15)},
	}
	defaultPointsTiers = []model.RewardTier{
		{Name: "Bronze", MinThreshold: decimal.Zero, CashbackPercent: decimal.NewFromInt(5)},
		{Name: "Silver", MinThreshold: decimal.NewFromInt(500), CashbackPercent: decimal.NewFromInt(10)},
		{Name: "Gold", MinThreshold: decimal.NewFromInt(1000), CashbackPercent: decimal.NewFromInt(15)},
	}
)

// DefaultTiers returns a copy of the built-in tier table for the basis.
func DefaultTiers(basis model.TierBasis) []model.RewardTier {
	src := defaultSpendTiers
	if basis == model.TierBasisPoints {
		src = defaultPointsTiers
	}
	return append([]model.RewardTier(nil), src...)
}

// ResolveTier picks the highest tier whose threshold is reached by value.
// When value is below every threshold the current tier is empty and Rank is -1.
func ResolveTier(value decimal.Decimal, tiers []model.RewardTier) model.TierProgress {
	tiers = sortedTiers(tiers)
	progress := model.TierProgress{Rank: -1, Value: value, ProgressPercent: decimal.Zero}
	for i, tier := range tiers {
		if value.LessThan(tier.MinThreshold) {
			break
		}
		progress.Rank = i
		progress.Current = tier
	}

	nextIdx := progress.Rank + 1
	if nextIdx >= len(tiers) {
		if len(tiers) > 0 {
			progress.ProgressPercent = hundred
		}
		return progress
	}
	next := tiers[nextIdx]
	progress.Next = &next

	floor := decimal.Zero
	if progress.Rank >= 0 {
		floor = progress.Current.MinThreshold
	}
	span := next.MinThreshold.Sub(floor)
	if span.Sign() <= 0 {
		progress.ProgressPercent = hundred
		return progress
	}
	pct := value.Sub(floor).Mul(hundred).Div(span).Round(1)
	switch {
	case pct.Sign() < 0:
		pct = decimal.Zero
	case pct.GreaterThan(hundred):
		pct = hundred
	}
	progress.ProgressPercent = pct
	return progress
}

func sortedTiers(tiers []model.RewardTier) []model.RewardTier {
	out := append([]model.RewardTier(nil), tiers...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinThreshold.LessThan(out[j].MinThreshold) })
	return out
}

// ValidateTiers normalises a tier table and checks it describes a strict ladder
// starting at zero.
func ValidateTiers(tiers []model.RewardTier) ([]model.RewardTier, error) {
	if len(tiers) == 0 {
		return nil, domainErrors.ErrInvalidTiers
	}
	out := make([]model.RewardTier, len(tiers))
	seen := make(map[string]struct{}, len(tiers))
	for i, tier := range tiers {
		tier.Name = strings.TrimSpace(tier.Name)
		if tier.Name == "" || len(tier.Name) > maxTierNameLength {
			return nil, domainErrors.ErrInvalidTiers
		}
		key := strings.ToLower(tier.Name)
		if _, dup := seen[key]; dup {
			return nil, domainErrors.ErrInvalidTiers
		}
		seen[key] = struct{}{}
		if tier.MinThreshold.Sign() < 0 {
			return nil, domainErrors.ErrInvalidTiers
		}
		if tier.CashbackPercent.Sign() < 0 || tier.CashbackPercent.GreaterThan(hundred) {
			return nil, domainErrors.ErrInvalidTiers
		}
		out[i] = tier
	}
	out = sortedTiers(out)
	if !out[0].MinThreshold.IsZero() {
		return nil, domainErrors.ErrInvalidTiers
	}
	for i := 1; i < len(out); i++ {
		if !out[i].MinThreshold.GreaterThan(out[i-1].MinThreshold) {
			return nil, domainErrors.ErrInvalidTiers
		}
	}
	return out, nil
}

// TierUseCase resolves and manages reward tiers of businesses.
type TierUseCase struct {
	tiers      repository.TierRepository
	businesses repository.BusinessRepository
	basis      model.TierBasis
}

// NewTierUseCase constructs TierUseCase.
func NewTierUseCase(tiers repository.TierRepository, businesses repository.BusinessRepository, basis model.TierBasis) *TierUseCase {
	if basis != model.TierBasisPoints {
		basis = model.TierBasisSpend
	}
	return &TierUseCase{tiers: tiers, businesses: businesses, basis: basis}
}

// Basis reports the value tiers are measured against.
func (u *TierUseCase) Basis() model.TierBasis {
	return u.basis
}

// ForBusiness returns the custom tiers of a business or the default table.
func (u *TierUseCase) ForBusiness(ctx context.Context, businessID int64) ([]model.RewardTier, error) {
	tiers, err := u.tiers.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return DefaultTiers(u.basis), nil
	}
	return sortedTiers(tiers), nil
}

// Replace validates and stores a new tier table for a business owned by the operator.
func (u *TierUseCase) Replace(ctx context.Context, operatorID, businessID int64, tiers []model.RewardTier) ([]model.RewardTier, error) {
	business, err := u.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrBusinessNotFound
		}
		return nil, err
	}
	if business.OperatorID != operatorID {
		return nil, domainErrors.ErrForbidden
	}
	normalized, err := ValidateTiers(tiers)
	if err != nil {
		return nil, err
	}
	for i := range normalized {
		normalized[i].BusinessID = businessID
	}
	if err := u.tiers.Replace(ctx, businessID, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}
