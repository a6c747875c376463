package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/domain/repository"
)

const maxBusinessNameLength = 100

// DefaultConversionRate is applied when an operator omits the rate.
var DefaultConversionRate = decimal.NewFromInt(10)

// ErrInvalidBusinessName is returned for blank or oversized business names.
var ErrInvalidBusinessName = errors.New("invalid business name")

// BusinessUseCase manages businesses owned by operators.
type BusinessUseCase struct {
	businesses repository.BusinessRepository
}

// NewBusinessUseCase constructs BusinessUseCase.
func NewBusinessUseCase(businesses repository.BusinessRepository) *BusinessUseCase {
	return &BusinessUseCase{businesses: businesses}
}

// Create enrolls a new business. The rate is a percent of the amount in (0, 100].
func (u *BusinessUseCase) Create(ctx context.Context, operatorID int64, name string, rate *decimal.Decimal) (*model.Business, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxBusinessNameLength {
		return nil, ErrInvalidBusinessName
	}
	conversion := DefaultConversionRate
	if rate != nil {
		conversion = *rate
	}
	if conversion.Sign() <= 0 || conversion.GreaterThan(hundred) || !conversion.Equal(conversion.Truncate(2)) {
		return nil, domainErrors.ErrInvalidConversionRate
	}
	return u.businesses.Create(ctx, operatorID, name, conversion)
}

// List returns businesses owned by the operator.
func (u *BusinessUseCase) List(ctx context.Context, operatorID int64) ([]model.Business, error) {
	return u.businesses.ListByOperator(ctx, operatorID)
}

// Get returns a business by id.
func (u *BusinessUseCase) Get(ctx context.Context, id int64) (*model.Business, error) {
	business, err := u.businesses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}
