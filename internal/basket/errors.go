package basket

import (
	"errors"
	"fmt"

	"github.com/noah-isme/backend-basket/internal/pricing"
)

var (
	// ErrNullOrEmptyInput is the root of missing-value errors.
	ErrNullOrEmptyInput = errors.New("value is required")
	// ErrOutOfRange is the root of range violations (quantity, percentages, VAT rate).
	ErrOutOfRange = errors.New("value out of range")
	// ErrCurrencyMismatch is returned when mixing currencies in one basket.
	ErrCurrencyMismatch = pricing.ErrCurrencyMismatch
	// ErrDivisionByZero is returned by money division.
	ErrDivisionByZero = pricing.ErrDivisionByZero
	// ErrBasketNotFound is returned when the repository yields no basket.
	ErrBasketNotFound = errors.New("basket not found")
	// ErrInvalidDiscountCode is returned by discount lookups for unknown codes.
	ErrInvalidDiscountCode = errors.New("invalid discount code")
	// ErrNotConfigured indicates a service dependency was not wired.
	ErrNotConfigured = errors.New("basket service not configured")
)

var (
	ErrNullItem          = fmt.Errorf("%w: item cannot be nil", ErrNullOrEmptyInput)
	ErrEmptyProductID    = fmt.Errorf("%w: product id cannot be empty", ErrNullOrEmptyInput)
	ErrBlankProductName  = fmt.Errorf("%w: product name cannot be blank", ErrNullOrEmptyInput)
	ErrEmptyDiscountCode = fmt.Errorf("%w: discount code cannot be empty", ErrNullOrEmptyInput)
	ErrNegativeUnitPrice = fmt.Errorf("%w: unit price cannot be negative", ErrOutOfRange)
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be at least 1", ErrOutOfRange)
	ErrItemDiscountRange = fmt.Errorf("%w: discount percentage must be between 0 and 100", ErrOutOfRange)
	ErrDiscountCodeRange = fmt.Errorf("%w: discount code percentage must be between 0 and 100", ErrOutOfRange)
	ErrVATRateRange      = fmt.Errorf("%w: vat rate must be between 0 and 1", ErrOutOfRange)
)

// IsBusinessRule reports whether err is a domain rule violation rather than an
// infrastructure failure. The HTTP layer maps these to 400.
func IsBusinessRule(err error) bool {
	for _, target := range []error{
		ErrNullOrEmptyInput,
		ErrOutOfRange,
		ErrCurrencyMismatch,
		ErrDivisionByZero,
		ErrBasketNotFound,
		ErrInvalidDiscountCode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
