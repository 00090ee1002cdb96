package basket

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-basket/internal/pricing"
)

// BaseCurrency is the basket currency while no items are present.
const BaseCurrency = "GBP"

var hundred = decimal.NewFromInt(100)

// DiscountCode is a validated basket-level percentage reduction.
type DiscountCode struct {
	code       string
	percentage decimal.Decimal
}

// NewDiscountCode validates and constructs a discount code.
func NewDiscountCode(code string, percentage decimal.Decimal) (DiscountCode, error) {
	if strings.TrimSpace(code) == "" {
		return DiscountCode{}, ErrEmptyDiscountCode
	}
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return DiscountCode{}, ErrDiscountCodeRange
	}
	return DiscountCode{code: code, percentage: percentage}, nil
}

func (d DiscountCode) Code() string                { return d.code }
func (d DiscountCode) Percentage() decimal.Decimal { return d.percentage }

// ShippingCost is a flat charge for a destination country.
type ShippingCost struct {
	amount      pricing.Money
	countryCode string
}

// NewShippingCost constructs a shipping cost record.
func NewShippingCost(amount pricing.Money, countryCode string) ShippingCost {
	return ShippingCost{amount: amount, countryCode: countryCode}
}

func (s ShippingCost) Amount() pricing.Money { return s.amount }
func (s ShippingCost) CountryCode() string   { return s.countryCode }
