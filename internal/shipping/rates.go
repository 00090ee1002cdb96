package shipping

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-basket/internal/basket"
	"github.com/noah-isme/backend-basket/internal/pricing"
)

// DefaultRates are flat shipping charges in the base currency by country code.
var DefaultRates = map[string]decimal.Decimal{
	"UK": decimal.RequireFromString("3.00"),
	"US": decimal.RequireFromString("5.00"),
	"DE": decimal.RequireFromString("4.00"),
}

// DefaultFallback is charged for countries missing from the table.
var DefaultFallback = decimal.RequireFromString("10.00")

// RateTable prices shipping from a fixed table and never fails for unknown
// countries.
type RateTable struct {
	Rates    map[string]decimal.Decimal
	Fallback decimal.Decimal
	Currency string
}

// NewRateTable returns a table loaded with DefaultRates.
func NewRateTable() RateTable {
	return RateTable{Rates: DefaultRates, Fallback: DefaultFallback, Currency: basket.BaseCurrency}
}

// ShippingCost implements basket.ShippingLookup.
func (t RateTable) ShippingCost(ctx context.Context, countryCode string) (basket.ShippingCost, error) {
	if err := ctx.Err(); err != nil {
		return basket.ShippingCost{}, err
	}
	country := strings.ToUpper(strings.TrimSpace(countryCode))
	currency := t.Currency
	if currency == "" {
		currency = basket.BaseCurrency
	}
	amount, ok := t.Rates[country]
	if !ok {
		amount = t.Fallback
	}
	return basket.NewShippingCost(pricing.New(amount, currency), country), nil
}
