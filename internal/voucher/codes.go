package voucher

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-basket/internal/basket"
)

// DefaultCodes is the built-in discount table: code → percentage off.
var DefaultCodes = map[string]decimal.Decimal{
	"SUMMER20":  decimal.NewFromInt(20),
	"WELCOME10": decimal.NewFromInt(10),
}

// Catalog validates discount codes against a fixed table. Lookups are
// case-insensitive and return the code in its canonical upper-case form.
type Catalog struct {
	codes map[string]decimal.Decimal
}

// NewCatalog builds a catalog from codes, or DefaultCodes when codes is empty.
func NewCatalog(codes map[string]decimal.Decimal) *Catalog {
	if len(codes) == 0 {
		codes = DefaultCodes
	}
	normalized := make(map[string]decimal.Decimal, len(codes))
	for code, pct := range codes {
		normalized[normalize(code)] = pct
	}
	return &Catalog{codes: normalized}
}

// Validate implements basket.DiscountLookup.
func (c *Catalog) Validate(_ context.Context, code string) (basket.DiscountCode, error) {
	key := normalize(code)
	pct, ok := c.codes[key]
	if !ok || key == "" {
		return basket.DiscountCode{}, fmt.Errorf("%w: %s", basket.ErrInvalidDiscountCode, code)
	}
	return basket.NewDiscountCode(key, pct)
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
