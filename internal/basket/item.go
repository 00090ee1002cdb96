package basket

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-basket/internal/pricing"
)

// Item is a basket line. Its quantity only grows, through IncreaseQuantityBy.
type Item struct {
	productID          uuid.UUID
	productName        string
	unitPrice          pricing.Money
	quantity           int
	discountPercentage *decimal.Decimal
}

// NewItem validates the line and returns it. discountPercentage may be nil.
func NewItem(productID uuid.UUID, productName string, unitPrice pricing.Money, quantity int, discountPercentage *decimal.Decimal) (*Item, error) {
	if productID == uuid.Nil {
		return nil, ErrEmptyProductID
	}
	if strings.TrimSpace(productName) == "" {
		return nil, ErrBlankProductName
	}
	if unitPrice.Amount.IsNegative() {
		return nil, ErrNegativeUnitPrice
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	var pct *decimal.Decimal
	if discountPercentage != nil {
		if discountPercentage.IsNegative() || discountPercentage.GreaterThan(hundred) {
			return nil, ErrItemDiscountRange
		}
		v := *discountPercentage
		pct = &v
	}
	return &Item{
		productID:          productID,
		productName:        productName,
		unitPrice:          unitPrice,
		quantity:           quantity,
		discountPercentage: pct,
	}, nil
}

func (i *Item) ProductID() uuid.UUID     { return i.productID }
func (i *Item) ProductName() string      { return i.productName }
func (i *Item) UnitPrice() pricing.Money { return i.unitPrice }
func (i *Item) Quantity() int            { return i.quantity }
func (i *Item) Currency() string         { return i.unitPrice.Currency }

// DiscountPercentage returns the per-item discount when one was set.
func (i *Item) DiscountPercentage() (decimal.Decimal, bool) {
	if i.discountPercentage == nil {
		return decimal.Zero, false
	}
	return *i.discountPercentage, true
}

// hasOwnDiscount reports a non-zero per-item discount. Such lines are excluded
// from basket-level discount codes.
func (i *Item) hasOwnDiscount() bool {
	return i.discountPercentage != nil && !i.discountPercentage.IsZero()
}

// IncreaseQuantityBy adds n to the quantity.
func (i *Item) IncreaseQuantityBy(n int) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	i.quantity += n
	return nil
}

// TotalPrice is unitPrice × quantity, reduced by the per-item discount.
func (i *Item) TotalPrice() pricing.Money {
	total := i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
	if i.discountPercentage != nil {
		total = total.Mul(decimal.NewFromInt(1).Sub(i.discountPercentage.Div(hundred)))
	}
	return total
}

func (i *Item) clone() *Item {
	c := *i
	if i.discountPercentage != nil {
		v := *i.discountPercentage
		c.discountPercentage = &v
	}
	return &c
}
