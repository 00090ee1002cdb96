package basket

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-basket/internal/pricing"
)

// DefaultVATRate is applied when callers do not supply a rate.
var DefaultVATRate = decimal.RequireFromString("0.20")

// Basket is the aggregate root for one shopper's in-progress order. It is not
// safe for concurrent use; Service serializes access per basket id.
type Basket struct {
	id           uuid.UUID
	items        []*Item
	discountCode *DiscountCode
	shippingCost *ShippingCost
}

// New returns an empty basket. A nil id is replaced with a random one.
func New(id uuid.UUID) *Basket {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Basket{id: id}
}

func (b *Basket) ID() uuid.UUID { return b.id }

// Currency is the currency of the first item, or BaseCurrency when empty.
func (b *Basket) Currency() string {
	if len(b.items) == 0 {
		return BaseCurrency
	}
	return b.items[0].Currency()
}

// Items returns the lines in insertion order. The slice is a copy; the items are not.
func (b *Basket) Items() []*Item {
	out := make([]*Item, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Basket) DiscountCode() (DiscountCode, bool) {
	if b.discountCode == nil {
		return DiscountCode{}, false
	}
	return *b.discountCode, true
}

func (b *Basket) ShippingCost() (ShippingCost, bool) {
	if b.shippingCost == nil {
		return ShippingCost{}, false
	}
	return *b.shippingCost, true
}

// AddItem appends item, or merges its quantity into the existing line with the
// same product id. The merged line keeps its own price and discount.
func (b *Basket) AddItem(item *Item) error {
	if item == nil {
		return ErrNullItem
	}
	if len(b.items) > 0 && item.Currency() != b.Currency() {
		return fmt.Errorf("%w: cannot add item with currency %s to basket with currency %s",
			ErrCurrencyMismatch, item.Currency(), b.Currency())
	}
	if existing := b.find(item.productID); existing != nil {
		return existing.IncreaseQuantityBy(item.quantity)
	}
	b.items = append(b.items, item)
	return nil
}

// AddItems adds every item or none of them.
func (b *Basket) AddItems(items ...*Item) error {
	staged := b.Clone()
	for idx, item := range items {
		if err := staged.AddItem(item); err != nil {
			return fmt.Errorf("item %d: %w", idx, err)
		}
	}
	b.items = staged.items
	return nil
}

// RemoveItem drops the line for productID. Unknown ids are ignored.
func (b *Basket) RemoveItem(productID uuid.UUID) {
	for idx, it := range b.items {
		if it.productID == productID {
			b.items = append(b.items[:idx:idx], b.items[idx+1:]...)
			return
		}
	}
}

// ApplyDiscountCode replaces any previously applied code.
func (b *Basket) ApplyDiscountCode(code DiscountCode) {
	b.discountCode = &code
}

// SetShippingCost replaces any previously set shipping cost.
func (b *Basket) SetShippingCost(cost ShippingCost) {
	b.shippingCost = &cost
}

// Clear empties the basket and removes discount code and shipping.
func (b *Basket) Clear() {
	b.items = nil
	b.discountCode = nil
	b.shippingCost = nil
}

// TotalWithoutVAT sums the line totals, subtracts the discount code from lines
// that carry no discount of their own, then adds shipping. Item discounts and
// the basket code never stack on the same line.
func (b *Basket) TotalWithoutVAT() pricing.Money {
	total := decimal.Zero
	eligible := decimal.Zero
	for _, it := range b.items {
		line := it.TotalPrice().Amount
		total = total.Add(line)
		if !it.hasOwnDiscount() {
			eligible = eligible.Add(line)
		}
	}
	if b.discountCode != nil {
		total = total.Sub(eligible.Mul(b.discountCode.percentage.Div(hundred)))
	}
	if b.shippingCost != nil {
		// shipping is added as-is; its currency is assumed to match.
		total = total.Add(b.shippingCost.amount.Amount)
	}
	return pricing.New(total, b.Currency())
}

// TotalWithVAT returns TotalWithoutVAT × (1 + rate). rate must lie in [0,1].
func (b *Basket) TotalWithVAT(rate decimal.Decimal) (pricing.Money, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return pricing.Money{}, ErrVATRateRange
	}
	net := b.TotalWithoutVAT()
	return net.Add(net.Mul(rate))
}

// Clone returns a deep copy.
func (b *Basket) Clone() *Basket {
	c := &Basket{id: b.id}
	if len(b.items) > 0 {
		c.items = make([]*Item, len(b.items))
		for idx, it := range b.items {
			c.items[idx] = it.clone()
		}
	}
	if b.discountCode != nil {
		d := *b.discountCode
		c.discountCode = &d
	}
	if b.shippingCost != nil {
		s := *b.shippingCost
		c.shippingCost = &s
	}
	return c
}

func (b *Basket) find(productID uuid.UUID) *Item {
	for _, it := range b.items {
		if it.productID == productID {
			return it
		}
	}
	return nil
}
