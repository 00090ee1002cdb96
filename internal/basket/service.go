package basket

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/backend-basket/internal/lock"
	"github.com/noah-isme/backend-basket/internal/obs"
	"github.com/noah-isme/backend-basket/internal/pricing"
)

// Repository returns the basket for id, creating an empty one when needed.
// Implementations may return (nil, nil) when they refuse to create.
type Repository interface {
	GetOrCreate(ctx context.Context, id uuid.UUID) (*Basket, error)
}

// DiscountLookup resolves a discount code. Unknown codes yield ErrInvalidDiscountCode.
type DiscountLookup interface {
	Validate(ctx context.Context, code string) (DiscountCode, error)
}

// ShippingLookup prices shipping to a country.
type ShippingLookup interface {
	ShippingCost(ctx context.Context, countryCode string) (ShippingCost, error)
}

// Locker runs fn while holding an exclusive lock on key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// ItemInput carries a validated add-item request into the service.
type ItemInput struct {
	ProductID          uuid.UUID
	ProductName        string
	UnitPrice          decimal.Decimal
	Currency           string
	Quantity           int
	DiscountPercentage *decimal.Decimal
}

// Service orchestrates repository access, locking and lookups around the Basket aggregate.
type Service struct {
	Repo      Repository
	Discounts DiscountLookup
	Shipping  ShippingLookup
	Locks     Locker
	VATRate   *decimal.Decimal
	Logger    *zerolog.Logger

	fallbackOnce  sync.Once
	fallbackLocks Locker
}

var tracer = otel.Tracer("basket.service")

// Get returns a snapshot of the basket.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Basket, error) {
	s.logger().Info().Str("basket_id", id.String()).Msg("retrieving basket")
	return s.run(ctx, "get", id, func(*Basket) error { return nil })
}

// AddItem adds one line. A missing basket is an error.
func (s *Service) AddItem(ctx context.Context, id uuid.UUID, in ItemInput) (*Basket, error) {
	s.logger().Info().
		Str("basket_id", id.String()).
		Str("product_id", in.ProductID.String()).
		Str("product_name", in.ProductName).
		Int("quantity", in.Quantity).
		Msg("adding item")
	item, err := in.toItem()
	if err != nil {
		obs.RecordBasketOperation("add_item", err)
		return nil, err
	}
	return s.run(ctx, "add_item", id, func(b *Basket) error {
		return b.AddItem(item)
	})
}

// AddItems adds all lines atomically.
func (s *Service) AddItems(ctx context.Context, id uuid.UUID, in []ItemInput) (*Basket, error) {
	s.logger().Info().Str("basket_id", id.String()).Int("item_count", len(in)).Msg("adding multiple items")
	items := make([]*Item, 0, len(in))
	for _, it := range in {
		item, err := it.toItem()
		if err != nil {
			obs.RecordBasketOperation("add_items", err)
			return nil, err
		}
		items = append(items, item)
	}
	return s.run(ctx, "add_items", id, func(b *Basket) error {
		return b.AddItems(items...)
	})
}

// RemoveItem removes the line for productID if present.
func (s *Service) RemoveItem(ctx context.Context, id, productID uuid.UUID) (*Basket, error) {
	s.logger().Info().Str("basket_id", id.String()).Str("product_id", productID.String()).Msg("removing item")
	return s.run(ctx, "remove_item", id, func(b *Basket) error {
		b.RemoveItem(productID)
		return nil
	})
}

// TotalWithoutVAT returns the net total.
func (s *Service) TotalWithoutVAT(ctx context.Context, id uuid.UUID) (pricing.Money, error) {
	s.logger().Info().Str("basket_id", id.String()).Msg("calculating total without vat")
	var total pricing.Money
	_, err := s.run(ctx, "total_without_vat", id, func(b *Basket) error {
		total = b.TotalWithoutVAT()
		return nil
	})
	return total, err
}

// TotalWithVAT returns the gross total. A nil rate uses the configured VAT rate.
func (s *Service) TotalWithVAT(ctx context.Context, id uuid.UUID, rate *decimal.Decimal) (pricing.Money, error) {
	vat := s.vatRate()
	if rate != nil {
		vat = *rate
	}
	s.logger().Info().Str("basket_id", id.String()).Str("vat_rate", vat.String()).Msg("calculating total with vat")
	var total pricing.Money
	_, err := s.run(ctx, "total_with_vat", id, func(b *Basket) error {
		var err error
		total, err = b.TotalWithVAT(vat)
		return err
	})
	return total, err
}

// ApplyDiscountCode validates code with the discount lookup and applies it.
func (s *Service) ApplyDiscountCode(ctx context.Context, id uuid.UUID, code string) (*Basket, error) {
	s.logger().Info().Str("basket_id", id.String()).Str("discount_code", code).Msg("applying discount code")
	if s == nil || s.Discounts == nil {
		return nil, ErrNotConfigured
	}
	discount, err := s.Discounts.Validate(ctx, code)
	if err != nil {
		obs.RecordBasketOperation("apply_discount_code", err)
		return nil, err
	}
	return s.run(ctx, "apply_discount_code", id, func(b *Basket) error {
		b.ApplyDiscountCode(discount)
		return nil
	})
}

// SetShipping prices shipping for countryCode and stores it on the basket.
func (s *Service) SetShipping(ctx context.Context, id uuid.UUID, countryCode string) (*Basket, error) {
	s.logger().Info().Str("basket_id", id.String()).Str("country_code", countryCode).Msg("setting shipping")
	if s == nil || s.Shipping == nil {
		return nil, ErrNotConfigured
	}
	cost, err := s.Shipping.ShippingCost(ctx, countryCode)
	if err != nil {
		obs.RecordBasketOperation("set_shipping", err)
		return nil, err
	}
	cost = NewShippingCost(cost.Amount(), strings.ToUpper(strings.TrimSpace(cost.CountryCode())))
	return s.run(ctx, "set_shipping", id, func(b *Basket) error {
		b.SetShippingCost(cost)
		return nil
	})
}

// Clear empties the basket.
func (s *Service) Clear(ctx context.Context, id uuid.UUID) (*Basket, error) {
	s.logger().Info().Str("basket_id", id.String()).Msg("clearing basket")
	return s.run(ctx, "clear", id, func(b *Basket) error {
		b.Clear()
		return nil
	})
}

// run loads the basket and applies fn under the basket's lock, returning a
// snapshot taken before the lock is released.
func (s *Service) run(ctx context.Context, op string, id uuid.UUID, fn func(*Basket) error) (*Basket, error) {
	if s == nil || s.Repo == nil {
		return nil, ErrNotConfigured
	}
	ctx, span := tracer.Start(ctx, "basket."+op)
	defer span.End()
	span.SetAttributes(attribute.String("basket.id", id.String()))

	var snapshot *Basket
	err := s.locks().WithLock(ctx, LockKey(id), func(ctx context.Context) error {
		b, err := s.Repo.GetOrCreate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrBasketNotFound
		}
		if err := fn(b); err != nil {
			return err
		}
		snapshot = b.Clone()
		return nil
	})
	obs.RecordBasketOperation(op, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("basket.items", len(snapshot.items)))
	return snapshot, nil
}

// LockKey is the lock name guarding a basket.
func LockKey(id uuid.UUID) string {
	return "basket:lock:" + id.String()
}

func (s *Service) locks() Locker {
	if s.Locks != nil {
		return s.Locks
	}
	s.fallbackOnce.Do(func() {
		s.fallbackLocks = lock.NewKeyed()
	})
	return s.fallbackLocks
}

func (s *Service) vatRate() decimal.Decimal {
	if s == nil || s.VATRate == nil {
		return DefaultVATRate
	}
	return *s.VATRate
}

func (s *Service) logger() *zerolog.Logger {
	if s == nil || s.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return s.Logger
}

func (in ItemInput) toItem() (*Item, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = BaseCurrency
	}
	return NewItem(in.ProductID, in.ProductName, pricing.New(in.UnitPrice, currency), in.Quantity, in.DiscountPercentage)
}
