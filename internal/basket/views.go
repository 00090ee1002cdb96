package basket

import (
	"encoding/json"

	"github.com/noah-isme/backend-basket/internal/pricing"
)

// View is the JSON representation of a basket.
type View struct {
	ID              string            `json:"id"`
	Currency        string            `json:"currency"`
	Items           []ItemView        `json:"items"`
	DiscountCode    *DiscountCodeView `json:"discountCode"`
	ShippingCost    *ShippingCostView `json:"shippingCost"`
	TotalWithoutVAT pricing.Money     `json:"totalWithoutVat"`
}

type ItemView struct {
	ProductID          string        `json:"productId"`
	ProductName        string        `json:"productName"`
	UnitPrice          pricing.Money `json:"unitPrice"`
	Quantity           int           `json:"quantity"`
	DiscountPercentage *json.Number  `json:"discountPercentage"`
	TotalPrice         pricing.Money `json:"totalPrice"`
}

type DiscountCodeView struct {
	Code       string      `json:"code"`
	Percentage json.Number `json:"percentage"`
}

type ShippingCostView struct {
	Amount      pricing.Money `json:"amount"`
	CountryCode string        `json:"countryCode"`
}

// NewView renders b.
func NewView(b *Basket) View {
	items := b.Items()
	v := View{
		ID:              b.ID().String(),
		Currency:        b.Currency(),
		Items:           make([]ItemView, 0, len(items)),
		TotalWithoutVAT: b.TotalWithoutVAT(),
	}
	for _, it := range items {
		iv := ItemView{
			ProductID:   it.ProductID().String(),
			ProductName: it.ProductName(),
			UnitPrice:   it.UnitPrice(),
			Quantity:    it.Quantity(),
			TotalPrice:  it.TotalPrice(),
		}
		if pct, ok := it.DiscountPercentage(); ok {
			n := json.Number(pct.String())
			iv.DiscountPercentage = &n
		}
		v.Items = append(v.Items, iv)
	}
	if code, ok := b.DiscountCode(); ok {
		v.DiscountCode = &DiscountCodeView{Code: code.Code(), Percentage: json.Number(code.Percentage().String())}
	}
	if cost, ok := b.ShippingCost(); ok {
		v.ShippingCost = &ShippingCostView{Amount: cost.Amount(), CountryCode: cost.CountryCode()}
	}
	return v
}
