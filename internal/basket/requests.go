package basket

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationErrors maps a JSON field path to its validation messages.
type ValidationErrors map[string][]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(v[field], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (v ValidationErrors) add(field, msg string) {
	for _, existing := range v[field] {
		if existing == msg {
			return
		}
	}
	v[field] = append(v[field], msg)
}

// AddItemRequest is the body of POST /basket/items.
type AddItemRequest struct {
	ProductID          string           `json:"productId" validate:"required,uuid,notnil"`
	ProductName        string           `json:"productName" validate:"required,max=200"`
	UnitPrice          decimal.Decimal  `json:"unitPrice" validate:"gt=0"`
	Currency           string           `json:"currency" validate:"omitempty,len=3,alpha"`
	Quantity           *int             `json:"quantity" validate:"omitempty,gte=1"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
}

// AddItemsRequest is the body of POST /basket/items/bulk.
type AddItemsRequest struct {
	Items []AddItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ApplyDiscountCodeRequest is the body of POST /basket/discount-code.
type ApplyDiscountCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// SetShippingRequest is the body of POST /basket/shipping.
type SetShippingRequest struct {
	CountryCode string `json:"countryCode" validate:"required,min=2,max=3"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("notnil", func(fl validator.FieldLevel) bool {
		id, err := uuid.Parse(fl.Field().String())
		return err == nil && id != uuid.Nil
	})
	return v
}

// Validate checks a request body and returns nil or the failing fields.
// String fields are trimmed in place first.
func Validate(req any) ValidationErrors {
	switch r := req.(type) {
	case *AddItemRequest:
		r.normalize()
	case *AddItemsRequest:
		for idx := range r.Items {
			r.Items[idx].normalize()
		}
	case *ApplyDiscountCodeRequest:
		r.Code = strings.TrimSpace(r.Code)
	case *SetShippingRequest:
		r.CountryCode = strings.TrimSpace(r.CountryCode)
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{"body": {err.Error()}}
	}
	out := ValidationErrors{}
	for _, fe := range fieldErrs {
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		out.add(path, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		if field == "items" {
			return "At least one item must be provided."
		}
		return field + " is required."
	case "uuid":
		return field + " must be a valid UUID."
	case "notnil":
		return field + " must not be empty."
	case "gt":
		if fe.Param() == "0" {
			return field + " must be greater than zero."
		}
		return fmt.Sprintf("%s must be greater than %s.", field, fe.Param())
	case "gte", "lte":
		if field == "discountPercentage" {
			return field + " must be between 0 and 100."
		}
		return fmt.Sprintf("%s must be at least %s.", field, fe.Param())
	case "len", "alpha":
		return field + " must be a 3-letter currency code."
	case "min", "max":
		switch field {
		case "items":
			return "At least one item must be provided."
		case "countryCode":
			return field + " should be 2 or 3 characters."
		}
		return fmt.Sprintf("%s has an invalid length.", field)
	}
	return field + " is invalid."
}

func (r *AddItemRequest) normalize() {
	r.ProductID = strings.TrimSpace(r.ProductID)
	r.ProductName = strings.TrimSpace(r.ProductName)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}

// Input converts a validated request to a service input, applying defaults.
func (r AddItemRequest) Input() (ItemInput, error) {
	id, err := uuid.Parse(r.ProductID)
	if err != nil {
		return ItemInput{}, ValidationErrors{"productId": {"productId must be a valid UUID."}}
	}
	if id == uuid.Nil {
		return ItemInput{}, ValidationErrors{"productId": {"productId must not be empty."}}
	}
	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	currency := r.Currency
	if currency == "" {
		currency = BaseCurrency
	}
	return ItemInput{
		ProductID:          id,
		ProductName:        r.ProductName,
		UnitPrice:          r.UnitPrice,
		Currency:           currency,
		Quantity:           quantity,
		DiscountPercentage: r.DiscountPercentage,
	}, nil
}
