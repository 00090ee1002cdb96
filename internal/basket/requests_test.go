package basket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeRequest[T any](t *testing.T, body string) *T {
	t.Helper()
	var req T
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestValidateAddItemRequest(t *testing.T) {
	req := decodeRequest[AddItemRequest](t, `{"productId":"5f8d7f0c-3b4a-4d1e-9a4c-2f1f6f1e2a11","productName":" Shirt ","unitPrice":10.00}`)
	require.Nil(t, Validate(req))
	require.Equal(t, "Shirt", req.ProductName)

	in, err := req.Input()
	require.NoError(t, err)
	require.Equal(t, 1, in.Quantity)
	require.Equal(t, BaseCurrency, in.Currency)
}

func TestValidateAddItemRequestFailures(t *testing.T) {
	req := decodeRequest[AddItemRequest](t, `{"productId":"nope","productName":"  ","unitPrice":0,"quantity":0,"discountPercentage":120,"currency":"pounds"}`)
	errs := Validate(req)
	require.Equal(t, []string{"productId must be a valid UUID."}, errs["productId"])
	require.Equal(t, []string{"productName is required."}, errs["productName"])
	require.Equal(t, []string{"unitPrice must be greater than zero."}, errs["unitPrice"])
	require.Equal(t, []string{"quantity must be at least 1."}, errs["quantity"])
	require.Equal(t, []string{"discountPercentage must be between 0 and 100."}, errs["discountPercentage"])
	require.Equal(t, []string{"currency must be a 3-letter currency code."}, errs["currency"])
}

func TestValidateAddItemRequestRejectsNilProductID(t *testing.T) {
	req := decodeRequest[AddItemRequest](t, `{"productId":"00000000-0000-0000-0000-000000000000","productName":"Shirt","unitPrice":10}`)
	errs := Validate(req)
	require.Equal(t, []string{"productId must not be empty."}, errs["productId"])

	_, err := req.Input()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Contains(t, verrs, "productId")
}

func TestValidateAddItemsRequest(t *testing.T) {
	errs := Validate(decodeRequest[AddItemsRequest](t, `{"items":[]}`))
	require.Equal(t, []string{"At least one item must be provided."}, errs["items"])

	errs = Validate(decodeRequest[AddItemsRequest](t, `{"items":[{"productId":"5f8d7f0c-3b4a-4d1e-9a4c-2f1f6f1e2a11","productName":"Mug","unitPrice":-1}]}`))
	require.Equal(t, []string{"unitPrice must be greater than zero."}, errs["items[0].unitPrice"])
}

func TestValidateDiscountAndShippingRequests(t *testing.T) {
	errs := Validate(&ApplyDiscountCodeRequest{Code: "   "})
	require.Equal(t, []string{"code is required."}, errs["code"])
	require.Nil(t, Validate(&ApplyDiscountCodeRequest{Code: "SUMMER20"}))

	errs = Validate(&SetShippingRequest{CountryCode: "UNITED"})
	require.Equal(t, []string{"countryCode should be 2 or 3 characters."}, errs["countryCode"])
	require.Nil(t, Validate(&SetShippingRequest{CountryCode: " uk "}))
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{"b": {"bad"}, "a": {"worse"}}
	require.Equal(t, "validation failed: a: worse, b: bad", errs.Error())
}
