package pricing

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func gbp(amount string) Money {
	return New(decimal.RequireFromString(amount), "GBP")
}

func TestAddSubSameCurrency(t *testing.T) {
	sum, err := gbp("10.50").Add(gbp("4.50"))
	require.NoError(t, err)
	require.True(t, sum.Equal(gbp("15")))

	diff, err := gbp("10").Sub(gbp("2.25"))
	require.NoError(t, err)
	require.True(t, diff.Equal(gbp("7.75")))
}

func TestCurrencyMismatch(t *testing.T) {
	usd := New(decimal.NewFromInt(1), "USD")
	_, err := gbp("1").Add(usd)
	require.True(t, errors.Is(err, ErrCurrencyMismatch))
	_, err = gbp("1").Sub(usd)
	require.True(t, errors.Is(err, ErrCurrencyMismatch))
}

func TestMulDiv(t *testing.T) {
	require.True(t, gbp("12.5").Mul(decimal.NewFromInt(4)).Equal(gbp("50")))

	q, err := gbp("9").Div(decimal.NewFromInt(3))
	require.NoError(t, err)
	require.True(t, q.Equal(gbp("3")))

	_, err = gbp("9").Div(decimal.Zero)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestPercent(t *testing.T) {
	require.True(t, gbp("100").Percent(decimal.NewFromInt(20)).Equal(gbp("20")))
}

func TestJSONAmountIsNumber(t *testing.T) {
	out, err := json.Marshal(gbp("25.5"))
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":25.5,"currency":"GBP"}`, string(out))

	var back Money
	require.NoError(t, json.Unmarshal(out, &back))
	require.True(t, back.Equal(gbp("25.5")))
	require.Equal(t, "25.50 GBP", back.String())
}
