package shipping

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRateTable(t *testing.T) {
	table := NewRateTable()
	cases := []struct {
		in      string
		country string
		amount  string
	}{
		{"UK", "UK", "3"},
		{"uk", "UK", "3"},
		{"US", "US", "5"},
		{"de", "DE", "4"},
		{"FR", "FR", "10"},
		{" fra ", "FRA", "10"},
	}
	for _, tc := range cases {
		cost, err := table.ShippingCost(context.Background(), tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.country, cost.CountryCode())
		require.True(t, cost.Amount().Amount.Equal(decimal.RequireFromString(tc.amount)), tc.in)
		require.Equal(t, "GBP", cost.Amount().Currency)
	}
}

func TestRateTableCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRateTable().ShippingCost(ctx, "UK")
	require.ErrorIs(t, err, context.Canceled)
}
