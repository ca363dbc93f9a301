package pricing

import (
	"testing"

	"convoyage-platform/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTTC(t *testing.T) {
	tests := []struct {
		ht   string
		want string
	}{
		{"100.00", "120.00"},
		{"0", "0.00"},
		{"60.00", "72.00"},
		{"1.45", "1.74"},
		{"33.33", "40.00"}, // 39.996 rounds up
		{"0.01", "0.01"},   // 0.012 rounds down
	}
	for _, tt := range tests {
		got, err := ToTTC(tt.ht)
		require.NoError(t, err, tt.ht)
		assert.Equal(t, tt.want, got, "ToTTC(%s)", tt.ht)
	}
}

func TestToHT(t *testing.T) {
	got, err := ToHT("120.00")
	require.NoError(t, err)
	assert.Equal(t, "100.00", got)
}

func TestTaxRoundTrip(t *testing.T) {
	// For any non-negative amount with at most two decimals, converting
	// to TTC and back recovers the original at 2-decimal precision.
	for _, ht := range []string{
		"0.00", "0.05", "0.13", "0.21", "1.00", "2.50", "9.99",
		"60.00", "99.95", "100.00", "149.99", "270.00", "1234.56",
	} {
		ttc, err := ToTTC(ht)
		require.NoError(t, err)
		back, err := ToHT(ttc)
		require.NoError(t, err)

		want := decimal.RequireFromString(ht)
		got := decimal.RequireFromString(back)
		assert.True(t, want.Equal(got), "round-trip %s -> %s -> %s", ht, ttc, back)
	}
}

func TestTaxRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{"", "abc", "12,50", "1.2.3"} {
		_, err := ToTTC(in)
		assert.ErrorIs(t, err, models.ErrParse, "ToTTC(%q)", in)

		_, err = ToHT(in)
		assert.ErrorIs(t, err, models.ErrParse, "ToHT(%q)", in)
	}
}
