package baseunit

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnit(t *testing.T) {
	t.Run("whole amount", func(t *testing.T) {
		got := ToBaseUnit(decimal.RequireFromString("1.5"), 18)
		want, ok := new(big.Int).SetString("1500000000000000000", 10)
		require.True(t, ok)
		assert.Equal(t, 0, got.Cmp(want))
	})

	t.Run("rounds down", func(t *testing.T) {
		// 0.123456789 at precision 8 cannot be represented exactly
		got := ToBaseUnit(decimal.RequireFromString("0.123456789"), 8)
		assert.Equal(t, int64(12345678), got.Int64())
	})

	t.Run("zero", func(t *testing.T) {
		assert.Equal(t, int64(0), ToBaseUnit(decimal.Zero, 8).Int64())
	})
}

func TestRoundTrip(t *testing.T) {
	// converting to base units and back at the same precision must be exact
	// for amounts representable at that precision
	for _, s := range []string{"0.00000001", "1", "123.45678901", "0.5"} {
		amount := decimal.RequireFromString(s)
		back := FromBaseUnit(ToBaseUnit(amount, 8), 8)
		assert.True(t, amount.Equal(back), "round trip changed %s to %s", amount, back)
	}
}

func TestConvertPrecision(t *testing.T) {
	t.Run("shrink rounds down", func(t *testing.T) {
		// 1.999999999 ETH-wei style value to base 8
		in, ok := new(big.Int).SetString("1999999999999999999", 10)
		require.True(t, ok)
		got := ConvertPrecision(in, 18, 8)
		assert.Equal(t, int64(199999999), got.Int64())
	})

	t.Run("grow is exact", func(t *testing.T) {
		got := ConvertPrecision(big.NewInt(12345678), 8, 18)
		want, ok := new(big.Int).SetString("123456780000000000", 10)
		require.True(t, ok)
		assert.Equal(t, 0, got.Cmp(want))
	})
}

func TestTruncatesAt(t *testing.T) {
	in, ok := new(big.Int).SetString("1000000000000000001", 10)
	require.True(t, ok)
	assert.True(t, TruncatesAt(in, 18, 8))

	exact, ok := new(big.Int).SetString("1000000000000000000", 10)
	require.True(t, ok)
	assert.False(t, TruncatesAt(exact, 18, 8))
	assert.False(t, TruncatesAt(in, 18, 18))
}
