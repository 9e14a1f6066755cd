package thorchain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLimit(t *testing.T) {
	t.Run("applies slippage then subtracts outbound fee", func(t *testing.T) {
		limit := ComputeLimit(big.NewInt(1_000_000), big.NewInt(10_000), 100)
		// 1000000 * 0.99 - 10000
		assert.Equal(t, int64(980_000), limit.Int64())
	})

	t.Run("rounds down", func(t *testing.T) {
		limit := ComputeLimit(big.NewInt(999), big.NewInt(0), 100)
		// 999 * 0.99 = 989.01
		assert.Equal(t, int64(989), limit.Int64())
	})

	t.Run("clamps to zero when fee exceeds output", func(t *testing.T) {
		limit := ComputeLimit(big.NewInt(100), big.NewInt(1000), 0)
		assert.Equal(t, int64(0), limit.Int64())
	})
}

func TestBuildMemo(t *testing.T) {
	memo := BuildMemo("BTC.BTC", "bc1qdest", big.NewInt(980000), "hop", 30)
	assert.Equal(t, "=:BTC.BTC:bc1qdest:980000:hop:30", memo)
}
