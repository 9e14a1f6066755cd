package thorchain

import (
	"fmt"
	"math/big"
)

// ComputeLimit derives the minimum acceptable output for the swap memo:
// expected output scaled down by the slippage tolerance, less the outbound
// fee, in THOR base-8 units. Rounds down so the limit never overstates what
// the vault must deliver; negative results clamp to zero.
func ComputeLimit(expectedOut, outboundFee *big.Int, slippageBps int64) *big.Int {
	limit := new(big.Int).Mul(expectedOut, big.NewInt(10000-slippageBps))
	limit.Quo(limit, big.NewInt(10000))
	limit.Sub(limit, outboundFee)
	if limit.Sign() < 0 {
		limit.SetInt64(0)
	}
	return limit
}

// BuildMemo assembles the on-chain swap memo:
//
//	=:{pool}:{destination}:{limit}:{affiliate}:{bps}
func BuildMemo(buyPool, destination string, limit *big.Int, affiliate string, affiliateBps int64) string {
	return fmt.Sprintf("=:%s:%s:%s:%s:%d", buyPool, destination, limit.String(), affiliate, affiliateBps)
}
