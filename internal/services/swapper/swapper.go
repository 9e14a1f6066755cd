// Package swapper defines the venue adapter contract. Each liquidity venue
// implements Swapper behind its own subpackage; the set of venues is closed
// and registered statically at startup.
package swapper

import (
	"context"
	"math/big"

	"github.com/vadiminshakov/hopswap/internal/domain"
)

// QuoteInput is the normalized request every venue adapter accepts.
type QuoteInput struct {
	SellAsset domain.Asset
	BuyAsset  domain.Asset
	// SellAmount amount to sell in sell asset base units.
	SellAmount *big.Int
	// ReceiveAddress destination address on the buy asset's chain.
	ReceiveAddress string
	// AffiliateBps affiliate fee in basis points.
	AffiliateBps int64
	// SlippageBps slippage tolerance in basis points.
	SlippageBps int64
}

// Swapper quotes swaps on a single liquidity venue. GetQuote returns a
// normalized *domain.TradeQuote or a *domain.QuoteError; adapters perform one
// HTTP request and mutate no shared state.
type Swapper interface {
	Name() string
	// SupportsPair is a cheap prefilter; a true result does not guarantee
	// the venue will quote the pair.
	SupportsPair(sell, buy domain.Asset) bool
	GetQuote(ctx context.Context, input QuoteInput) (*domain.TradeQuote, error)
}
