// Package domain defines core data structures used throughout the swap engine.
package domain

import (
	"fmt"
	"strings"
)

// Asset identifies a token on a specific chain.
type Asset struct {
	// ChainID chain identifier, e.g. "eip155:1" or "thorchain-mainnet-v1".
	ChainID string
	// Contract token contract address, empty for the chain's native asset.
	Contract string
	// Symbol display symbol, e.g. "ETH".
	Symbol string
	// Precision decimal exponent of the base unit (18 for ETH, 8 for BTC).
	Precision int32
}

// ID returns the canonical asset identifier.
func (a Asset) ID() string {
	if a.IsNative() {
		return fmt.Sprintf("%s/native:%s", a.ChainID, strings.ToUpper(a.Symbol))
	}
	return fmt.Sprintf("%s/%s", a.ChainID, strings.ToLower(a.Contract))
}

// IsNative reports whether the asset is the chain's native coin.
func (a Asset) IsNative() bool {
	return a.Contract == ""
}

func (a Asset) String() string {
	return a.ID()
}
