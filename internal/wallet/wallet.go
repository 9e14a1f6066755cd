// Package wallet defines the signing boundary of the engine. The engine
// never holds key material; it asks the wallet to sign and broadcast
// transactions built by chain adapters.
package wallet

import (
	"context"
	"strings"

	"github.com/vadiminshakov/hopswap/internal/domain"
)

// Capability is a chain family the wallet may be able to sign for.
type Capability int

const (
	CapabilityEVM Capability = iota
	CapabilityUTXO
	CapabilityCosmos
)

func (c Capability) String() string {
	switch c {
	case CapabilityEVM:
		return "evm"
	case CapabilityUTXO:
		return "utxo"
	case CapabilityCosmos:
		return "cosmos"
	default:
		return "unknown"
	}
}

// Wallet signs and broadcasts transactions on behalf of the user.
type Wallet interface {
	// HasCapability reports whether the wallet can sign for the chain family.
	HasCapability(c Capability) bool
	// Address returns the wallet's address on the given chain.
	Address(ctx context.Context, chainID string) (string, error)
	// SignAndSend signs the transaction, broadcasts it and returns its id.
	SignAndSend(ctx context.Context, tx *domain.UnsignedTx) (string, error)
}

// CapabilityForChain maps a chain id to the capability required to sign on it.
func CapabilityForChain(chainID string) Capability {
	switch {
	case strings.HasPrefix(chainID, "eip155:"):
		return CapabilityEVM
	case strings.HasPrefix(chainID, "bip122:"):
		return CapabilityUTXO
	default:
		return CapabilityCosmos
	}
}
