// Package chain defines the chain-adapter boundary consumed by the engine
// and an EVM implementation of it. Adapters build unsigned transactions,
// report confirmation status and read on-chain allowances; they never sign.
package chain

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/hopswap/internal/domain"
)

// ErrAllowanceUnsupported is returned by adapters for chains that have no
// token allowance concept.
var ErrAllowanceUnsupported = errors.New("chain does not support allowances")

// BuildTxInput is the chain-agnostic input for building a hop or approval
// transaction.
type BuildTxInput struct {
	From string
	To   string
	// Value native coin amount in base units, nil for pure contract calls.
	Value *big.Int
	// Data contract call data, nil for memo-routed transfers.
	Data []byte
	// Memo routing memo for chains that carry one on the transfer itself.
	Memo string
}

// Adapter is the per-chain boundary the engine drives execution through.
type Adapter interface {
	ChainID() string
	BuildTransaction(ctx context.Context, input BuildTxInput) (*domain.UnsignedTx, error)
	TransactionStatus(ctx context.Context, txID string) (domain.TxStatus, error)
	// Allowance reads the current on-chain allowance granted by owner to
	// spender for the given token contract.
	Allowance(ctx context.Context, token, owner, spender string) (*big.Int, error)
}
