package domain

import "math/big"

// UnsignedTx is a chain-agnostic transaction built by a chain adapter and
// handed to the wallet for signing and broadcast.
type UnsignedTx struct {
	ChainID string
	From    string
	To      string
	// Value native coin amount in base units, nil for pure contract calls.
	Value *big.Int
	// Data contract call data for EVM chains.
	Data []byte
	// Memo on-chain routing memo for memo-based chains.
	Memo     string
	GasLimit uint64
}

// TxStatus is the confirmation state of a broadcast transaction.
type TxStatus int

const (
	TxUnknown TxStatus = iota
	TxPending
	TxConfirmed
	TxFailed
)

func (s TxStatus) String() string {
	switch s {
	case TxPending:
		return "pending"
	case TxConfirmed:
		return "confirmed"
	case TxFailed:
		return "failed"
	default:
		return "unknown"
	}
}
