package domain

import "math/big"

// ApprovalStatus is the lifecycle position of a token allowance approval.
type ApprovalStatus int

const (
	// ApprovalNotRequired the spender already holds sufficient allowance,
	// or the sell asset cannot require one.
	ApprovalNotRequired ApprovalStatus = iota
	// ApprovalRequired on-chain allowance is below the required amount.
	ApprovalRequired
	// ApprovalPending an approval transaction has been broadcast.
	ApprovalPending
	// ApprovalConfirmed polling observed a sufficient on-chain allowance.
	ApprovalConfirmed
	// ApprovalFailed broadcast failed or the attempt was abandoned.
	ApprovalFailed
)

func (s ApprovalStatus) String() string {
	switch s {
	case ApprovalNotRequired:
		return "not_required"
	case ApprovalRequired:
		return "required"
	case ApprovalPending:
		return "pending"
	case ApprovalConfirmed:
		return "confirmed"
	case ApprovalFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ApprovalState is computed fresh per hop before building that hop's
// transaction.
type ApprovalState struct {
	Status ApprovalStatus
	// Spender router/vault contract that needs the allowance.
	Spender string
	// RequiredAmount minimum allowance in sell asset base units.
	RequiredAmount *big.Int
	// TxID approval transaction id once broadcast.
	TxID string
	// Reason set when Status is ApprovalFailed.
	Reason error
}
