package domain

import "time"

// ExecutionPhase is the position of a trade in the per-hop state machine.
type ExecutionPhase int

const (
	PhaseIdle ExecutionPhase = iota
	PhaseAwaitingApproval
	PhaseBroadcasting
	PhaseAwaitingConfirmation
	PhaseHopComplete
	PhaseTradeComplete
	PhaseTradeFailed
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingApproval:
		return "awaiting_approval"
	case PhaseBroadcasting:
		return "broadcasting"
	case PhaseAwaitingConfirmation:
		return "awaiting_confirmation"
	case PhaseHopComplete:
		return "hop_complete"
	case PhaseTradeComplete:
		return "trade_complete"
	case PhaseTradeFailed:
		return "trade_failed"
	default:
		return "unknown"
	}
}

// ExecutionState is one observed transition of a running trade. Hop is the
// index of the hop the transition belongs to; for PhaseTradeFailed it is the
// hop that failed, and every hop before it completed.
type ExecutionState struct {
	// TradeID unique id of the execution, stable across all transitions.
	TradeID string
	Phase   ExecutionPhase
	Hop     int
	// TxID transaction id of the current hop, set from PhaseAwaitingConfirmation on.
	TxID string
	// Reason set when Phase is PhaseTradeFailed.
	Reason error
}

// Terminal reports whether no further transitions will follow.
func (s ExecutionState) Terminal() bool {
	return s.Phase == PhaseTradeComplete || s.Phase == PhaseTradeFailed
}

// ExecutionEvent is the journaled form of an ExecutionState transition.
type ExecutionEvent struct {
	TradeID string         `json:"trade_id"`
	Venue   string         `json:"venue"`
	Phase   ExecutionPhase `json:"phase"`
	Hop     int            `json:"hop"`
	TxID    string         `json:"tx_id,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Time    time.Time      `json:"time"`
}

// Terminal reports whether the event closes its trade.
func (e ExecutionEvent) Terminal() bool {
	return e.Phase == PhaseTradeComplete || e.Phase == PhaseTradeFailed
}
