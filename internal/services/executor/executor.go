// Package executor drives a selected quote through the per-hop execution
// state machine: approval if needed, build, broadcast, confirmation polling,
// then the next hop.
package executor

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/hopswap/internal/chain"
	"github.com/vadiminshakov/hopswap/internal/domain"
	"github.com/vadiminshakov/hopswap/internal/services/approval"
	"github.com/vadiminshakov/hopswap/internal/wallet"
	"github.com/vadiminshakov/hopswap/pkg/poller"
	"go.uber.org/zap"
)

const defaultConfirmInterval = 10 * time.Second

// Journal receives every execution transition. Appends are best-effort; a
// journal failure never fails the trade.
type Journal interface {
	Append(event domain.ExecutionEvent) error
}

// Config configures the executor.
type Config struct {
	// ConfirmPollInterval wait between transaction status reads,
	// defaultConfirmInterval when zero.
	ConfirmPollInterval time.Duration
	// MaxConfirmAttempts caps confirmation polling per hop; zero polls
	// until the caller cancels.
	MaxConfirmAttempts int
}

// Executor sequences trade execution. Hops run strictly in order; hop i+1
// never starts before hop i confirms on chain.
type Executor struct {
	approvals       *approval.Manager
	registry        *chain.Registry
	journal         Journal
	confirmInterval time.Duration
	maxConfirm      int
	l               *zap.Logger
}

func New(l *zap.Logger, approvals *approval.Manager, registry *chain.Registry, journal Journal, cfg Config) *Executor {
	interval := cfg.ConfirmPollInterval
	if interval == 0 {
		interval = defaultConfirmInterval
	}

	return &Executor{
		approvals:       approvals,
		registry:        registry,
		journal:         journal,
		confirmInterval: interval,
		maxConfirm:      cfg.MaxConfirmAttempts,
		l:               l,
	}
}

// Execute runs the quote and returns a channel of state transitions that
// terminates at TradeComplete or TradeFailed. A malformed quote is a contract
// violation and fails immediately. Cancelling ctx stops polling but cannot
// roll back an already-broadcast transaction.
func (e *Executor) Execute(ctx context.Context, quote *domain.TradeQuote, w wallet.Wallet) (<-chan domain.ExecutionState, error) {
	if err := quote.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid quote")
	}

	// buffered for the worst-case transition count so the run loop never
	// blocks on a caller that stopped reading
	states := make(chan domain.ExecutionState, len(quote.Steps)*4+2)
	tradeID := uuid.NewString()

	go e.run(ctx, tradeID, quote, w, states)

	return states, nil
}

func (e *Executor) run(ctx context.Context, tradeID string, quote *domain.TradeQuote, w wallet.Wallet, states chan<- domain.ExecutionState) {
	defer close(states)

	emit := func(state domain.ExecutionState) {
		state.TradeID = tradeID
		states <- state

		if e.journal == nil {
			return
		}
		event := domain.ExecutionEvent{
			TradeID: tradeID,
			Venue:   quote.Venue,
			Phase:   state.Phase,
			Hop:     state.Hop,
			TxID:    state.TxID,
			Time:    time.Now(),
		}
		if state.Reason != nil {
			event.Reason = state.Reason.Error()
		}
		if err := e.journal.Append(event); err != nil {
			e.l.Warn("failed to journal execution event", zap.String("trade_id", tradeID), zap.Error(err))
		}
	}

	fail := func(hop int, err error) {
		e.l.Error("trade failed",
			zap.String("trade_id", tradeID),
			zap.String("venue", quote.Venue),
			zap.Int("hop", hop),
			zap.Error(err))
		emit(domain.ExecutionState{Phase: domain.PhaseTradeFailed, Hop: hop, Reason: err})
	}

	emit(domain.ExecutionState{Phase: domain.PhaseIdle})

	for hop, step := range quote.Steps {
		emit(domain.ExecutionState{Phase: domain.PhaseAwaitingApproval, Hop: hop})

		approvalState, err := e.approvals.State(ctx, step, w)
		if err != nil {
			fail(hop, errors.Wrap(err, "check approval"))
			return
		}
		if approvalState.Status == domain.ApprovalRequired {
			if _, err := e.approvals.ExecuteApproval(ctx, step, w); err != nil {
				fail(hop, errors.Wrap(err, "execute approval"))
				return
			}
		}

		emit(domain.ExecutionState{Phase: domain.PhaseBroadcasting, Hop: hop})

		txID, err := e.broadcastHop(ctx, step, w)
		if err != nil {
			fail(hop, err)
			return
		}

		emit(domain.ExecutionState{Phase: domain.PhaseAwaitingConfirmation, Hop: hop, TxID: txID})

		if err := e.awaitConfirmation(ctx, step, txID); err != nil {
			fail(hop, err)
			return
		}

		emit(domain.ExecutionState{Phase: domain.PhaseHopComplete, Hop: hop, TxID: txID})

		e.l.Info("hop complete",
			zap.String("trade_id", tradeID),
			zap.Int("hop", hop),
			zap.String("tx_id", txID))
	}

	emit(domain.ExecutionState{Phase: domain.PhaseTradeComplete, Hop: len(quote.Steps) - 1})
}

// broadcastHop builds the hop transaction from the quote's routing payload
// and hands it to the wallet for signing and broadcast.
func (e *Executor) broadcastHop(ctx context.Context, step domain.TradeQuoteStep, w wallet.Wallet) (string, error) {
	capability := wallet.CapabilityForChain(step.SellAsset.ChainID)
	if !w.HasCapability(capability) {
		return "", errors.Errorf("wallet lacks %s signing capability", capability)
	}

	adapter, ok := e.registry.Get(step.SellAsset.ChainID)
	if !ok {
		return "", errors.Errorf("no chain adapter for %s", step.SellAsset.ChainID)
	}

	from, err := w.Address(ctx, step.SellAsset.ChainID)
	if err != nil {
		return "", errors.Wrap(err, "resolve sender address")
	}

	to := step.Routing.To
	if to == "" {
		to = step.Routing.InboundAddress
	}

	tx, err := adapter.BuildTransaction(ctx, chain.BuildTxInput{
		From:  from,
		To:    to,
		Value: hopValue(step),
		Data:  step.Routing.Data,
		Memo:  step.Routing.Memo,
	})
	if err != nil {
		return "", errors.Wrap(err, "build hop transaction")
	}

	txID, err := w.SignAndSend(ctx, tx)
	if err != nil {
		return "", errors.Wrap(err, "broadcast hop transaction")
	}

	return txID, nil
}

// awaitConfirmation polls transaction status until a terminal state is
// observed. Transient read failures are swallowed; a reverted transaction
// fails the hop.
func (e *Executor) awaitConfirmation(ctx context.Context, step domain.TradeQuoteStep, txID string) error {
	adapter, ok := e.registry.Get(step.SellAsset.ChainID)
	if !ok {
		return errors.Errorf("no chain adapter for %s", step.SellAsset.ChainID)
	}

	status, err := poller.Poll(ctx, poller.Args[domain.TxStatus]{
		Fn: func(ctx context.Context) (domain.TxStatus, error) {
			status, err := adapter.TransactionStatus(ctx, txID)
			if err != nil {
				e.l.Debug("transaction status read failed, will retry",
					zap.String("tx_id", txID), zap.Error(err))
				return domain.TxPending, nil
			}
			return status, nil
		},
		Validate:    func(s domain.TxStatus) bool { return s == domain.TxConfirmed || s == domain.TxFailed },
		Interval:    e.confirmInterval,
		MaxAttempts: e.maxConfirm,
	})
	if err != nil {
		return errors.Wrapf(err, "await confirmation of %s", txID)
	}

	if status == domain.TxFailed {
		return errors.Errorf("transaction %s reverted on chain", txID)
	}
	return nil
}

// hopValue returns the native coin value the hop transaction must carry: the
// routing payload's value when the venue specified one, otherwise the sell
// amount for native sells.
func hopValue(step domain.TradeQuoteStep) *big.Int {
	if step.Routing.Value != nil {
		return step.Routing.Value
	}
	if step.SellAsset.IsNative() {
		return step.SellAmount
	}
	return nil
}
