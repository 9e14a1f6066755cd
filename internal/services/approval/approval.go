// Package approval manages ERC-20 token allowances for trade hops: deciding
// whether a spender needs approval, broadcasting the approval transaction and
// polling until the allowance clears on chain.
package approval

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/hopswap/internal/chain"
	"github.com/vadiminshakov/hopswap/internal/domain"
	"github.com/vadiminshakov/hopswap/internal/wallet"
	"github.com/vadiminshakov/hopswap/pkg/poller"
	"go.uber.org/zap"
)

const defaultPollInterval = 5 * time.Second

// Config configures the manager.
type Config struct {
	// PollInterval wait between allowance reads, defaultPollInterval when zero.
	PollInterval time.Duration
	// MaxPollAttempts caps allowance polling; zero polls until the caller
	// cancels. Unbounded is the default because block confirmation latency
	// is not caller-controlled.
	MaxPollAttempts int
}

// Manager checks and executes allowance approvals.
type Manager struct {
	registry        *chain.Registry
	pollInterval    time.Duration
	maxPollAttempts int
	l               *zap.Logger
}

func NewManager(l *zap.Logger, registry *chain.Registry, cfg Config) *Manager {
	interval := cfg.PollInterval
	if interval == 0 {
		interval = defaultPollInterval
	}

	return &Manager{
		registry:        registry,
		pollInterval:    interval,
		maxPollAttempts: cfg.MaxPollAttempts,
		l:               l,
	}
}

// CheckApprovalNeeded reports whether the hop's spender lacks sufficient
// allowance. Native sells and hops without a spender never need approval.
// The comparison is strict base-unit integer comparison.
func (m *Manager) CheckApprovalNeeded(ctx context.Context, step domain.TradeQuoteStep, w wallet.Wallet) (bool, error) {
	if step.AllowanceContract == "" || step.SellAsset.IsNative() {
		return false, nil
	}

	adapter, ok := m.registry.Get(step.SellAsset.ChainID)
	if !ok {
		return false, errors.Errorf("no chain adapter for %s", step.SellAsset.ChainID)
	}

	owner, err := w.Address(ctx, step.SellAsset.ChainID)
	if err != nil {
		return false, errors.Wrap(err, "resolve owner address")
	}

	allowance, err := adapter.Allowance(ctx, step.SellAsset.Contract, owner, step.AllowanceContract)
	if err != nil {
		return false, errors.Wrapf(err, "read allowance for %s", step.SellAsset.Contract)
	}

	return allowance.Cmp(step.SellAmount) < 0, nil
}

// State computes the approval state of a hop before execution: NotRequired,
// or Required with the spender and amount.
func (m *Manager) State(ctx context.Context, step domain.TradeQuoteStep, w wallet.Wallet) (domain.ApprovalState, error) {
	needed, err := m.CheckApprovalNeeded(ctx, step, w)
	if err != nil {
		return domain.ApprovalState{}, err
	}
	if !needed {
		return domain.ApprovalState{Status: domain.ApprovalNotRequired}, nil
	}
	return domain.ApprovalState{
		Status:         domain.ApprovalRequired,
		Spender:        step.AllowanceContract,
		RequiredAmount: step.SellAmount,
	}, nil
}

// ExecuteApproval builds and broadcasts an approval for the hop's spender,
// then polls on-chain allowance until it clears the required amount. The
// broadcast is never retried: resubmitting on top of a possibly-pending
// approval burns gas for nothing. Transient read failures during polling are
// swallowed and polling continues.
func (m *Manager) ExecuteApproval(ctx context.Context, step domain.TradeQuoteStep, w wallet.Wallet) (domain.ApprovalState, error) {
	failed := func(err error) (domain.ApprovalState, error) {
		return domain.ApprovalState{
			Status:         domain.ApprovalFailed,
			Spender:        step.AllowanceContract,
			RequiredAmount: step.SellAmount,
			Reason:         err,
		}, err
	}

	capability := wallet.CapabilityForChain(step.SellAsset.ChainID)
	if !w.HasCapability(capability) {
		return failed(errors.Errorf("wallet lacks %s signing capability", capability))
	}

	adapter, ok := m.registry.Get(step.SellAsset.ChainID)
	if !ok {
		return failed(errors.Errorf("no chain adapter for %s", step.SellAsset.ChainID))
	}

	owner, err := w.Address(ctx, step.SellAsset.ChainID)
	if err != nil {
		return failed(errors.Wrap(err, "resolve owner address"))
	}

	calldata, err := chain.ERC20ApproveCalldata(step.AllowanceContract, step.SellAmount)
	if err != nil {
		return failed(errors.Wrap(err, "build approve calldata"))
	}

	tx, err := adapter.BuildTransaction(ctx, chain.BuildTxInput{
		From: owner,
		To:   step.SellAsset.Contract,
		Data: calldata,
	})
	if err != nil {
		return failed(errors.Wrap(err, "build approval transaction"))
	}

	txID, err := w.SignAndSend(ctx, tx)
	if err != nil {
		return failed(errors.Wrap(err, "broadcast approval"))
	}

	m.l.Info("approval broadcast, waiting for allowance",
		zap.String("token", step.SellAsset.Contract),
		zap.String("spender", step.AllowanceContract),
		zap.String("tx_id", txID))

	_, err = poller.Poll(ctx, poller.Args[bool]{
		Fn: func(ctx context.Context) (bool, error) {
			needed, err := m.CheckApprovalNeeded(ctx, step, w)
			if err != nil {
				// a single failed read is not a failed approval
				m.l.Debug("allowance read failed, will retry", zap.Error(err))
				return false, nil
			}
			return !needed, nil
		},
		Validate:    func(cleared bool) bool { return cleared },
		Interval:    m.pollInterval,
		MaxAttempts: m.maxPollAttempts,
	})
	if err != nil {
		state, _ := failed(errors.Wrap(err, "await allowance confirmation"))
		state.TxID = txID
		return state, state.Reason
	}

	return domain.ApprovalState{
		Status:         domain.ApprovalConfirmed,
		Spender:        step.AllowanceContract,
		RequiredAmount: step.SellAmount,
		TxID:           txID,
	}, nil
}
