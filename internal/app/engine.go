// Package app wires the swap engine together: venue adapters, quote
// aggregation, allowance approvals, execution and the trade journal.
package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/hopswap/config"
	"github.com/vadiminshakov/hopswap/internal/chain"
	"github.com/vadiminshakov/hopswap/internal/domain"
	"github.com/vadiminshakov/hopswap/internal/services/aggregator"
	"github.com/vadiminshakov/hopswap/internal/services/approval"
	"github.com/vadiminshakov/hopswap/internal/services/executor"
	"github.com/vadiminshakov/hopswap/internal/services/pricer"
	"github.com/vadiminshakov/hopswap/internal/services/swapper"
	"github.com/vadiminshakov/hopswap/internal/services/swapper/thorchain"
	"github.com/vadiminshakov/hopswap/internal/services/swapper/zrx"
	"github.com/vadiminshakov/hopswap/internal/storage/trades"
	"github.com/vadiminshakov/hopswap/internal/wallet"
	"go.uber.org/zap"
)

// Engine is the assembled swap engine. The embedding application supplies a
// wallet at execution time and feeds Prices from its market data source.
type Engine struct {
	Aggregator *aggregator.Aggregator
	Approvals  *approval.Manager
	Executor   *executor.Executor
	Registry   *chain.Registry
	Prices     *pricer.Static

	journal *trades.Journal
	l       *zap.Logger
}

// New builds the engine from configuration. The EVM chain adapter is dialed
// only when an RPC url is configured; without it EVM quotes still work but
// approvals and execution on EVM chains will fail with a missing adapter.
func New(ctx context.Context, l *zap.Logger, cfg config.Config) (*Engine, error) {
	journal, err := trades.NewJournal(cfg.JournalDir)
	if err != nil {
		return nil, errors.Wrap(err, "open trade journal")
	}

	registry := chain.NewRegistry()
	if cfg.EVMRPCURL != "" {
		adapter, err := chain.NewEVMAdapter(ctx, cfg.EVMChainID, cfg.EVMRPCURL)
		if err != nil {
			return nil, errors.Wrap(err, "dial EVM chain")
		}
		registry.Register(adapter)
	}

	prices := pricer.NewStatic()

	thorSwapper := thorchain.New(thorchain.Config{
		DaemonURL: cfg.ThornodeURL,
		Timeout:   cfg.QuoteTimeout,
	}, l)
	zrxSwapper := zrx.New(zrx.Config{
		APIURL:       cfg.ZrxURL,
		ChainID:      cfg.EVMChainID,
		NativeAsset:  nativeAssetFor(cfg.EVMChainID),
		FeeRecipient: cfg.FeeRecipient,
		Timeout:      cfg.QuoteTimeout,
	}, l)

	approvals := approval.NewManager(l, registry, approval.Config{
		PollInterval: cfg.ApprovalInterval,
	})

	return &Engine{
		Aggregator: aggregator.New(l, prices, thorSwapper, zrxSwapper),
		Approvals:  approvals,
		Executor: executor.New(l, approvals, registry, journal, executor.Config{
			ConfirmPollInterval: cfg.ConfirmInterval,
			MaxConfirmAttempts:  cfg.MaxConfirmAttempts,
		}),
		Registry: registry,
		Prices:   prices,
		journal:  journal,
		l:        l,
	}, nil
}

// BestQuote fans the request out to every venue and returns the ranked result.
func (e *Engine) BestQuote(ctx context.Context, input swapper.QuoteInput) aggregator.BestQuoteResult {
	return e.Aggregator.GetBestQuote(ctx, input)
}

// Execute runs the quote with the supplied wallet.
func (e *Engine) Execute(ctx context.Context, quote *domain.TradeQuote, w wallet.Wallet) (<-chan domain.ExecutionState, error) {
	return e.Executor.Execute(ctx, quote, w)
}

// UnfinishedTrades lists trades interrupted before reaching a terminal state,
// for reconciliation after a restart.
func (e *Engine) UnfinishedTrades() ([]string, error) {
	return e.journal.Unfinished()
}

// TradeEvents returns the journaled transitions of one trade.
func (e *Engine) TradeEvents(tradeID string) ([]domain.ExecutionEvent, error) {
	return e.journal.Events(tradeID)
}

func (e *Engine) Close() error {
	return e.journal.Close()
}

func nativeAssetFor(chainID string) domain.Asset {
	switch chainID {
	case "eip155:43114":
		return domain.Asset{ChainID: chainID, Symbol: "AVAX", Precision: 18}
	case "eip155:56":
		return domain.Asset{ChainID: chainID, Symbol: "BNB", Precision: 18}
	default:
		return domain.Asset{ChainID: chainID, Symbol: "ETH", Precision: 18}
	}
}
