// Command hopswap wires the multi-venue swap engine from configuration.
//
// Usage:
//
//	hopswap setup            (interactive configuration wizard)
//	hopswap --config config.yaml
//	hopswap (uses CLI arguments)
//
// The engine needs a wallet implementation to execute trades; the binary
// starts, reports any trades interrupted before a terminal state and exits.
// Embed the app package to run trades programmatically.
package main

import (
	"context"
	"log"
	"os"

	"github.com/vadiminshakov/hopswap/config"
	"github.com/vadiminshakov/hopswap/internal/app"
	"github.com/vadiminshakov/hopswap/internal/setup"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	engine, err := app.New(context.Background(), logger, cfg)
	if err != nil {
		logger.Fatal("failed to build engine", zap.Error(err))
	}
	defer engine.Close()

	unfinished, err := engine.UnfinishedTrades()
	if err != nil {
		logger.Fatal("failed to read trade journal", zap.Error(err))
	}
	for _, tradeID := range unfinished {
		events, err := engine.TradeEvents(tradeID)
		if err != nil {
			logger.Warn("failed to read trade events", zap.String("trade_id", tradeID), zap.Error(err))
			continue
		}
		last := events[len(events)-1]
		logger.Warn("trade interrupted before completion",
			zap.String("trade_id", tradeID),
			zap.String("venue", last.Venue),
			zap.String("phase", last.Phase.String()),
			zap.Int("hop", last.Hop),
			zap.String("tx_id", last.TxID))
	}

	logger.Info("engine initialized",
		zap.String("thornode", cfg.ThornodeURL),
		zap.String("zrx", cfg.ZrxURL),
		zap.String("evm_chain", cfg.EVMChainID),
		zap.Int("unfinished_trades", len(unfinished)))
	logger.Info("no wallet configured, exiting; embed the app package to execute trades")
}
