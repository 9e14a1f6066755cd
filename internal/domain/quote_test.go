package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	eth       = Asset{ChainID: "eip155:1", Symbol: "ETH", Precision: 18}
	runeAsset = Asset{ChainID: "cosmos:thorchain-mainnet-v1", Symbol: "RUNE", Precision: 8}
	btc       = Asset{ChainID: "bip122:000000000019d6689c085ae165831e93", Symbol: "BTC", Precision: 8}
)

func step(sell, buy Asset) TradeQuoteStep {
	return TradeQuoteStep{
		SellAsset:  sell,
		BuyAsset:   buy,
		SellAmount: big.NewInt(100),
		BuyAmount:  big.NewInt(90),
	}
}

func TestTradeQuoteValidate(t *testing.T) {
	t.Run("chained hops are valid", func(t *testing.T) {
		q := &TradeQuote{Venue: "thorchain", Steps: []TradeQuoteStep{step(eth, runeAsset), step(runeAsset, btc)}}
		require.NoError(t, q.Validate())
		assert.Equal(t, eth, q.SellAsset())
		assert.Equal(t, btc, q.BuyAsset())
		assert.Equal(t, int64(90), q.BuyAmount().Int64())
	})

	t.Run("broken hop chain is rejected", func(t *testing.T) {
		q := &TradeQuote{Venue: "thorchain", Steps: []TradeQuoteStep{step(eth, runeAsset), step(eth, btc)}}
		assert.Error(t, q.Validate())
	})

	t.Run("no steps is rejected", func(t *testing.T) {
		assert.Error(t, (&TradeQuote{Venue: "zrx"}).Validate())
	})

	t.Run("negative and missing amounts are rejected", func(t *testing.T) {
		q := &TradeQuote{Venue: "zrx", Steps: []TradeQuoteStep{step(eth, btc)}}
		q.Steps[0].SellAmount = big.NewInt(-1)
		assert.Error(t, q.Validate())

		q.Steps[0].SellAmount = big.NewInt(1)
		q.Steps[0].BuyAmount = nil
		assert.Error(t, q.Validate())
	})
}

func TestAssetID(t *testing.T) {
	usdc := Asset{ChainID: "eip155:1", Contract: "0xA0b86991C6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Precision: 6}
	assert.Equal(t, "eip155:1/0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", usdc.ID())
	assert.Equal(t, "eip155:1/native:ETH", eth.ID())
	assert.False(t, usdc.IsNative())
	assert.True(t, eth.IsNative())
}
