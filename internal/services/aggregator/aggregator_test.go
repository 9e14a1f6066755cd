package aggregator

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/hopswap/internal/domain"
	"github.com/vadiminshakov/hopswap/internal/services/swapper"
	"go.uber.org/zap"
)

var (
	ethAsset = domain.Asset{ChainID: "eip155:1", Symbol: "ETH", Precision: 18}
	btcAsset = domain.Asset{ChainID: "bip122:000000000019d6689c085ae165831e93", Symbol: "BTC", Precision: 8}
)

type stubSwapper struct {
	name     string
	supports bool
	quote    *domain.TradeQuote
	err      error
	delay    time.Duration
}

func (s *stubSwapper) Name() string { return s.name }

func (s *stubSwapper) SupportsPair(sell, buy domain.Asset) bool { return s.supports }

func (s *stubSwapper) GetQuote(ctx context.Context, input swapper.QuoteInput) (*domain.TradeQuote, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.quote, nil
}

type stubPricer struct {
	prices map[string]decimal.Decimal
}

func (p *stubPricer) FiatPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	price, ok := p.prices[asset.Symbol]
	if !ok {
		return decimal.Zero, errors.Errorf("no price for %s", asset.Symbol)
	}
	return price, nil
}

func singleHopQuote(venue string, buySats int64, networkFeeSats int64) *domain.TradeQuote {
	return &domain.TradeQuote{
		Venue: venue,
		Steps: []domain.TradeQuoteStep{{
			SellAsset:  ethAsset,
			BuyAsset:   btcAsset,
			SellAmount: big.NewInt(1e18),
			BuyAmount:  big.NewInt(buySats),
			Fees: domain.StepFees{
				NetworkFeeAsset: btcAsset,
				NetworkFee:      big.NewInt(networkFeeSats),
				ProtocolFee:     big.NewInt(0),
			},
		}},
	}
}

func testInput() swapper.QuoteInput {
	return swapper.QuoteInput{
		SellAsset:      ethAsset,
		BuyAsset:       btcAsset,
		SellAmount:     big.NewInt(1e18),
		ReceiveAddress: "bc1qdest",
	}
}

func testPricer() *stubPricer {
	return &stubPricer{prices: map[string]decimal.Decimal{
		"BTC": decimal.NewFromInt(50_000),
		"ETH": decimal.NewFromInt(2_500),
	}}
}

func TestGetBestQuote(t *testing.T) {
	t.Run("best quote has the highest net output", func(t *testing.T) {
		// venue b buys more but pays a fee so large that a nets more
		a := &stubSwapper{name: "a", supports: true, quote: singleHopQuote("a", 10_000_000, 10_000)}
		b := &stubSwapper{name: "b", supports: true, quote: singleHopQuote("b", 10_050_000, 500_000)}

		agg := New(zap.NewNop(), testPricer(), a, b)
		result := agg.GetBestQuote(context.Background(), testInput())

		require.NotNil(t, result.Best)
		assert.Equal(t, "a", result.Best.Venue)
		require.Len(t, result.All, 2)
		for _, candidate := range result.All {
			assert.True(t, result.Best.NetBuyFiat.GreaterThanOrEqual(candidate.NetBuyFiat))
		}
	})

	t.Run("fiat fee fields are filled during ranking", func(t *testing.T) {
		a := &stubSwapper{name: "a", supports: true, quote: singleHopQuote("a", 10_000_000, 10_000)}

		agg := New(zap.NewNop(), testPricer(), a)
		result := agg.GetBestQuote(context.Background(), testInput())

		require.NotNil(t, result.Best)
		// 10000 sats at 50k
		assert.True(t, result.Best.Steps[0].Fees.NetworkFeeFiat.Equal(decimal.NewFromInt(5)),
			"got %s", result.Best.Steps[0].Fees.NetworkFeeFiat)
		// net = 0.1 BTC * 50000 - 5
		assert.True(t, result.Best.NetBuyFiat.Equal(decimal.NewFromInt(4995)))
	})

	t.Run("one venue failing does not abort aggregation", func(t *testing.T) {
		ok := &stubSwapper{name: "ok", supports: true, quote: singleHopQuote("ok", 10_000_000, 0)}
		down := &stubSwapper{
			name:     "down",
			supports: true,
			err:      domain.NewQuoteError("down", domain.QuoteErrVenueUnavailable, ethAsset, btcAsset, errors.New("timeout")),
			delay:    10 * time.Millisecond,
		}

		agg := New(zap.NewNop(), testPricer(), down, ok)
		result := agg.GetBestQuote(context.Background(), testInput())

		require.NotNil(t, result.Best)
		assert.Equal(t, "ok", result.Best.Venue)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, domain.QuoteErrVenueUnavailable, result.Errors[0].Code)
	})

	t.Run("all venues failing returns nil best and the full error list", func(t *testing.T) {
		a := &stubSwapper{name: "a", supports: true, err: errors.New("boom")}
		b := &stubSwapper{name: "b", supports: false}

		agg := New(zap.NewNop(), testPricer(), a, b)
		result := agg.GetBestQuote(context.Background(), testInput())

		assert.Nil(t, result.Best)
		assert.Empty(t, result.All)
		require.Len(t, result.Errors, 2)
	})

	t.Run("unpriceable buy asset falls back to raw buy amount", func(t *testing.T) {
		// pricer knows neither asset, so every net is zero
		small := &stubSwapper{name: "small", supports: true, quote: singleHopQuote("small", 10_000_000, 0)}
		large := &stubSwapper{name: "large", supports: true, quote: singleHopQuote("large", 10_100_000, 0)}

		agg := New(zap.NewNop(), &stubPricer{prices: map[string]decimal.Decimal{}}, small, large)
		result := agg.GetBestQuote(context.Background(), testInput())

		require.NotNil(t, result.Best)
		assert.Equal(t, "large", result.Best.Venue)
	})

	t.Run("tie prefers fewer hops", func(t *testing.T) {
		twoHop := singleHopQuote("two", 10_000_000, 0)
		mid := domain.Asset{ChainID: "cosmos:thorchain-mainnet-v1", Symbol: "RUNE", Precision: 8}
		twoHop.Steps = []domain.TradeQuoteStep{
			{
				SellAsset:  ethAsset,
				BuyAsset:   mid,
				SellAmount: big.NewInt(1e18),
				BuyAmount:  big.NewInt(1),
				Fees:       domain.StepFees{NetworkFeeAsset: mid, NetworkFee: big.NewInt(0), ProtocolFee: big.NewInt(0)},
			},
			twoHop.Steps[0],
		}
		oneHop := singleHopQuote("one", 10_000_000, 0)

		agg := New(zap.NewNop(), testPricer(), &stubSwapper{name: "two", supports: true, quote: twoHop},
			&stubSwapper{name: "one", supports: true, quote: oneHop})
		result := agg.GetBestQuote(context.Background(), testInput())

		require.NotNil(t, result.Best)
		assert.Equal(t, "one", result.Best.Venue)
	})

	t.Run("tie on hops prefers the first registered venue", func(t *testing.T) {
		first := &stubSwapper{name: "first", supports: true, quote: singleHopQuote("first", 10_000_000, 0)}
		second := &stubSwapper{name: "second", supports: true, quote: singleHopQuote("second", 10_000_000, 0)}

		agg := New(zap.NewNop(), testPricer(), first, second)
		result := agg.GetBestQuote(context.Background(), testInput())

		require.NotNil(t, result.Best)
		assert.Equal(t, "first", result.Best.Venue)
	})
}
