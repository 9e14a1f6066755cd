package thorchain

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/hopswap/internal/domain"
	"github.com/vadiminshakov/hopswap/internal/services/swapper"
	"go.uber.org/zap"
)

var (
	ethAsset = domain.Asset{ChainID: "eip155:1", Symbol: "ETH", Precision: 18}
	btcAsset = domain.Asset{ChainID: "bip122:000000000019d6689c085ae165831e93", Symbol: "BTC", Precision: 8}
	usdcAsset = domain.Asset{
		ChainID:   "eip155:1",
		Contract:  "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		Symbol:    "USDC",
		Precision: 6,
	}
)

func newTestServer(t *testing.T, quoteBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/lcd/thorchain/quote/swap", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quoteBody)
	})
	mux.HandleFunc("/lcd/thorchain/inbound_addresses", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"chain":"ETH","address":"0xinbound","router":"0xrouter","halted":false},
			{"chain":"BTC","address":"bc1qvault","halted":false},
			{"chain":"BCH","address":"qvault","halted":true}
		]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetQuote(t *testing.T) {
	t.Run("maps a successful quote", func(t *testing.T) {
		srv := newTestServer(t, `{
			"inbound_address":"0xinbound",
			"expected_amount_out":"9850000",
			"memo":"=:BTC.BTC:bc1qdest",
			"fees":{"asset":"BTC.BTC","affiliate":"100","outbound":"30000","liquidity":"2000"}
		}`)
		s := New(Config{DaemonURL: srv.URL}, zap.NewNop())

		sellAmount, _ := new(big.Int).SetString("2000000000000000000", 10) // 2 ETH
		quote, err := s.GetQuote(context.Background(), swapper.QuoteInput{
			SellAsset:      ethAsset,
			BuyAsset:       btcAsset,
			SellAmount:     sellAmount,
			ReceiveAddress: "bc1qdest",
			AffiliateBps:   30,
			SlippageBps:    100,
		})
		require.NoError(t, err)
		require.Len(t, quote.Steps, 1)

		step := quote.Steps[0]
		assert.Equal(t, Name, quote.Venue)
		// BTC is base 8 already, no rescale
		assert.Equal(t, int64(9850000), step.BuyAmount.Int64())
		assert.Equal(t, int64(30000), step.Fees.NetworkFee.Int64())
		assert.Equal(t, int64(2100), step.Fees.ProtocolFee.Int64())
		assert.Equal(t, "bc1qvault", step.Routing.InboundAddress)
		// limit = 9850000 * 0.99 - 30000 = 9721500
		assert.Equal(t, "=:BTC.BTC:bc1qdest:9721500:hop:30", step.Routing.Memo)
		// native sell needs no approval
		assert.Empty(t, step.AllowanceContract)
	})

	t.Run("token sell carries the router as spender", func(t *testing.T) {
		srv := newTestServer(t, `{
			"expected_amount_out":"100000",
			"fees":{"asset":"BTC.BTC","affiliate":"0","outbound":"1000","liquidity":"10"}
		}`)
		s := New(Config{DaemonURL: srv.URL}, zap.NewNop())

		quote, err := s.GetQuote(context.Background(), swapper.QuoteInput{
			SellAsset:      usdcAsset,
			BuyAsset:       btcAsset,
			SellAmount:     big.NewInt(5000_000000), // 5000 USDC
			ReceiveAddress: "bc1qdest",
			SlippageBps:    50,
		})
		require.NoError(t, err)
		assert.Equal(t, "0xrouter", quote.Steps[0].AllowanceContract)
		assert.Equal(t, "0xinbound", quote.Steps[0].Routing.InboundAddress)
	})

	t.Run("not enough fee classifies as below minimum", func(t *testing.T) {
		srv := newTestServer(t, `{"error":"fail swap, not enough fee"}`)
		s := New(Config{DaemonURL: srv.URL}, zap.NewNop())

		_, err := s.GetQuote(context.Background(), swapper.QuoteInput{
			SellAsset:      ethAsset,
			BuyAsset:       btcAsset,
			SellAmount:     big.NewInt(1e12),
			ReceiveAddress: "bc1qdest",
		})
		var qe *domain.QuoteError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, domain.QuoteErrBelowMinimum, qe.Code)
		assert.Equal(t, Name, qe.Venue)
	})

	t.Run("other venue error is a generic quote failure", func(t *testing.T) {
		srv := newTestServer(t, `{"error":"pool does not exist"}`)
		s := New(Config{DaemonURL: srv.URL}, zap.NewNop())

		_, err := s.GetQuote(context.Background(), swapper.QuoteInput{
			SellAsset:      ethAsset,
			BuyAsset:       btcAsset,
			SellAmount:     big.NewInt(1e18),
			ReceiveAddress: "bc1qdest",
		})
		var qe *domain.QuoteError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, domain.QuoteErrUnknown, qe.Code)
	})

	t.Run("transport failure is venue unavailable", func(t *testing.T) {
		srv := newTestServer(t, `{}`)
		srv.Close()
		s := New(Config{DaemonURL: srv.URL}, zap.NewNop())

		_, err := s.GetQuote(context.Background(), swapper.QuoteInput{
			SellAsset:      ethAsset,
			BuyAsset:       btcAsset,
			SellAmount:     big.NewInt(1e18),
			ReceiveAddress: "bc1qdest",
		})
		var qe *domain.QuoteError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, domain.QuoteErrVenueUnavailable, qe.Code)
	})

	t.Run("sell amount below THOR precision is rejected before the request", func(t *testing.T) {
		s := New(Config{DaemonURL: "http://unused.invalid"}, zap.NewNop())

		// 1e9 wei is 1e-9 ETH, zero at base 8
		_, err := s.GetQuote(context.Background(), swapper.QuoteInput{
			SellAsset:      ethAsset,
			BuyAsset:       btcAsset,
			SellAmount:     big.NewInt(1e9),
			ReceiveAddress: "bc1qdest",
		})
		var qe *domain.QuoteError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, domain.QuoteErrBelowMinimum, qe.Code)
	})

	t.Run("unsupported chain is an unsupported pair", func(t *testing.T) {
		s := New(Config{DaemonURL: "http://unused.invalid"}, zap.NewNop())

		sol := domain.Asset{ChainID: "solana:mainnet", Symbol: "SOL", Precision: 9}
		_, err := s.GetQuote(context.Background(), swapper.QuoteInput{
			SellAsset:      sol,
			BuyAsset:       btcAsset,
			SellAmount:     big.NewInt(1e9),
			ReceiveAddress: "bc1qdest",
		})
		var qe *domain.QuoteError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, domain.QuoteErrUnsupportedPair, qe.Code)
		assert.False(t, s.SupportsPair(sol, btcAsset))
	})
}

func TestInboundAddressHaltedChain(t *testing.T) {
	srv := newTestServer(t, `{
		"expected_amount_out":"100000",
		"fees":{"asset":"ETH.ETH","affiliate":"0","outbound":"1000","liquidity":"10"}
	}`)
	s := New(Config{DaemonURL: srv.URL}, zap.NewNop())

	bch := domain.Asset{ChainID: "bip122:000000000000000000651ef99cb9fcbe", Symbol: "BCH", Precision: 8}
	_, err := s.GetQuote(context.Background(), swapper.QuoteInput{
		SellAsset:      bch,
		BuyAsset:       btcAsset,
		SellAmount:     big.NewInt(1e8),
		ReceiveAddress: "bc1qdest",
	})
	var qe *domain.QuoteError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, domain.QuoteErrVenueUnavailable, qe.Code)
	assert.Contains(t, err.Error(), "halted")
}
