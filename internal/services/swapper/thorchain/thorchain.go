// Package thorchain implements the THORChain venue adapter. Quotes come from
// a THORNode daemon; execution routes through the chain's inbound vault with
// a slippage-bounded swap memo.
package thorchain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/hopswap/internal/domain"
	"github.com/vadiminshakov/hopswap/internal/services/swapper"
	"github.com/vadiminshakov/hopswap/pkg/baseunit"
	"go.uber.org/zap"
)

const (
	// Name venue identifier used in quotes and errors.
	Name = "thorchain"

	// fixedPrecision all THORChain pool amounts are base 8 regardless of
	// token precision.
	fixedPrecision int32 = 8

	affiliateName = "hop"

	defaultTimeout = 15 * time.Second
)

// belowMinimumPattern matches the THORNode error for a sell amount too small
// to cover the outbound fee.
const belowMinimumPattern = "not enough fee"

// Config configures the adapter.
type Config struct {
	// DaemonURL base URL of the THORNode daemon, e.g. https://daemon.thorswap.net
	DaemonURL string
	// Timeout per-request HTTP timeout, defaultTimeout when zero.
	Timeout time.Duration
}

// Swapper is the THORChain venue adapter.
type Swapper struct {
	daemonURL string
	client    *http.Client
	l         *zap.Logger
}

// New creates a THORChain adapter.
func New(cfg Config, l *zap.Logger) *Swapper {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Swapper{
		daemonURL: strings.TrimRight(cfg.DaemonURL, "/"),
		client:    &http.Client{Timeout: timeout},
		l:         l,
	}
}

func (s *Swapper) Name() string {
	return Name
}

// SupportsPair reports whether both assets map to THORChain pools.
func (s *Swapper) SupportsPair(sell, buy domain.Asset) bool {
	_, sellOK := poolAssetID(sell)
	_, buyOK := poolAssetID(buy)
	return sellOK && buyOK
}

type quoteResponse struct {
	InboundAddress    string     `json:"inbound_address"`
	ExpectedAmountOut string     `json:"expected_amount_out"`
	Memo              string     `json:"memo"`
	Fees              quoteFees  `json:"fees"`
	Error             string     `json:"error"`
}

type quoteFees struct {
	Asset     string `json:"asset"`
	Affiliate string `json:"affiliate"`
	Outbound  string `json:"outbound"`
	Liquidity string `json:"liquidity"`
}

// GetQuote fetches a swap quote from the THORNode quoting endpoint and maps
// it into the normalized quote shape.
func (s *Swapper) GetQuote(ctx context.Context, input swapper.QuoteInput) (*domain.TradeQuote, error) {
	sellPool, ok := poolAssetID(input.SellAsset)
	if !ok {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrUnsupportedPair, input.SellAsset, input.BuyAsset, nil)
	}
	buyPool, ok := poolAssetID(input.BuyAsset)
	if !ok {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrUnsupportedPair, input.SellAsset, input.BuyAsset, nil)
	}

	// pool amounts are base 8; an amount that rounds to zero there is below
	// anything the venue can represent
	sellAmountThor := baseunit.ConvertPrecision(input.SellAmount, input.SellAsset.Precision, fixedPrecision)
	if sellAmountThor.Sign() == 0 {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrBelowMinimum, input.SellAsset, input.BuyAsset,
			errors.New("sell amount is not representable in THOR base units"))
	}

	query := url.Values{}
	query.Set("amount", sellAmountThor.String())
	query.Set("from_asset", sellPool)
	query.Set("to_asset", buyPool)
	query.Set("destination", input.ReceiveAddress)
	query.Set("affiliate", affiliateName)
	query.Set("affiliate_bps", fmt.Sprintf("%d", input.AffiliateBps))

	endpoint := fmt.Sprintf("%s/lcd/thorchain/quote/swap?%s", s.daemonURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build thornode quote request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrVenueUnavailable, input.SellAsset, input.BuyAsset, err)
	}
	defer resp.Body.Close()

	var data quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrMalformedResponse, input.SellAsset, input.BuyAsset, err)
	}

	if data.Error != "" {
		if strings.Contains(data.Error, belowMinimumPattern) {
			return nil, domain.NewQuoteError(Name, domain.QuoteErrBelowMinimum, input.SellAsset, input.BuyAsset,
				errors.New(data.Error))
		}
		return nil, domain.NewQuoteError(Name, domain.QuoteErrUnknown, input.SellAsset, input.BuyAsset,
			errors.New(data.Error))
	}

	expectedOutThor, ok := new(big.Int).SetString(data.ExpectedAmountOut, 10)
	if !ok {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrMalformedResponse, input.SellAsset, input.BuyAsset,
			errors.Errorf("bad expected_amount_out %q", data.ExpectedAmountOut))
	}

	outboundFeeThor := parseThorAmount(data.Fees.Outbound)
	protocolFeeThor := new(big.Int).Add(parseThorAmount(data.Fees.Liquidity), parseThorAmount(data.Fees.Affiliate))

	inbound, err := s.inboundAddress(ctx, input.SellAsset)
	if err != nil {
		return nil, domain.AsQuoteError(Name, input.SellAsset, input.BuyAsset, err)
	}

	limit := ComputeLimit(expectedOutThor, outboundFeeThor, input.SlippageBps)
	memo := BuildMemo(buyPool, input.ReceiveAddress, limit, affiliateName, input.AffiliateBps)

	var allowanceContract string
	if wantsRouterApproval(input.SellAsset) {
		allowanceContract = inbound.Router
	}

	step := domain.TradeQuoteStep{
		SellAsset:  input.SellAsset,
		BuyAsset:   input.BuyAsset,
		SellAmount: new(big.Int).Set(input.SellAmount),
		BuyAmount:  baseunit.ConvertPrecision(expectedOutThor, fixedPrecision, input.BuyAsset.Precision),
		Fees: domain.StepFees{
			NetworkFeeAsset: input.BuyAsset,
			NetworkFee:      baseunit.ConvertPrecision(outboundFeeThor, fixedPrecision, input.BuyAsset.Precision),
			ProtocolFee:     baseunit.ConvertPrecision(protocolFeeThor, fixedPrecision, input.BuyAsset.Precision),
		},
		SlippageBps:       input.SlippageBps,
		AllowanceContract: allowanceContract,
		Routing: domain.Routing{
			Memo:           memo,
			InboundAddress: inbound.Address,
		},
	}

	quote := &domain.TradeQuote{Venue: Name, Steps: []domain.TradeQuoteStep{step}}
	if err := quote.Validate(); err != nil {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrMalformedResponse, input.SellAsset, input.BuyAsset, err)
	}

	s.l.Debug("thorchain quote",
		zap.String("pair", fmt.Sprintf("%s->%s", sellPool, buyPool)),
		zap.String("expected_out", expectedOutThor.String()),
		zap.String("limit", limit.String()))

	return quote, nil
}

func parseThorAmount(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

// wantsRouterApproval reports whether selling the asset requires an ERC-20
// approval of the THORChain router.
func wantsRouterApproval(a domain.Asset) bool {
	return strings.HasPrefix(a.ChainID, "eip155:") && !a.IsNative()
}
