// Package zrx implements the 0x venue adapter for same-chain EVM swaps.
package zrx

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/hopswap/internal/domain"
	"github.com/vadiminshakov/hopswap/internal/services/swapper"
	"go.uber.org/zap"
)

const (
	// Name venue identifier used in quotes and errors.
	Name = "zrx"

	// nativeToken 0x's symbolic sell/buy token for the chain's native coin.
	nativeToken = "ETH"

	defaultTimeout = 15 * time.Second
)

// Config configures the adapter.
type Config struct {
	// APIURL base URL of the 0x swap API, e.g. https://api.0x.org
	APIURL string
	// ChainID the single EVM chain this instance quotes on.
	ChainID string
	// NativeAsset the chain's native coin, used to denominate gas fees.
	NativeAsset domain.Asset
	// FeeRecipient affiliate fee recipient address, empty to disable.
	FeeRecipient string
	// Timeout per-request HTTP timeout, defaultTimeout when zero.
	Timeout time.Duration
}

// Swapper is the 0x venue adapter.
type Swapper struct {
	cfg    Config
	client *http.Client
	l      *zap.Logger
}

// New creates a 0x adapter.
func New(cfg Config, l *zap.Logger) *Swapper {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Swapper{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		l:      l,
	}
}

func (s *Swapper) Name() string {
	return Name
}

// SupportsPair reports whether both assets live on this adapter's chain.
func (s *Swapper) SupportsPair(sell, buy domain.Asset) bool {
	return sell.ChainID == s.cfg.ChainID && buy.ChainID == s.cfg.ChainID
}

type quoteResponse struct {
	BuyAmount       string `json:"buyAmount"`
	SellAmount      string `json:"sellAmount"`
	To              string `json:"to"`
	Data            string `json:"data"`
	Value           string `json:"value"`
	Gas             string `json:"gas"`
	GasPrice        string `json:"gasPrice"`
	AllowanceTarget string `json:"allowanceTarget"`
}

type errorResponse struct {
	Code             int    `json:"code"`
	Reason           string `json:"reason"`
	ValidationErrors []struct {
		Field  string `json:"field"`
		Reason string `json:"reason"`
	} `json:"validationErrors"`
}

// GetQuote fetches a firm quote from the 0x swap API and maps it into the
// normalized quote shape.
func (s *Swapper) GetQuote(ctx context.Context, input swapper.QuoteInput) (*domain.TradeQuote, error) {
	if !s.SupportsPair(input.SellAsset, input.BuyAsset) {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrUnsupportedPair, input.SellAsset, input.BuyAsset, nil)
	}

	query := url.Values{}
	query.Set("sellToken", tokenParam(input.SellAsset))
	query.Set("buyToken", tokenParam(input.BuyAsset))
	query.Set("sellAmount", input.SellAmount.String())
	query.Set("takerAddress", input.ReceiveAddress)
	query.Set("slippagePercentage", decimal.NewFromInt(input.SlippageBps).Div(decimal.NewFromInt(10000)).String())
	if s.cfg.FeeRecipient != "" && input.AffiliateBps > 0 {
		query.Set("feeRecipient", s.cfg.FeeRecipient)
		query.Set("buyTokenPercentageFee", decimal.NewFromInt(input.AffiliateBps).Div(decimal.NewFromInt(10000)).String())
	}

	endpoint := fmt.Sprintf("%s/swap/v1/quote?%s", strings.TrimRight(s.cfg.APIURL, "/"), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build 0x quote request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrVenueUnavailable, input.SellAsset, input.BuyAsset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.classifyError(resp, input)
	}

	var data quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrMalformedResponse, input.SellAsset, input.BuyAsset, err)
	}

	buyAmount, ok := new(big.Int).SetString(data.BuyAmount, 10)
	if !ok {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrMalformedResponse, input.SellAsset, input.BuyAsset,
			errors.Errorf("bad buyAmount %q", data.BuyAmount))
	}

	gas, _ := new(big.Int).SetString(data.Gas, 10)
	gasPrice, _ := new(big.Int).SetString(data.GasPrice, 10)
	networkFee := big.NewInt(0)
	if gas != nil && gasPrice != nil {
		networkFee.Mul(gas, gasPrice)
	}

	value := big.NewInt(0)
	if data.Value != "" {
		if v, ok := new(big.Int).SetString(data.Value, 10); ok {
			value = v
		}
	}

	var allowanceContract string
	if !input.SellAsset.IsNative() {
		allowanceContract = data.AllowanceTarget
	}

	step := domain.TradeQuoteStep{
		SellAsset:  input.SellAsset,
		BuyAsset:   input.BuyAsset,
		SellAmount: new(big.Int).Set(input.SellAmount),
		BuyAmount:  buyAmount,
		Fees: domain.StepFees{
			NetworkFeeAsset: s.cfg.NativeAsset,
			NetworkFee:      networkFee,
			ProtocolFee:     big.NewInt(0),
		},
		SlippageBps:       input.SlippageBps,
		AllowanceContract: allowanceContract,
		Routing: domain.Routing{
			To:    data.To,
			Data:  common.FromHex(data.Data),
			Value: value,
		},
	}

	quote := &domain.TradeQuote{Venue: Name, Steps: []domain.TradeQuoteStep{step}}
	if err := quote.Validate(); err != nil {
		return nil, domain.NewQuoteError(Name, domain.QuoteErrMalformedResponse, input.SellAsset, input.BuyAsset, err)
	}

	s.l.Debug("zrx quote",
		zap.String("sell", input.SellAsset.ID()),
		zap.String("buy", input.BuyAsset.ID()),
		zap.String("buy_amount", buyAmount.String()))

	return quote, nil
}

// classifyError maps a 0x error payload to a typed quote error.
func (s *Swapper) classifyError(resp *http.Response, input swapper.QuoteInput) error {
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.NewQuoteError(Name, domain.QuoteErrMalformedResponse, input.SellAsset, input.BuyAsset,
			errors.Wrapf(err, "status %d", resp.StatusCode))
	}

	reasons := []string{body.Reason}
	for _, ve := range body.ValidationErrors {
		reasons = append(reasons, ve.Reason)
	}

	code := domain.QuoteErrUnknown
	for _, reason := range reasons {
		switch {
		case strings.Contains(reason, "INSUFFICIENT_ASSET_LIQUIDITY"):
			code = domain.QuoteErrUnsupportedPair
		case strings.Contains(reason, "SELL_AMOUNT_TOO_SMALL"):
			code = domain.QuoteErrBelowMinimum
		case strings.Contains(reason, "SELL_AMOUNT_TOO_BIG"):
			code = domain.QuoteErrAboveMaximum
		}
	}

	return domain.NewQuoteError(Name, code, input.SellAsset, input.BuyAsset,
		errors.Errorf("status %d: %s", resp.StatusCode, strings.Join(reasons, "; ")))
}

func tokenParam(a domain.Asset) string {
	if a.IsNative() {
		return nativeToken
	}
	return a.Contract
}
