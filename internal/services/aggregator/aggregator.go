// Package aggregator fans a quote request out to every registered venue and
// ranks the successful quotes by net output.
package aggregator

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/hopswap/internal/domain"
	"github.com/vadiminshakov/hopswap/internal/services/swapper"
	"github.com/vadiminshakov/hopswap/pkg/baseunit"
	"go.uber.org/zap"
)

// Pricer supplies the fiat price of one whole unit of an asset. Market data
// itself is outside the engine; the caller injects an implementation.
type Pricer interface {
	FiatPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error)
}

// BestQuoteResult carries the ranked outcome of one aggregation pass. Best is
// nil when every venue failed; the caller must treat that as "no route".
type BestQuoteResult struct {
	Best   *domain.TradeQuote
	All    []*domain.TradeQuote
	Errors []*domain.QuoteError
}

// Aggregator queries all venues concurrently and selects the best quote.
// Registration order doubles as the venue priority for tie-breaking.
type Aggregator struct {
	swappers []swapper.Swapper
	pricer   Pricer
	l        *zap.Logger
}

func New(l *zap.Logger, pricer Pricer, swappers ...swapper.Swapper) *Aggregator {
	return &Aggregator{swappers: swappers, pricer: pricer, l: l}
}

// GetBestQuote asks every venue that plausibly supports the pair, waits for
// all of them to settle, and ranks the successes by fiat net output (fees
// subtracted). Ties prefer fewer hops, then earlier registration. Venue
// failures are recorded, never fatal.
func (a *Aggregator) GetBestQuote(ctx context.Context, input swapper.QuoteInput) BestQuoteResult {
	eligible := make([]swapper.Swapper, 0, len(a.swappers))
	result := BestQuoteResult{}

	for _, s := range a.swappers {
		if !s.SupportsPair(input.SellAsset, input.BuyAsset) {
			result.Errors = append(result.Errors,
				domain.NewQuoteError(s.Name(), domain.QuoteErrUnsupportedPair, input.SellAsset, input.BuyAsset, nil))
			continue
		}
		eligible = append(eligible, s)
	}

	// one slot per venue so collection needs no locking; ranking starts only
	// after every venue has settled
	quotes := make([]*domain.TradeQuote, len(eligible))
	errs := make([]error, len(eligible))

	var wg sync.WaitGroup
	for i, s := range eligible {
		wg.Add(1)
		go func(i int, s swapper.Swapper) {
			defer wg.Done()
			quotes[i], errs[i] = s.GetQuote(ctx, input)
		}(i, s)
	}
	wg.Wait()

	for i, s := range eligible {
		if errs[i] != nil {
			qe := domain.AsQuoteError(s.Name(), input.SellAsset, input.BuyAsset, errs[i])
			a.l.Debug("venue failed to quote",
				zap.String("venue", s.Name()),
				zap.String("code", qe.Code.String()),
				zap.Error(errs[i]))
			result.Errors = append(result.Errors, qe)
			continue
		}

		quote := quotes[i]
		quote.NetBuyFiat = a.netBuyFiat(ctx, quote)
		result.All = append(result.All, quote)

		if result.Best == nil || better(quote, result.Best) {
			result.Best = quote
		}
	}

	if result.Best != nil {
		a.l.Info("best quote selected",
			zap.String("venue", result.Best.Venue),
			zap.Int("candidates", len(result.All)),
			zap.String("net_buy_fiat", result.Best.NetBuyFiat.String()))
	}

	return result
}

// netBuyFiat values the quote's final output and subtracts all fees in fiat,
// filling the per-step fiat fee fields along the way. Assets the pricer
// cannot value contribute zero; ranking then falls through to the tie rules.
func (a *Aggregator) netBuyFiat(ctx context.Context, quote *domain.TradeQuote) decimal.Decimal {
	buyAsset := quote.BuyAsset()
	buyPrice := a.fiatPrice(ctx, buyAsset)
	buyFiat := baseunit.FromBaseUnit(quote.BuyAmount(), buyAsset.Precision).Mul(buyPrice)

	for i := range quote.Steps {
		fees := &quote.Steps[i].Fees
		if fees.NetworkFee != nil {
			feePrice := a.fiatPrice(ctx, fees.NetworkFeeAsset)
			fees.NetworkFeeFiat = baseunit.FromBaseUnit(fees.NetworkFee, fees.NetworkFeeAsset.Precision).Mul(feePrice)
		}
		if fees.ProtocolFee != nil {
			stepBuy := quote.Steps[i].BuyAsset
			fees.ProtocolFeeFiat = baseunit.FromBaseUnit(fees.ProtocolFee, stepBuy.Precision).Mul(a.fiatPrice(ctx, stepBuy))
		}
	}

	return buyFiat.Sub(quote.TotalFeesFiat())
}

func (a *Aggregator) fiatPrice(ctx context.Context, asset domain.Asset) decimal.Decimal {
	price, err := a.pricer.FiatPrice(ctx, asset)
	if err != nil {
		a.l.Warn("no fiat price for asset", zap.String("asset", asset.ID()), zap.Error(err))
		return decimal.Zero
	}
	return price
}

// better reports whether candidate outranks current: higher net output, then
// raw buy amount when the quotes buy the same asset (covers unpriceable
// assets, where net output is zero for everyone), then fewer hops, then
// earlier registration (current wins ties by arriving first).
func better(candidate, current *domain.TradeQuote) bool {
	switch candidate.NetBuyFiat.Cmp(current.NetBuyFiat) {
	case 1:
		return true
	case -1:
		return false
	}
	if candidate.BuyAsset().ID() == current.BuyAsset().ID() {
		switch candidate.BuyAmount().Cmp(current.BuyAmount()) {
		case 1:
			return true
		case -1:
			return false
		}
	}
	return len(candidate.Steps) < len(current.Steps)
}
