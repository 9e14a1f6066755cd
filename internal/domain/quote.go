package domain

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// StepFees breaks down the cost of a single hop. Amounts are base units,
// fiat equivalents are filled by the quoting venue where known.
type StepFees struct {
	// NetworkFeeAsset asset the network fee is charged in.
	NetworkFeeAsset Asset
	// NetworkFee network (gas/outbound) fee in NetworkFeeAsset base units.
	NetworkFee *big.Int
	// NetworkFeeFiat fiat-equivalent network fee.
	NetworkFeeFiat decimal.Decimal
	// ProtocolFee venue fee in buy asset base units.
	ProtocolFee *big.Int
	// ProtocolFeeFiat fiat-equivalent protocol fee.
	ProtocolFeeFiat decimal.Decimal
}

// TotalFiat returns the sum of all fiat-equivalent fees of the hop.
func (f StepFees) TotalFiat() decimal.Decimal {
	return f.NetworkFeeFiat.Add(f.ProtocolFeeFiat)
}

// Routing carries the venue-specific instructions needed to build the hop
// transaction. THORChain fills Memo and InboundAddress, 0x fills To/Data/Value.
type Routing struct {
	Memo           string
	InboundAddress string
	To             string
	Data           []byte
	Value          *big.Int
}

// TradeQuoteStep is one hop of a trade.
type TradeQuoteStep struct {
	SellAsset Asset
	BuyAsset  Asset
	// SellAmount amount to sell in sell asset base units.
	SellAmount *big.Int
	// BuyAmount expected amount out in buy asset base units.
	BuyAmount *big.Int
	Fees      StepFees
	// SlippageBps slippage tolerance in basis points.
	SlippageBps int64
	// AllowanceContract spender that must be approved before the hop
	// executes, empty when no approval can ever be required.
	AllowanceContract string
	Routing           Routing
}

// TradeQuote is an executable quote from a single venue, possibly multi-hop.
type TradeQuote struct {
	// Venue name of the swapper that produced the quote.
	Venue string
	Steps []TradeQuoteStep
	// NetBuyFiat fiat value of the final output net of all fees,
	// computed by the aggregator during ranking.
	NetBuyFiat decimal.Decimal
}

// Validate checks structural invariants: at least one hop, non-negative
// base-unit amounts and adjacent hop chaining (step i sells what step i-1 bought).
func (q *TradeQuote) Validate() error {
	if len(q.Steps) == 0 {
		return errors.New("quote has no steps")
	}
	for i, step := range q.Steps {
		if step.SellAmount == nil || step.SellAmount.Sign() < 0 {
			return errors.Errorf("step %d has invalid sell amount", i)
		}
		if step.BuyAmount == nil || step.BuyAmount.Sign() < 0 {
			return errors.Errorf("step %d has invalid buy amount", i)
		}
		if i == 0 {
			continue
		}
		if step.SellAsset.ID() != q.Steps[i-1].BuyAsset.ID() {
			return errors.Errorf("step %d sells %s but step %d buys %s, hops are not chained",
				i, step.SellAsset.ID(), i-1, q.Steps[i-1].BuyAsset.ID())
		}
	}
	return nil
}

// SellAsset returns the asset the trade starts with.
func (q *TradeQuote) SellAsset() Asset {
	return q.Steps[0].SellAsset
}

// BuyAsset returns the asset the trade ends with.
func (q *TradeQuote) BuyAsset() Asset {
	return q.Steps[len(q.Steps)-1].BuyAsset
}

// BuyAmount returns the expected final output in buy asset base units.
func (q *TradeQuote) BuyAmount() *big.Int {
	return q.Steps[len(q.Steps)-1].BuyAmount
}

// TotalFeesFiat sums the fiat-equivalent fees across all hops.
func (q *TradeQuote) TotalFeesFiat() decimal.Decimal {
	total := decimal.Zero
	for _, step := range q.Steps {
		total = total.Add(step.Fees.TotalFiat())
	}
	return total
}
