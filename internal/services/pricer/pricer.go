// Package pricer provides fiat price sources for quote ranking.
package pricer

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/hopswap/internal/domain"
)

// Static serves fiat prices from an in-memory table keyed by asset id. The
// embedding application feeds it from whatever market data source it already
// has; prices it never set are reported as unknown.
type Static struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewStatic() *Static {
	return &Static{prices: make(map[string]decimal.Decimal)}
}

// Set stores the fiat price of one whole unit of the asset.
func (s *Static) Set(asset domain.Asset, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[asset.ID()] = price
}

func (s *Static) FiatPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.prices[asset.ID()]
	if !ok {
		return decimal.Zero, errors.Errorf("no fiat price for %s", asset.ID())
	}
	return price, nil
}
