package thorchain

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/hopswap/internal/domain"
)

// inboundAddressEntry is one entry of the THORNode inbound_addresses response.
type inboundAddressEntry struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	Router  string `json:"router"`
	Halted  bool   `json:"halted"`
}

// inboundAddress resolves the current vault (and router for EVM chains) for
// the sell asset's chain. Quoting against a halted chain is refused: funds
// sent to a halted vault are stranded until the chain resumes.
func (s *Swapper) inboundAddress(ctx context.Context, sellAsset domain.Asset) (inboundAddressEntry, error) {
	code, ok := chainCode(sellAsset)
	if !ok {
		return inboundAddressEntry{}, errors.Errorf("no THORChain chain code for %s", sellAsset.ChainID)
	}

	// native RUNE swaps go straight to the protocol, no inbound vault
	if code == "THOR" {
		return inboundAddressEntry{Chain: code}, nil
	}

	endpoint := s.daemonURL + "/lcd/thorchain/inbound_addresses"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return inboundAddressEntry{}, errors.Wrap(err, "build inbound addresses request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return inboundAddressEntry{}, domain.NewQuoteError(Name, domain.QuoteErrVenueUnavailable, sellAsset, domain.Asset{}, err)
	}
	defer resp.Body.Close()

	var entries []inboundAddressEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return inboundAddressEntry{}, domain.NewQuoteError(Name, domain.QuoteErrMalformedResponse, sellAsset, domain.Asset{}, err)
	}

	for _, entry := range entries {
		if entry.Chain != code {
			continue
		}
		if entry.Halted {
			return inboundAddressEntry{}, domain.NewQuoteError(Name, domain.QuoteErrVenueUnavailable, sellAsset, domain.Asset{},
				errors.Errorf("chain %s is halted", code))
		}
		return entry, nil
	}

	return inboundAddressEntry{}, errors.Errorf("no inbound address for chain %s", code)
}
