package thorchain

import (
	"fmt"
	"strings"

	"github.com/vadiminshakov/hopswap/internal/domain"
)

// chainCodes maps supported chain ids to THORChain chain codes.
var chainCodes = map[string]string{
	"eip155:1":                                        "ETH",
	"eip155:43114":                                    "AVAX",
	"eip155:56":                                       "BSC",
	"bip122:000000000019d6689c085ae165831e93":         "BTC",
	"bip122:000000000000000000651ef99cb9fcbe":         "BCH",
	"bip122:12a765e31ffd4059bada1e25190f6e98":         "LTC",
	"bip122:00000000001a91e3dace36e2be3bf030":         "DOGE",
	"cosmos:cosmoshub-4":                              "GAIA",
	"cosmos:thorchain-mainnet-v1":                     "THOR",
}

// poolAssetID maps an asset to its THORChain pool notation, e.g. "ETH.ETH"
// or "ETH.USDC-0XA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48".
func poolAssetID(a domain.Asset) (string, bool) {
	code, ok := chainCodes[a.ChainID]
	if !ok {
		return "", false
	}
	if a.IsNative() {
		return fmt.Sprintf("%s.%s", code, strings.ToUpper(a.Symbol)), true
	}
	// only ETH pools carry token assets
	if code != "ETH" && code != "AVAX" && code != "BSC" {
		return "", false
	}
	return fmt.Sprintf("%s.%s-%s", code, strings.ToUpper(a.Symbol), strings.ToUpper(a.Contract)), true
}

// chainCode returns the THORChain chain code for an asset's chain.
func chainCode(a domain.Asset) (string, bool) {
	code, ok := chainCodes[a.ChainID]
	return code, ok
}
