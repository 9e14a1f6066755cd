package chain

import (
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const erc20ABIJSON = `[
  {"inputs": [{"name": "owner", "type": "address"}, {"name": "spender", "type": "address"}], "name": "allowance", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "spender", "type": "address"}, {"name": "amount", "type": "uint256"}], "name": "approve", "outputs": [{"type": "bool"}], "stateMutability": "nonpayable", "type": "function"}
]`

var (
	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error
)

func erc20ABIInstance() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}

// ERC20AllowanceCalldata packs the calldata for allowance(owner, spender).
func ERC20AllowanceCalldata(owner, spender string) ([]byte, error) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return nil, errors.Wrap(err, "parse erc20 abi")
	}
	return parsed.Pack("allowance", common.HexToAddress(owner), common.HexToAddress(spender))
}

// ERC20ApproveCalldata packs the calldata for approve(spender, amount).
func ERC20ApproveCalldata(spender string, amount *big.Int) ([]byte, error) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return nil, errors.Wrap(err, "parse erc20 abi")
	}
	return parsed.Pack("approve", common.HexToAddress(spender), amount)
}

func unpackAllowance(output []byte) (*big.Int, error) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return nil, errors.Wrap(err, "parse erc20 abi")
	}
	values, err := parsed.Unpack("allowance", output)
	if err != nil {
		return nil, errors.Wrap(err, "unpack allowance result")
	}
	allowance, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.New("allowance result is not uint256")
	}
	return allowance, nil
}
