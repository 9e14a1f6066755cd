package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/hopswap/internal/domain"
)

// EVMAdapter implements Adapter for EVM chains on top of go-ethereum.
type EVMAdapter struct {
	chainID   string
	rpcClient *rpc.Client
	client    *ethclient.Client
}

// NewEVMAdapter dials the RPC endpoint and returns an adapter for the chain.
func NewEVMAdapter(ctx context.Context, chainID, rpcURL string) (*EVMAdapter, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial evm rpc for %s", chainID)
	}

	return &EVMAdapter{
		chainID:   chainID,
		rpcClient: rpcClient,
		client:    ethclient.NewClient(rpcClient),
	}, nil
}

func (a *EVMAdapter) ChainID() string {
	return a.chainID
}

// Close closes the underlying RPC client.
func (a *EVMAdapter) Close() {
	if a.rpcClient != nil {
		a.rpcClient.Close()
	}
}

// BuildTransaction assembles an unsigned EVM transaction. A memo with no
// calldata is carried as calldata bytes, the convention for memo-routed
// deposits on EVM chains.
func (a *EVMAdapter) BuildTransaction(ctx context.Context, input BuildTxInput) (*domain.UnsignedTx, error) {
	data := input.Data
	if len(data) == 0 && input.Memo != "" {
		data = []byte(input.Memo)
	}

	to := common.HexToAddress(input.To)
	msg := ethereum.CallMsg{
		From:  common.HexToAddress(input.From),
		To:    &to,
		Value: input.Value,
		Data:  data,
	}

	gasLimit, err := a.client.EstimateGas(ctx, msg)
	if err != nil {
		return nil, errors.Wrapf(err, "estimate gas on %s", a.chainID)
	}

	return &domain.UnsignedTx{
		ChainID:  a.chainID,
		From:     input.From,
		To:       input.To,
		Value:    input.Value,
		Data:     data,
		Memo:     input.Memo,
		GasLimit: gasLimit,
	}, nil
}

// TransactionStatus reports the receipt state of a broadcast transaction.
func (a *EVMAdapter) TransactionStatus(ctx context.Context, txID string) (domain.TxStatus, error) {
	receipt, err := a.client.TransactionReceipt(ctx, common.HexToHash(txID))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return domain.TxPending, nil
		}
		return domain.TxUnknown, errors.Wrapf(err, "fetch receipt for %s", txID)
	}

	if receipt.Status == 1 {
		return domain.TxConfirmed, nil
	}
	return domain.TxFailed, nil
}

// Allowance reads allowance(owner, spender) on the token contract.
func (a *EVMAdapter) Allowance(ctx context.Context, token, owner, spender string) (*big.Int, error) {
	calldata, err := ERC20AllowanceCalldata(owner, spender)
	if err != nil {
		return nil, err
	}

	to := common.HexToAddress(token)
	output, err := a.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: calldata}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "allowance call on %s", token)
	}

	return unpackAllowance(output)
}
