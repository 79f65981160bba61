package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrWrongChain is returned by Dial when the node serves another network.
var ErrWrongChain = errors.New("connected to wrong chain")

// Dial connects to an RPC endpoint and checks that it serves chainID.
// A zero chainID skips the check.
func Dial(ctx context.Context, rpcURL string, chainID uint64) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	if chainID == 0 {
		return client, nil
	}

	got, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	if got.Uint64() != chainID {
		client.Close()
		return nil, fmt.Errorf("%w: want %d, got %s", ErrWrongChain, chainID, got)
	}
	return client, nil
}

// NewTransactor builds signing options from a hex private key. A non-nil
// gasPrice is used instead of the node's suggestion.
func NewTransactor(ctx context.Context, hexKey string, chainID uint64, gasPrice *big.Int) (*bind.TransactOpts, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(chainID))
	if err != nil {
		return nil, fmt.Errorf("create transactor: %w", err)
	}
	opts.Context = ctx
	if gasPrice != nil && gasPrice.Sign() > 0 {
		opts.GasPrice = new(big.Int).Set(gasPrice)
	}
	return opts, nil
}

// Contracts bundles the bindings of one deployment.
type Contracts struct {
	SplitMe *SplitMe
	Token   *Token
}

// Bind creates bindings for a deployed contract pair.
func Bind(backend bind.ContractBackend, splitMe, token common.Address) *Contracts {
	return &Contracts{
		SplitMe: NewSplitMe(splitMe, backend),
		Token:   NewToken(token, backend),
	}
}
