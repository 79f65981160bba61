package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/splitme/splitme/internal/chain"
	"github.com/splitme/splitme/internal/config"
	"github.com/splitme/splitme/internal/deploy"
	"github.com/splitme/splitme/internal/models"
)

// chainEnv is a connected node plus the network it serves.
type chainEnv struct {
	network config.Network
	client  *ethclient.Client
}

func (a *app) dial(ctx context.Context) (*chainEnv, error) {
	network, err := a.cfg.ResolveNetwork()
	if err != nil {
		return nil, err
	}
	client, err := chain.Dial(ctx, network.RPCURL, network.ChainID)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Connected to network", "network", network.Name, "chain_id", network.ChainID)
	return &chainEnv{network: network, client: client}, nil
}

func (e *chainEnv) Close() {
	e.client.Close()
}

// contracts binds the deployment recorded for the selected network.
func (a *app) contracts(env *chainEnv) (*models.Deployment, *chain.Contracts, error) {
	record, err := deploy.LoadRecord(a.cfg.DeploymentsDir, env.network.Name)
	if err != nil {
		return nil, nil, err
	}
	bound := chain.Bind(env.client,
		common.HexToAddress(record.SplitMeAddress),
		common.HexToAddress(record.ExpenseTokenAddress),
	)
	return record, bound, nil
}

func (a *app) transactor(ctx context.Context, env *chainEnv) (*bind.TransactOpts, error) {
	if a.cfg.PrivateKey == "" {
		return nil, errors.New("PRIVATE_KEY is required to send transactions")
	}
	return chain.NewTransactor(ctx, a.cfg.PrivateKey, env.network.ChainID, env.network.GasPriceWei())
}

func (e *chainEnv) describeTx(hash common.Hash) string {
	if url := e.network.TxURL(hash.Hex()); url != "" {
		return fmt.Sprintf("%s (%s)", hash.Hex(), url)
	}
	return hash.Hex()
}
