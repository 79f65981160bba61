package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/wallet"
)

// Backend is what a Deployer needs from the node.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Deployer sends contract creation transactions from one account.
type Deployer struct {
	backend Backend
	opts    *bind.TransactOpts
	logger  *slog.Logger
	now     func() time.Time
}

// NewDeployer creates a Deployer signing with opts.
func NewDeployer(backend Backend, opts *bind.TransactOpts, logger *slog.Logger) *Deployer {
	return &Deployer{
		backend: backend,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// DeployContracts deploys ExpenseToken(owner) and then SplitMe(owner, token),
// waiting for each, and returns the record to save for network.
func (d *Deployer) DeployContracts(ctx context.Context, network string, token, splitMe *Artifact) (*models.Deployment, error) {
	d.logBalance(ctx)

	d.logger.Info("Deploying contract", "contract", ExpenseTokenContract)
	tokenAddr, tokenTx, err := d.deploy(ctx, token, d.opts.From)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", ExpenseTokenContract, err)
	}
	d.logger.Info("Contract deployed", "contract", ExpenseTokenContract, "address", tokenAddr.Hex())

	d.logger.Info("Deploying contract", "contract", SplitMeContract)
	splitMeAddr, splitMeTx, err := d.deploy(ctx, splitMe, d.opts.From, tokenAddr)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", SplitMeContract, err)
	}
	d.logger.Info("Contract deployed", "contract", SplitMeContract, "address", splitMeAddr.Hex())

	return &models.Deployment{
		Network:             network,
		ExpenseTokenAddress: tokenAddr.Hex(),
		SplitMeAddress:      splitMeAddr.Hex(),
		Deployer:            d.opts.From.Hex(),
		Timestamp:           d.timestamp(),
		ExpenseTokenTx:      tokenTx.Hash().Hex(),
		SplitMeTx:           splitMeTx.Hash().Hex(),
	}, nil
}

// DeployBalanceChecker deploys the BalanceChecker helper, which takes no
// constructor arguments.
func (d *Deployer) DeployBalanceChecker(ctx context.Context, network string, checker *Artifact) (*models.BalanceCheckerDeployment, error) {
	d.logBalance(ctx)

	d.logger.Info("Deploying contract", "contract", BalanceCheckerContract)
	addr, tx, err := d.deploy(ctx, checker)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", BalanceCheckerContract, err)
	}
	d.logger.Info("Contract deployed", "contract", BalanceCheckerContract, "address", addr.Hex())

	return &models.BalanceCheckerDeployment{
		Network:               network,
		BalanceCheckerAddress: addr.Hex(),
		Deployer:              d.opts.From.Hex(),
		Timestamp:             d.timestamp(),
		BalanceCheckerTx:      tx.Hash().Hex(),
	}, nil
}

func (d *Deployer) deploy(ctx context.Context, art *Artifact, args ...interface{}) (common.Address, *types.Transaction, error) {
	opts := *d.opts
	opts.Context = ctx

	_, tx, _, err := bind.DeployContract(&opts, art.ABI, art.Bytecode, d.backend, args...)
	if err != nil {
		return common.Address{}, nil, err
	}
	d.logger.Debug("Deployment sent", "tx", tx.Hash().Hex())

	addr, err := bind.WaitDeployed(ctx, d.backend, tx)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	return addr, tx, nil
}

func (d *Deployer) logBalance(ctx context.Context) {
	balance, err := d.backend.BalanceAt(ctx, d.opts.From, nil)
	if err != nil {
		d.logger.Warn("Failed to read deployer balance", "error", err)
		return
	}
	d.logger.Info("Deployer account",
		"address", d.opts.From.Hex(),
		"balance_wei", balance.String(),
		"balance", wallet.FormatAmount(wallet.FromBaseUnits(balance, wallet.TokenDecimals)),
	)
}

func (d *Deployer) timestamp() string {
	return d.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
