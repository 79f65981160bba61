package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrTxFailed is returned when a mined transaction reverted.
	ErrTxFailed = errors.New("transaction failed")
	// ErrNothingOwed is returned by SettleAll when the sender has no debt in
	// the group.
	ErrNothingOwed = errors.New("nothing owed")
)

// Approver is the part of the token a Settler needs.
type Approver interface {
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error)
}

// SettlementContract is the part of SplitMe a Settler needs.
type SettlementContract interface {
	Address() common.Address
	SettleExpense(opts *bind.TransactOpts, expenseID, amount *big.Int) (*types.Transaction, error)
	SettleAllDebts(opts *bind.TransactOpts, groupID *big.Int) (*types.Transaction, error)
	GetUserBalance(ctx context.Context, user common.Address, groupID *big.Int) (*big.Int, error)
}

// ReceiptWaiter blocks until tx is mined and returns its receipt.
type ReceiptWaiter func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

// WaitMined returns a ReceiptWaiter polling backend.
func WaitMined(backend bind.DeployBackend) ReceiptWaiter {
	return func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
		return bind.WaitMined(ctx, backend, tx)
	}
}

// SettleResult describes the transactions sent for one settlement.
type SettleResult struct {
	// ApproveTx is the zero hash when the existing allowance was enough.
	ApproveTx common.Hash
	SettleTx  common.Hash
	Amount    *big.Int
	Receipt   *types.Receipt
}

// Settler approves the SplitMe contract to pull tokens and then settles.
// Calls for the same sender run one at a time so that two settlements never
// race on a single allowance.
type Settler struct {
	token    Approver
	contract SettlementContract
	wait     ReceiptWaiter
	logger   *slog.Logger

	mu     sync.Mutex
	owners map[common.Address]*sync.Mutex
}

// NewSettler creates a Settler.
func NewSettler(token Approver, contract SettlementContract, wait ReceiptWaiter, logger *slog.Logger) *Settler {
	return &Settler{
		token:    token,
		contract: contract,
		wait:     wait,
		logger:   logger,
		owners:   make(map[common.Address]*sync.Mutex),
	}
}

func (s *Settler) lock(owner common.Address) func() {
	s.mu.Lock()
	m, ok := s.owners[owner]
	if !ok {
		m = &sync.Mutex{}
		s.owners[owner] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// SettleExpense pays amount toward an expense share.
func (s *Settler) SettleExpense(ctx context.Context, opts *bind.TransactOpts, expenseID, amount *big.Int) (*SettleResult, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("settle expense %s: amount must be positive", expenseID)
	}
	defer s.lock(opts.From)()

	opts = withContext(ctx, opts)
	result := &SettleResult{Amount: new(big.Int).Set(amount)}
	if err := s.ensureAllowance(ctx, opts, amount, result); err != nil {
		return nil, err
	}

	tx, err := s.contract.SettleExpense(opts, expenseID, amount)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Settlement sent", "expense_id", expenseID, "tx", tx.Hash().Hex())
	receipt, err := s.confirm(ctx, "settleExpense", tx)
	if err != nil {
		return nil, err
	}
	result.SettleTx = tx.Hash()
	result.Receipt = receipt
	return result, nil
}

// SettleAll pays every debt the sender has in a group. The amount approved
// is the sender's negative balance as reported by the contract.
func (s *Settler) SettleAll(ctx context.Context, opts *bind.TransactOpts, groupID *big.Int) (*SettleResult, error) {
	defer s.lock(opts.From)()

	opts = withContext(ctx, opts)
	balance, err := s.contract.GetUserBalance(ctx, opts.From, groupID)
	if err != nil {
		return nil, err
	}
	if balance.Sign() >= 0 {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrNothingOwed)
	}
	owed := new(big.Int).Neg(balance)

	result := &SettleResult{Amount: owed}
	if err := s.ensureAllowance(ctx, opts, owed, result); err != nil {
		return nil, err
	}

	tx, err := s.contract.SettleAllDebts(opts, groupID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Settle all sent", "group_id", groupID, "tx", tx.Hash().Hex())
	receipt, err := s.confirm(ctx, "settleAllDebts", tx)
	if err != nil {
		return nil, err
	}
	result.SettleTx = tx.Hash()
	result.Receipt = receipt
	return result, nil
}

func (s *Settler) ensureAllowance(ctx context.Context, opts *bind.TransactOpts, amount *big.Int, result *SettleResult) error {
	spender := s.contract.Address()
	allowance, err := s.token.Allowance(ctx, opts.From, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	tx, err := s.token.Approve(opts, spender, amount)
	if err != nil {
		return err
	}
	s.logger.Debug("Approval sent", "spender", spender.Hex(), "amount", amount, "tx", tx.Hash().Hex())
	if _, err := s.confirm(ctx, "approve", tx); err != nil {
		return err
	}
	result.ApproveTx = tx.Hash()
	return nil
}

func (s *Settler) confirm(ctx context.Context, method string, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := s.wait(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%s: wait for %s: %w", method, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%s %s: %w", method, tx.Hash().Hex(), ErrTxFailed)
	}
	return receipt, nil
}

func withContext(ctx context.Context, opts *bind.TransactOpts) *bind.TransactOpts {
	cp := *opts
	cp.Context = ctx
	return &cp
}
