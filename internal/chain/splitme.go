package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// GroupInfo is the getGroup view of a group.
type GroupInfo struct {
	ID        *big.Int
	Name      string
	Creator   common.Address
	Members   []common.Address
	Active    bool
	CreatedAt *big.Int
	Category  string
}

// ExpenseInfo is the getExpense view of an expense.
type ExpenseInfo struct {
	ID           *big.Int
	GroupID      *big.Int
	Description  string
	Amount       *big.Int
	PaidBy       common.Address
	Participants []common.Address
	Settled      bool
	CreatedAt    *big.Int
}

// SplitMe is a binding to a deployed SplitMe contract.
type SplitMe struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewSplitMe binds the SplitMe contract at address.
func NewSplitMe(address common.Address, backend bind.ContractBackend) *SplitMe {
	return newSplitMe(address, backend, backend, backend)
}

func newSplitMe(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) *SplitMe {
	return &SplitMe{
		address:  address,
		contract: bind.NewBoundContract(address, SplitMeABI, caller, transactor, filterer),
	}
}

// Address returns the contract address.
func (s *SplitMe) Address() common.Address {
	return s.address
}

func (s *SplitMe) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return out, nil
}

// GetGroup reads a group by its contract id.
func (s *SplitMe) GetGroup(ctx context.Context, groupID *big.Int) (*GroupInfo, error) {
	out, err := s.call(ctx, "getGroup", groupID)
	if err != nil {
		return nil, err
	}
	return &GroupInfo{
		ID:        *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Name:      *abi.ConvertType(out[1], new(string)).(*string),
		Creator:   *abi.ConvertType(out[2], new(common.Address)).(*common.Address),
		Members:   *abi.ConvertType(out[3], new([]common.Address)).(*[]common.Address),
		Active:    *abi.ConvertType(out[4], new(bool)).(*bool),
		CreatedAt: *abi.ConvertType(out[5], new(*big.Int)).(**big.Int),
		Category:  *abi.ConvertType(out[6], new(string)).(*string),
	}, nil
}

// GetExpense reads an expense by its contract id.
func (s *SplitMe) GetExpense(ctx context.Context, expenseID *big.Int) (*ExpenseInfo, error) {
	out, err := s.call(ctx, "getExpense", expenseID)
	if err != nil {
		return nil, err
	}
	return &ExpenseInfo{
		ID:           *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		GroupID:      *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		Description:  *abi.ConvertType(out[2], new(string)).(*string),
		Amount:       *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		PaidBy:       *abi.ConvertType(out[4], new(common.Address)).(*common.Address),
		Participants: *abi.ConvertType(out[5], new([]common.Address)).(*[]common.Address),
		Settled:      *abi.ConvertType(out[6], new(bool)).(*bool),
		CreatedAt:    *abi.ConvertType(out[7], new(*big.Int)).(**big.Int),
	}, nil
}

// GetUserGroups lists the contract ids of a user's groups.
func (s *SplitMe) GetUserGroups(ctx context.Context, user common.Address) ([]*big.Int, error) {
	out, err := s.call(ctx, "getUserGroups", user)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// GetUserBalance returns a user's signed balance in a group, in token base
// units. Negative means the user owes.
func (s *SplitMe) GetUserBalance(ctx context.Context, user common.Address, groupID *big.Int) (*big.Int, error) {
	out, err := s.call(ctx, "getUserBalance", user, groupID)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// GetGroupBalances returns the members of a group and their signed balances.
func (s *SplitMe) GetGroupBalances(ctx context.Context, groupID *big.Int) ([]common.Address, []*big.Int, error) {
	out, err := s.call(ctx, "getGroupBalances", groupID)
	if err != nil {
		return nil, nil, err
	}
	members := *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address)
	balances := *abi.ConvertType(out[1], new([]*big.Int)).(*[]*big.Int)
	if len(members) != len(balances) {
		return nil, nil, fmt.Errorf("getGroupBalances: %d members but %d balances", len(members), len(balances))
	}
	return members, balances, nil
}

func (s *SplitMe) transact(opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
	tx, err := s.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return tx, nil
}

// CreateGroup sends createGroup(name, category).
func (s *SplitMe) CreateGroup(opts *bind.TransactOpts, name, category string) (*types.Transaction, error) {
	return s.transact(opts, "createGroup", name, category)
}

// UpdateGroupCategory sends updateGroupCategory(groupId, category).
func (s *SplitMe) UpdateGroupCategory(opts *bind.TransactOpts, groupID *big.Int, category string) (*types.Transaction, error) {
	return s.transact(opts, "updateGroupCategory", groupID, category)
}

// AddMember sends addMember(groupId, member).
func (s *SplitMe) AddMember(opts *bind.TransactOpts, groupID *big.Int, member common.Address) (*types.Transaction, error) {
	return s.transact(opts, "addMember", groupID, member)
}

// CreateExpense sends createExpense(groupId, description, amount, participants).
func (s *SplitMe) CreateExpense(opts *bind.TransactOpts, groupID *big.Int, description string, amount *big.Int, participants []common.Address) (*types.Transaction, error) {
	return s.transact(opts, "createExpense", groupID, description, amount, participants)
}

// SettleExpense sends settleExpense(expenseId, amount). The contract pulls
// amount tokens from the sender, so the allowance must cover it.
func (s *SplitMe) SettleExpense(opts *bind.TransactOpts, expenseID, amount *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "settleExpense", expenseID, amount)
}

// SettleAllDebts sends settleAllDebts(groupId).
func (s *SplitMe) SettleAllDebts(opts *bind.TransactOpts, groupID *big.Int) (*types.Transaction, error) {
	return s.transact(opts, "settleAllDebts", groupID)
}

// Withdraw sends withdraw().
func (s *SplitMe) Withdraw(opts *bind.TransactOpts) (*types.Transaction, error) {
	return s.transact(opts, "withdraw")
}
