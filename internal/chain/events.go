package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrUnknownEvent is returned for logs that are not SplitMe events.
var ErrUnknownEvent = errors.New("unknown event")

// Event names emitted by the SplitMe contract.
const (
	EventGroupCreated         = "GroupCreated"
	EventGroupCategoryUpdated = "GroupCategoryUpdated"
	EventExpenseCreated       = "ExpenseCreated"
	EventExpenseSettled       = "ExpenseSettled"
)

// GroupCreated is emitted by createGroup.
type GroupCreated struct {
	GroupId *big.Int
	Name    string
	Creator common.Address
	Raw     types.Log
}

// GroupCategoryUpdated is emitted by updateGroupCategory.
type GroupCategoryUpdated struct {
	GroupId  *big.Int
	Category string
	Raw      types.Log
}

// ExpenseCreated is emitted by createExpense.
type ExpenseCreated struct {
	ExpenseId   *big.Int
	GroupId     *big.Int
	Description string
	Amount      *big.Int
	PaidBy      common.Address
	Raw         types.Log
}

// ExpenseSettled is emitted by settleExpense and settleAllDebts.
type ExpenseSettled struct {
	ExpenseId *big.Int
	Settler   common.Address
	Amount    *big.Int
	Raw       types.Log
}

// EventTopics returns the topic0 values of every SplitMe event, for use in
// log filters.
func EventTopics() []common.Hash {
	return []common.Hash{
		SplitMeABI.Events[EventGroupCreated].ID,
		SplitMeABI.Events[EventGroupCategoryUpdated].ID,
		SplitMeABI.Events[EventExpenseCreated].ID,
		SplitMeABI.Events[EventExpenseSettled].ID,
	}
}

// eventDecoder unpacks logs without needing a backend.
var eventDecoder = bind.NewBoundContract(common.Address{}, SplitMeABI, nil, nil, nil)

// DecodeEvent decodes a SplitMe log into one of the event structs.
func DecodeEvent(log types.Log) (interface{}, error) {
	if len(log.Topics) == 0 {
		return nil, ErrUnknownEvent
	}
	ev, err := SplitMeABI.EventByID(log.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, log.Topics[0].Hex())
	}

	var out interface{}
	switch ev.Name {
	case EventGroupCreated:
		out = &GroupCreated{Raw: log}
	case EventGroupCategoryUpdated:
		out = &GroupCategoryUpdated{Raw: log}
	case EventExpenseCreated:
		out = &ExpenseCreated{Raw: log}
	case EventExpenseSettled:
		out = &ExpenseSettled{Raw: log}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Name)
	}
	if err := eventDecoder.UnpackLog(out, ev.Name, log); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ev.Name, err)
	}
	return out, nil
}
