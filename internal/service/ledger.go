package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splitme/splitme/internal/calculator"
	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
)

// groupLedger is everything needed to compute a group's balances.
type groupLedger struct {
	group       *models.Group
	expenses    []*models.Expense
	settlements []*models.Settlement
}

func loadGroupLedger(ctx context.Context, store storage.Store, groupID string) (*groupLedger, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	settlements, err := store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}
	return &groupLedger{group: group, expenses: expenses, settlements: settlements}, nil
}

func (l *groupLedger) balances() ([]calculator.MemberBalance, []calculator.DebtEdge, error) {
	expenses := make([]calculator.ExpenseForBalance, len(l.expenses))
	for i, e := range l.expenses {
		expenses[i] = expenseForBalance(e)
	}
	return calculator.CalculateGroupBalances(l.group.Members, expenses, settlementsForBalance(l.settlements))
}

// netBalances maps each member to its net balance in the group.
func (l *groupLedger) netBalances() (map[string]decimal.Decimal, error) {
	balances, _, err := l.balances()
	if err != nil {
		return nil, err
	}
	net := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		net[b.Member] = b.NetBalance
	}
	return net, nil
}

func expenseForBalance(e *models.Expense) calculator.ExpenseForBalance {
	return calculator.ExpenseForBalance{
		ID:           e.ID,
		Amount:       e.Amount,
		Payer:        e.Payer,
		Participants: e.Participants,
		CreatedAt:    e.CreatedAt,
	}
}

func settlementsForBalance(list []*models.Settlement) []calculator.SettlementForBalance {
	out := make([]calculator.SettlementForBalance, len(list))
	for i, s := range list {
		out[i] = calculator.SettlementForBalance{
			ExpenseID: s.ExpenseID,
			From:      s.From,
			To:        s.To,
			Amount:    s.Amount,
			CreatedAt: s.CreatedAt,
		}
	}
	return out
}

// expenseShares reports per-participant settlement status. Shares of
// participants who owe nothing in the group read as settled, and once an
// expense is flagged settled every share does. A nil net map skips the
// group check.
func expenseShares(e *models.Expense, settlements []*models.Settlement, net map[string]decimal.Decimal) ([]calculator.ShareStatus, error) {
	statuses, err := calculator.ExpenseShares(expenseForBalance(e), settlementsForBalance(settlements))
	if err != nil {
		return nil, err
	}
	calculator.CoverByNetBalance(statuses, net)
	if e.Settled {
		for i := range statuses {
			statuses[i].Settled = true
		}
	}
	return statuses, nil
}
