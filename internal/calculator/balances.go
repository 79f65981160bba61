package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ExpenseForBalance is an expense with the minimal information needed for
// balance calculations.
type ExpenseForBalance struct {
	ID           string
	Amount       decimal.Decimal
	Payer        string
	Participants []string
	CreatedAt    int64
}

// SettlementForBalance is a settlement with the minimal information needed
// for balance calculations.
type SettlementForBalance struct {
	ExpenseID string // empty for settle-all payments
	From      string // who paid (debtor settling up)
	To        string // who received (creditor being paid)
	Amount    decimal.Decimal
	CreatedAt int64
}

// MemberBalance is the balance of one group member.
type MemberBalance struct {
	Member     string
	NetBalance decimal.Decimal // positive = is owed money, negative = owes money
	TotalPaid  decimal.Decimal // expenses paid plus settlements sent
	TotalOwed  decimal.Decimal // shares owed plus settlements received
}

// DebtEdge is a payment that would clear part of the group's debts.
type DebtEdge struct {
	From   string // person who owes
	To     string // person who is owed
	Amount decimal.Decimal
}

// CalculateGroupBalances computes member balances across expenses and
// settlements and a simplified list of payments that would settle the group.
//
// Every member in members is reported, even with a zero balance; addresses
// that appear only in expenses or settlements are added. Balances are sorted
// by member address and their net balances always sum to zero.
func CalculateGroupBalances(members []string, expenses []ExpenseForBalance, settlements []SettlementForBalance) ([]MemberBalance, []DebtEdge, error) {
	balances := make(map[string]*MemberBalance)
	get := func(addr string) *MemberBalance {
		if b, ok := balances[addr]; ok {
			return b
		}
		b := &MemberBalance{Member: addr}
		balances[addr] = b
		return b
	}
	for _, m := range members {
		get(m)
	}

	for _, e := range expenses {
		if e.Payer == "" {
			continue
		}
		shares, err := SplitEqually(e.Amount, e.Participants)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to split expense %s: %w", e.ID, err)
		}

		payer := get(e.Payer)
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)

		for _, s := range shares {
			p := get(s.Participant)
			p.TotalOwed = p.TotalOwed.Add(s.Amount)
		}
	}

	for _, s := range settlements {
		from := get(s.From)
		to := get(s.To)
		from.TotalPaid = from.TotalPaid.Add(s.Amount)
		to.TotalOwed = to.TotalOwed.Add(s.Amount)
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.TotalPaid.Sub(b.TotalOwed)
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Member < result[j].Member })

	return result, SimplifyDebts(result), nil
}

// SimplifyDebts matches debtors with creditors greedily: the largest debt is
// paid to the largest credit first, ties broken by address, until every
// balance is cleared.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	type entry struct {
		member string
		amount decimal.Decimal
	}
	var debtors, creditors []entry
	for _, b := range balances {
		switch {
		case b.NetBalance.IsNegative():
			debtors = append(debtors, entry{b.Member, b.NetBalance.Neg()})
		case b.NetBalance.IsPositive():
			creditors = append(creditors, entry{b.Member, b.NetBalance})
		}
	}
	byAmount := func(list []entry) func(i, j int) bool {
		return func(i, j int) bool {
			if c := list[i].amount.Cmp(list[j].amount); c != 0 {
				return c > 0
			}
			return list[i].member < list[j].member
		}
	}
	sort.Slice(debtors, byAmount(debtors))
	sort.Slice(creditors, byAmount(creditors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{
				From:   debtors[i].member,
				To:     creditors[j].member,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}
	return edges
}

// DebtsFrom returns the edges paid by member and their total.
func DebtsFrom(edges []DebtEdge, member string) ([]DebtEdge, decimal.Decimal) {
	var out []DebtEdge
	total := decimal.Zero
	for _, e := range edges {
		if e.From == member {
			out = append(out, e)
			total = total.Add(e.Amount)
		}
	}
	return out, total
}
