package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func netOf(t *testing.T, balances []MemberBalance, member string) decimal.Decimal {
	t.Helper()
	for _, b := range balances {
		if b.Member == member {
			return b.NetBalance
		}
	}
	t.Fatalf("no balance for %s", member)
	return decimal.Zero
}

func requireNetsToZero(t *testing.T, balances []MemberBalance) {
	t.Helper()
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.NetBalance)
	}
	require.True(t, sum.IsZero(), "balances sum to %s", sum)
}

func TestCalculateGroupBalances_SingleExpense(t *testing.T) {
	balances, debts, err := CalculateGroupBalances(
		[]string{"0xA", "0xB", "0xC"},
		[]ExpenseForBalance{
			{ID: "e1", Amount: dec("90"), Payer: "0xA", Participants: []string{"0xA", "0xB", "0xC"}},
		},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, balances, 3)
	requireNetsToZero(t, balances)

	assert.True(t, netOf(t, balances, "0xA").Equal(dec("60")))
	assert.True(t, netOf(t, balances, "0xB").Equal(dec("-30")))
	assert.True(t, netOf(t, balances, "0xC").Equal(dec("-30")))

	require.Len(t, debts, 2)
	assert.Equal(t, "0xB", debts[0].From)
	assert.Equal(t, "0xA", debts[0].To)
	assert.True(t, debts[0].Amount.Equal(dec("30")))
	assert.Equal(t, "0xC", debts[1].From)
}

func TestCalculateGroupBalances_PayerNotParticipant(t *testing.T) {
	balances, debts, err := CalculateGroupBalances(
		[]string{"0xA", "0xB"},
		[]ExpenseForBalance{
			{ID: "e1", Amount: dec("25"), Payer: "0xA", Participants: []string{"0xB"}},
		},
		nil,
	)
	require.NoError(t, err)
	requireNetsToZero(t, balances)
	assert.True(t, netOf(t, balances, "0xB").Equal(dec("-25")))
	require.Len(t, debts, 1)
	assert.True(t, debts[0].Amount.Equal(dec("25")))
}

func TestCalculateGroupBalances_SettlementsClearDebt(t *testing.T) {
	expenses := []ExpenseForBalance{
		{ID: "e1", Amount: dec("100"), Payer: "0xA", Participants: []string{"0xA", "0xB"}},
	}
	settlements := []SettlementForBalance{
		{ExpenseID: "e1", From: "0xB", To: "0xA", Amount: dec("50")},
	}

	balances, debts, err := CalculateGroupBalances([]string{"0xA", "0xB"}, expenses, settlements)
	require.NoError(t, err)
	requireNetsToZero(t, balances)
	assert.True(t, netOf(t, balances, "0xA").IsZero())
	assert.True(t, netOf(t, balances, "0xB").IsZero())
	assert.Empty(t, debts)
}

func TestCalculateGroupBalances_UnevenSplitNetsToZero(t *testing.T) {
	members := []string{"0xA", "0xB", "0xC", "0xD"}
	expenses := []ExpenseForBalance{
		{ID: "e1", Amount: dec("10"), Payer: "0xA", Participants: []string{"0xA", "0xB", "0xC"}},
		{ID: "e2", Amount: dec("7.77"), Payer: "0xB", Participants: []string{"0xC", "0xD"}},
		{ID: "e3", Amount: dec("0.01"), Payer: "0xD", Participants: members},
	}
	settlements := []SettlementForBalance{
		{From: "0xC", To: "0xA", Amount: dec("1.5")},
	}

	balances, debts, err := CalculateGroupBalances(members, expenses, settlements)
	require.NoError(t, err)
	requireNetsToZero(t, balances)

	// Applying every suggested payment clears the group.
	_, after, err := CalculateGroupBalances(members, expenses, append(settlements, toSettlements(debts)...))
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestCalculateGroupBalances_ZeroMembersListed(t *testing.T) {
	balances, debts, err := CalculateGroupBalances([]string{"0xB", "0xA"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "0xA", balances[0].Member)
	assert.Empty(t, debts)
}

func TestDebtsFrom(t *testing.T) {
	edges := []DebtEdge{
		{From: "0xB", To: "0xA", Amount: dec("3")},
		{From: "0xB", To: "0xC", Amount: dec("2")},
		{From: "0xD", To: "0xA", Amount: dec("1")},
	}
	mine, total := DebtsFrom(edges, "0xB")
	assert.Len(t, mine, 2)
	assert.True(t, total.Equal(dec("5")))
}

func TestExpenseShares(t *testing.T) {
	e := ExpenseForBalance{
		ID: "e1", Amount: dec("30"), Payer: "0xA",
		Participants: []string{"0xA", "0xB", "0xC"}, CreatedAt: 100,
	}
	settlements := []SettlementForBalance{
		{ExpenseID: "e1", From: "0xB", To: "0xA", Amount: dec("4"), CreatedAt: 200},
		{ExpenseID: "e1", From: "0xB", To: "0xA", Amount: dec("6"), CreatedAt: 300},
		{ExpenseID: "other", From: "0xC", To: "0xA", Amount: dec("10"), CreatedAt: 250},
	}

	statuses, err := ExpenseShares(e, settlements)
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.True(t, statuses[0].Settled)
	assert.Equal(t, int64(100), statuses[0].SettledAt)

	assert.True(t, statuses[1].Settled)
	assert.Equal(t, int64(300), statuses[1].SettledAt)

	assert.False(t, statuses[2].Settled)
	assert.True(t, Outstanding(statuses, "0xC").Equal(dec("10")))
	assert.True(t, Outstanding(statuses, "0xB").IsZero())
	assert.True(t, Outstanding(statuses, "0xZ").IsZero())
	assert.False(t, AllSettled(statuses))
}

func TestCoverByNetBalance(t *testing.T) {
	e := ExpenseForBalance{
		ID: "e1", Amount: dec("30"), Payer: "0xA",
		Participants: []string{"0xA", "0xB", "0xC"}, CreatedAt: 100,
	}
	statuses, err := ExpenseShares(e, nil)
	require.NoError(t, err)

	CoverByNetBalance(statuses, map[string]decimal.Decimal{
		"0xA": dec("10"),
		"0xB": decimal.Zero,
		"0xC": dec("-10"),
	})

	assert.True(t, statuses[1].Settled)
	assert.True(t, statuses[1].Paid.IsZero())
	assert.True(t, Outstanding(statuses, "0xB").IsZero())
	assert.False(t, statuses[2].Settled)
	assert.True(t, Outstanding(statuses, "0xC").Equal(dec("10")))
}

func toSettlements(edges []DebtEdge) []SettlementForBalance {
	out := make([]SettlementForBalance, len(edges))
	for i, e := range edges {
		out[i] = SettlementForBalance{From: e.From, To: e.To, Amount: e.Amount}
	}
	return out
}
