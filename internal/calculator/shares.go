package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ShareStatus is one participant's share of an expense and how much of it
// has been paid back to the payer.
type ShareStatus struct {
	Participant string
	Amount      decimal.Decimal
	Paid        decimal.Decimal
	Settled     bool
	SettledAt   int64
}

// ExpenseShares reports, per participant in list order, the share owed and
// how much of it the expense's settlements have covered. Only settlements
// tied to this expense and paid to its payer count. The payer's own share
// is settled from the moment the expense was recorded.
func ExpenseShares(e ExpenseForBalance, settlements []SettlementForBalance) ([]ShareStatus, error) {
	shares, err := SplitEqually(e.Amount, e.Participants)
	if err != nil {
		return nil, err
	}

	relevant := make([]SettlementForBalance, 0, len(settlements))
	for _, s := range settlements {
		if s.ExpenseID == e.ID && s.To == e.Payer {
			relevant = append(relevant, s)
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool { return relevant[i].CreatedAt < relevant[j].CreatedAt })

	statuses := make([]ShareStatus, len(shares))
	for i, sh := range shares {
		st := ShareStatus{Participant: sh.Participant, Amount: sh.Amount, Paid: decimal.Zero}
		if sh.Participant == e.Payer {
			st.Paid = sh.Amount
			st.Settled = true
			st.SettledAt = e.CreatedAt
			statuses[i] = st
			continue
		}
		for _, s := range relevant {
			if s.From != sh.Participant {
				continue
			}
			st.Paid = st.Paid.Add(s.Amount)
			if !st.Settled && st.Paid.GreaterThanOrEqual(sh.Amount) {
				st.Settled = true
				st.SettledAt = s.CreatedAt
			}
		}
		statuses[i] = st
	}
	return statuses, nil
}

// Outstanding returns what participant still owes on the expense, or zero
// when the share is settled or the address is not a participant.
func Outstanding(statuses []ShareStatus, participant string) decimal.Decimal {
	for _, st := range statuses {
		if st.Participant == participant {
			if st.Settled {
				return decimal.Zero
			}
			return st.Amount.Sub(st.Paid)
		}
	}
	return decimal.Zero
}

// AllSettled reports whether every share is settled.
func AllSettled(statuses []ShareStatus) bool {
	for _, st := range statuses {
		if !st.Settled {
			return false
		}
	}
	return true
}

// CoverByNetBalance marks open shares as settled when the participant no
// longer owes anything in the group, as happens after a settle-all payment
// that is not tied to an expense.
func CoverByNetBalance(statuses []ShareStatus, net map[string]decimal.Decimal) {
	for i := range statuses {
		st := &statuses[i]
		if st.Settled {
			continue
		}
		if b, ok := net[st.Participant]; ok && !b.IsNegative() {
			st.Settled = true
		}
	}
}
