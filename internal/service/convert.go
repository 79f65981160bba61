package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitme/splitme/internal/calculator"
	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/pkg/api"
)

func timestamp(unix int64) *api.Timestamp {
	if unix == 0 {
		return nil
	}
	return api.NewTimestamp(time.Unix(unix, 0))
}

// addresses keeps empty lists as [] on the wire.
func addresses(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func amountString(d decimal.Decimal) string {
	return d.String()
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		Id:          g.ID,
		ChainId:     g.ChainID,
		Name:        g.Name,
		Creator:     g.Creator,
		Members:     addresses(g.Members),
		Category:    g.Category,
		TotalAmount: amountString(g.TotalAmount),
		TxHash:      g.TxHash,
		CreatedAt:   timestamp(g.CreatedAt),
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		Id:           e.ID,
		ChainId:      e.ChainID,
		GroupId:      e.GroupID,
		Description:  e.Description,
		Amount:       amountString(e.Amount),
		Payer:        e.Payer,
		Participants: addresses(e.Participants),
		Settled:      e.Settled,
		TxHash:       e.TxHash,
		CreatedAt:    timestamp(e.CreatedAt),
	}
}

func toAPIShares(statuses []calculator.ShareStatus) []*api.Share {
	shares := make([]*api.Share, len(statuses))
	for i, st := range statuses {
		shares[i] = &api.Share{
			Participant: st.Participant,
			Amount:      amountString(st.Amount),
			Paid:        amountString(st.Paid),
			Settled:     st.Settled,
			SettledAt:   timestamp(st.SettledAt),
		}
	}
	return shares
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		Id:        s.ID,
		GroupId:   s.GroupID,
		ExpenseId: s.ExpenseID,
		From:      s.From,
		To:        s.To,
		Amount:    amountString(s.Amount),
		TxHash:    s.TxHash,
		CreatedAt: timestamp(s.CreatedAt),
	}
}

func toAPISettlements(list []*models.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(list))
	for i, s := range list {
		out[i] = toAPISettlement(s)
	}
	return out
}

func toAPIBalance(b calculator.MemberBalance) *api.Balance {
	return &api.Balance{
		Member:     b.Member,
		NetBalance: amountString(b.NetBalance),
		TotalPaid:  amountString(b.TotalPaid),
		TotalOwed:  amountString(b.TotalOwed),
	}
}

func toAPIDebts(edges []calculator.DebtEdge) []*api.Debt {
	debts := make([]*api.Debt, len(edges))
	for i, e := range edges {
		debts[i] = &api.Debt{From: e.From, To: e.To, Amount: amountString(e.Amount)}
	}
	return debts
}

func toAPIEntry(e *models.AddressEntry) *api.AddressEntry {
	return &api.AddressEntry{
		Address:   e.Address,
		OwnerName: e.OwnerName,
		CreatedAt: timestamp(e.CreatedAt),
	}
}
