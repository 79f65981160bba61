package models

import "github.com/shopspring/decimal"

// Expense is a single cost paid by one member and divided equally among
// participants.
type Expense struct {
	// ID is the local identifier (UUID format).
	ID string

	// ChainID is the id assigned by the SplitMe contract, or 0 while
	// unreconciled.
	ChainID uint64

	// GroupID is the local id of the owning group.
	GroupID string

	// Description is what the expense was for (e.g., "Dinner").
	Description string

	// Amount is the total cost in token units.
	Amount decimal.Decimal

	// Payer is the address that paid the full amount.
	Payer string

	// Participants are the addresses splitting the amount. The payer may or
	// may not be one of them.
	Participants []string

	// Settled is true once every participant has covered its share.
	Settled bool

	// TxHash is the createExpense transaction hash, if known.
	TxHash string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Share is one participant's portion of an expense and how much of it has
// been paid back.
type Share struct {
	Participant string
	Amount      decimal.Decimal
	Paid        decimal.Decimal
	Settled     bool
	// SettledAt is the Unix timestamp of the settlement that completed the
	// share, or 0.
	SettledAt int64
}
