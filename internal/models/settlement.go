package models

import "github.com/shopspring/decimal"

// Settlement is a token payment between group members that reduces the
// sender's debt.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// ExpenseID is the expense being paid back. Empty for settle-all
	// payments, which apply to the group balance as a whole.
	ExpenseID string

	// From is the address that paid (debtor settling up).
	From string

	// To is the address that received payment (creditor being paid).
	To string

	// Amount is the payment amount in token units.
	Amount decimal.Decimal

	// TxHash is the settle transaction hash, if known.
	TxHash string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
