package models

import "github.com/shopspring/decimal"

// DefaultCategory is used when a group is created without a category.
const DefaultCategory = "general"

// Group is a named set of addresses sharing expenses.
type Group struct {
	// ID is the local identifier (UUID format).
	ID string

	// ChainID is the id assigned by the SplitMe contract, or 0 while the
	// group has not been matched to its GroupCreated event.
	ChainID uint64

	// Name is the display name (e.g., "Weekend Trip").
	Name string

	// Creator is the address that created the group. The creator is always
	// a member.
	Creator string

	// Members are the member addresses, creator included.
	Members []string

	// Category is a free-form tag (e.g., "travel", "rent").
	Category string

	// TotalAmount is the sum of all expense amounts recorded in the group.
	// It is derived on read, not stored.
	TotalAmount decimal.Decimal

	// TxHash is the createGroup transaction hash reported by the client, if any.
	TxHash string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether addr is a member. Addresses are compared in
// checksum form.
func (g *Group) HasMember(addr string) bool {
	for _, m := range g.Members {
		if m == addr {
			return true
		}
	}
	return false
}
