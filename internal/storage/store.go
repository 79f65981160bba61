// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/splitme/splitme/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// GroupStore persists groups and their members.
type GroupStore interface {
	// CreateGroup persists a new group. ID and CreatedAt are populated when
	// empty. The creator is stored as the first member.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members and expense total.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GetGroupByChainID retrieves the group mirrored from a contract id.
	GetGroupByChainID(ctx context.Context, chainID uint64) (*models.Group, error)

	// FindGroupByTxHash returns the group created by the given transaction.
	FindGroupByTxHash(ctx context.Context, txHash string) (*models.Group, error)

	// FindUnreconciledGroup returns the oldest group without a chain id that
	// has the given name and creator.
	FindUnreconciledGroup(ctx context.Context, name, creator string) (*models.Group, error)

	// ListGroupsByMember returns the groups an address belongs to, newest first.
	ListGroupsByMember(ctx context.Context, address string) ([]*models.Group, error)

	UpdateGroupCategory(ctx context.Context, groupID, category string) error

	// AddGroupMembers appends members, ignoring addresses already present.
	AddGroupMembers(ctx context.Context, groupID string, members []string) error

	SetGroupChainID(ctx context.Context, groupID string, chainID uint64) error
}

// ExpenseStore persists expenses and their participants.
type ExpenseStore interface {
	// CreateExpense persists a new expense. ID and CreatedAt are populated
	// when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	GetExpenseByChainID(ctx context.Context, chainID uint64) (*models.Expense, error)
	FindExpenseByTxHash(ctx context.Context, txHash string) (*models.Expense, error)

	// FindUnreconciledExpense returns the oldest expense without a chain id
	// matching all the given fields.
	FindUnreconciledExpense(ctx context.Context, groupID, description, payer string, amount decimal.Decimal) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListExpensesByAddress returns every expense an address paid for or
	// participates in, newest first.
	ListExpensesByAddress(ctx context.Context, address string) ([]*models.Expense, error)

	SetExpenseSettled(ctx context.Context, expenseID string, settled bool) error
	SetExpenseChainID(ctx context.Context, expenseID string, chainID uint64) error
}

// SettlementStore persists settlements.
type SettlementStore interface {
	// CreateSettlements persists settlements atomically.
	CreateSettlements(ctx context.Context, settlements ...*models.Settlement) error

	// ListSettlementsByGroup returns a group's settlements, oldest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// HasSettlement reports whether a settlement with this transaction hash
	// and expense was already recorded.
	HasSettlement(ctx context.Context, txHash, expenseID string) (bool, error)
}

// AddressBook persists address to owner name mappings.
type AddressBook interface {
	// AddAddressEntry stores a new entry. Returns ErrAlreadyExists when the
	// address is already in the book.
	AddAddressEntry(ctx context.Context, entry *models.AddressEntry) error

	GetAddressEntry(ctx context.Context, address string) (*models.AddressEntry, error)
	ListAddressEntries(ctx context.Context) ([]*models.AddressEntry, error)
	ListAddressesByOwner(ctx context.Context, ownerName string) ([]string, error)
	RemoveAddressEntry(ctx context.Context, address string) error
}

// CursorStore remembers how far chain event processing has progressed.
type CursorStore interface {
	// GetSyncCursor returns the last processed block for name, or 0.
	GetSyncCursor(ctx context.Context, name string) (uint64, error)
	SetSyncCursor(ctx context.Context, name string, block uint64) error
}

// Store combines every storage concern.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	GroupStore
	ExpenseStore
	SettlementStore
	AddressBook
	CursorStore

	// Close releases any resources held by the store.
	Close() error
}
