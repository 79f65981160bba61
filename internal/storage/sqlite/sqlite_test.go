package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
)

const (
	alice = "0x1111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222"
	carol = "0x3333333333333333333333333333333333333333"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and puts creator first", func(t *testing.T) {
		group := &models.Group{
			Name:    "Weekend Trip",
			Creator: alice,
			Members: []string{bob, alice},
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if group.Category != models.DefaultCategory {
			t.Errorf("Category = %q, want %q", group.Category, models.DefaultCategory)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 || got.Members[0] != alice || got.Members[1] != bob {
			t.Errorf("Members = %v, want [alice bob]", got.Members)
		}
		if got.ChainID != 0 {
			t.Errorf("ChainID = %d, want 0", got.ChainID)
		}
	})

	t.Run("GetGroup missing returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("AddGroupMembers ignores existing members", func(t *testing.T) {
		group := &models.Group{Name: "Rent", Creator: alice}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if err := store.AddGroupMembers(ctx, group.ID, []string{alice, carol}); err != nil {
			t.Fatalf("AddGroupMembers failed: %v", err)
		}
		got, _ := store.GetGroup(ctx, group.ID)
		if len(got.Members) != 2 {
			t.Errorf("Members = %v, want 2 entries", got.Members)
		}

		err := store.AddGroupMembers(ctx, "missing", []string{bob})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsByMember only returns member groups", func(t *testing.T) {
		groups, err := store.ListGroupsByMember(ctx, carol)
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(groups) != 1 || groups[0].Name != "Rent" {
			t.Errorf("unexpected groups for carol: %+v", groups)
		}
	})

	t.Run("UpdateGroupCategory", func(t *testing.T) {
		group := &models.Group{Name: "Food", Creator: bob}
		store.CreateGroup(ctx, group)
		if err := store.UpdateGroupCategory(ctx, group.ID, "dining"); err != nil {
			t.Fatalf("UpdateGroupCategory failed: %v", err)
		}
		got, _ := store.GetGroup(ctx, group.ID)
		if got.Category != "dining" {
			t.Errorf("Category = %q, want dining", got.Category)
		}
		if err := store.UpdateGroupCategory(ctx, "missing", "x"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reconciliation lookups", func(t *testing.T) {
		first := &models.Group{Name: "Dup", Creator: carol, TxHash: "0xabc", CreatedAt: 10}
		second := &models.Group{Name: "Dup", Creator: carol, CreatedAt: 20}
		store.CreateGroup(ctx, first)
		store.CreateGroup(ctx, second)

		byTx, err := store.FindGroupByTxHash(ctx, "0xabc")
		if err != nil || byTx.ID != first.ID {
			t.Fatalf("FindGroupByTxHash = %v, %v", byTx, err)
		}

		oldest, err := store.FindUnreconciledGroup(ctx, "Dup", carol)
		if err != nil || oldest.ID != first.ID {
			t.Fatalf("FindUnreconciledGroup = %v, %v", oldest, err)
		}

		if err := store.SetGroupChainID(ctx, first.ID, 7); err != nil {
			t.Fatalf("SetGroupChainID failed: %v", err)
		}
		next, err := store.FindUnreconciledGroup(ctx, "Dup", carol)
		if err != nil || next.ID != second.ID {
			t.Fatalf("FindUnreconciledGroup after reconcile = %v, %v", next, err)
		}

		byChain, err := store.GetGroupByChainID(ctx, 7)
		if err != nil || byChain.ID != first.ID {
			t.Fatalf("GetGroupByChainID = %v, %v", byChain, err)
		}

		err = store.SetGroupChainID(ctx, second.ID, 7)
		if !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestSQLiteStore_ExpensesAndSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", Creator: alice, Members: []string{bob, carol}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	expense := &models.Expense{
		GroupID:      group.ID,
		Description:  "Dinner",
		Amount:       decimal.RequireFromString("120.50"),
		Payer:        alice,
		Participants: []string{carol, alice, bob},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("GetExpense keeps participant order and amount", func(t *testing.T) {
		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString("120.5")) {
			t.Errorf("Amount = %s", got.Amount)
		}
		want := []string{carol, alice, bob}
		for i, p := range want {
			if got.Participants[i] != p {
				t.Errorf("participant %d = %s, want %s", i, got.Participants[i], p)
			}
		}
	})

	t.Run("group total sums expenses", func(t *testing.T) {
		store.CreateExpense(ctx, &models.Expense{
			GroupID: group.ID, Description: "Taxi", Amount: decimal.RequireFromString("9.5"),
			Payer: bob, Participants: []string{bob},
		})
		got, _ := store.GetGroup(ctx, group.ID)
		if !got.TotalAmount.Equal(decimal.RequireFromString("130")) {
			t.Errorf("TotalAmount = %s, want 130", got.TotalAmount)
		}
	})

	t.Run("ListExpensesByAddress includes payer and participant", func(t *testing.T) {
		list, err := store.ListExpensesByAddress(ctx, carol)
		if err != nil {
			t.Fatalf("ListExpensesByAddress failed: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("carol expenses = %d, want 1", len(list))
		}
		list, _ = store.ListExpensesByAddress(ctx, bob)
		if len(list) != 2 {
			t.Errorf("bob expenses = %d, want 2", len(list))
		}
	})

	t.Run("FindUnreconciledExpense compares amounts as decimals", func(t *testing.T) {
		got, err := store.FindUnreconciledExpense(ctx, group.ID, "Dinner", alice, decimal.RequireFromString("120.500"))
		if err != nil || got.ID != expense.ID {
			t.Fatalf("FindUnreconciledExpense = %v, %v", got, err)
		}
		_, err = store.FindUnreconciledExpense(ctx, group.ID, "Dinner", alice, decimal.RequireFromString("1"))
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("settlements round trip and dedupe lookup", func(t *testing.T) {
		err := store.CreateSettlements(ctx,
			&models.Settlement{GroupID: group.ID, ExpenseID: expense.ID, From: bob, To: alice,
				Amount: decimal.RequireFromString("40.17"), TxHash: "0xfeed"},
			&models.Settlement{GroupID: group.ID, From: carol, To: alice,
				Amount: decimal.RequireFromString("5")},
		)
		if err != nil {
			t.Fatalf("CreateSettlements failed: %v", err)
		}

		list, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("settlements = %d, want 2", len(list))
		}
		if list[1].ExpenseID != "" {
			t.Errorf("settle-all settlement should have no expense, got %q", list[1].ExpenseID)
		}

		ok, err := store.HasSettlement(ctx, "0xfeed", expense.ID)
		if err != nil || !ok {
			t.Errorf("HasSettlement = %v, %v; want true", ok, err)
		}
		ok, _ = store.HasSettlement(ctx, "0xfeed", "other")
		if ok {
			t.Error("HasSettlement matched a different expense")
		}
	})

	t.Run("SetExpenseSettled", func(t *testing.T) {
		if err := store.SetExpenseSettled(ctx, expense.ID, true); err != nil {
			t.Fatalf("SetExpenseSettled failed: %v", err)
		}
		got, _ := store.GetExpense(ctx, expense.ID)
		if !got.Settled {
			t.Error("expected expense to be settled")
		}
	})
}

func TestSQLiteStore_AddressBook(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddAddressEntry(ctx, &models.AddressEntry{Address: alice, OwnerName: "Alice"}); err != nil {
		t.Fatalf("AddAddressEntry failed: %v", err)
	}
	store.AddAddressEntry(ctx, &models.AddressEntry{Address: bob, OwnerName: "Alice"})

	err := store.AddAddressEntry(ctx, &models.AddressEntry{Address: alice, OwnerName: "Mallory"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	addrs, err := store.ListAddressesByOwner(ctx, "Alice")
	if err != nil || len(addrs) != 2 {
		t.Fatalf("ListAddressesByOwner = %v, %v", addrs, err)
	}

	if err := store.RemoveAddressEntry(ctx, alice); err != nil {
		t.Fatalf("RemoveAddressEntry failed: %v", err)
	}
	if _, err := store.GetAddressEntry(ctx, alice); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after removal, got %v", err)
	}
	if err := store.RemoveAddressEntry(ctx, alice); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound removing twice, got %v", err)
	}

	entries, _ := store.ListAddressEntries(ctx)
	if len(entries) != 1 || entries[0].Address != bob {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestSQLiteStore_SyncCursor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	block, err := store.GetSyncCursor(ctx, "splitme")
	if err != nil || block != 0 {
		t.Fatalf("GetSyncCursor = %d, %v; want 0", block, err)
	}
	store.SetSyncCursor(ctx, "splitme", 100)
	store.SetSyncCursor(ctx, "splitme", 250)
	block, _ = store.GetSyncCursor(ctx, "splitme")
	if block != 250 {
		t.Errorf("cursor = %d, want 250", block)
	}
}
