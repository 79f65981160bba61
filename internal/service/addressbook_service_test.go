package service

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/pkg/api"
)

const mixedCase = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestAddressBook(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	resp, err := c.book.AddEntry(ctx, as(alice, &api.AddEntryRequest{
		Address:   strings.ToLower(mixedCase),
		OwnerName: " Alice ",
	}))
	if err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	if resp.Msg.Entry.Address != mixedCase {
		t.Errorf("expected checksummed address, got %s", resp.Msg.Entry.Address)
	}
	if resp.Msg.Entry.OwnerName != "Alice" {
		t.Errorf("expected trimmed owner, got %q", resp.Msg.Entry.OwnerName)
	}

	t.Run("uniqueness ignores case", func(t *testing.T) {
		_, err := c.book.AddEntry(ctx, as(alice, &api.AddEntryRequest{
			Address:   strings.ToUpper(mixedCase[2:]),
			OwnerName: "Mallory",
		}))
		// Without the 0x prefix the address is rejected outright.
		assertCode(t, err, connect.CodeInvalidArgument)

		_, err = c.book.AddEntry(ctx, as(alice, &api.AddEntryRequest{
			Address:   "0x" + strings.ToUpper(mixedCase[2:]),
			OwnerName: "Mallory",
		}))
		assertCode(t, err, connect.CodeAlreadyExists)
		if !strings.Contains(err.Error(), "Alice") {
			t.Errorf("error should name the existing owner: %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		_, err := c.book.AddEntry(ctx, as(alice, &api.AddEntryRequest{Address: "", OwnerName: "Bob"}))
		assertCode(t, err, connect.CodeInvalidArgument)
		_, err = c.book.AddEntry(ctx, as(alice, &api.AddEntryRequest{Address: "0x1234", OwnerName: "Bob"}))
		assertCode(t, err, connect.CodeInvalidArgument)
		_, err = c.book.AddEntry(ctx, as(alice, &api.AddEntryRequest{Address: bob, OwnerName: "  "}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("lookups", func(t *testing.T) {
		if _, err := c.book.AddEntry(ctx, as(alice, &api.AddEntryRequest{Address: bob, OwnerName: "Alice"})); err != nil {
			t.Fatalf("AddEntry failed: %v", err)
		}

		owner, err := c.book.GetOwnerByAddress(ctx, as(alice, &api.GetOwnerByAddressRequest{Address: bob}))
		if err != nil {
			t.Fatalf("GetOwnerByAddress failed: %v", err)
		}
		if owner.Msg.OwnerName != "Alice" {
			t.Errorf("expected Alice, got %q", owner.Msg.OwnerName)
		}

		addrs, err := c.book.GetAddressesByOwner(ctx, as(alice, &api.GetAddressesByOwnerRequest{OwnerName: "Alice"}))
		if err != nil {
			t.Fatalf("GetAddressesByOwner failed: %v", err)
		}
		if len(addrs.Msg.Addresses) != 2 {
			t.Errorf("expected 2 addresses, got %v", addrs.Msg.Addresses)
		}

		_, err = c.book.GetOwnerByAddress(ctx, as(alice, &api.GetOwnerByAddressRequest{Address: carol}))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		if _, err := c.book.RemoveEntry(ctx, as(alice, &api.RemoveEntryRequest{Address: bob})); err != nil {
			t.Fatalf("RemoveEntry failed: %v", err)
		}
		_, err := c.book.RemoveEntry(ctx, as(alice, &api.RemoveEntryRequest{Address: bob}))
		assertCode(t, err, connect.CodeNotFound)

		list, err := c.book.ListEntries(ctx, as(alice, &api.ListEntriesRequest{}))
		if err != nil {
			t.Fatalf("ListEntries failed: %v", err)
		}
		if len(list.Msg.Entries) != 1 || list.Msg.Entries[0].Address != mixedCase {
			t.Errorf("unexpected entries: %+v", list.Msg.Entries)
		}
	})
}
