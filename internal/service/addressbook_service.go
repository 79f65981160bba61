package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
	"github.com/splitme/splitme/internal/wallet"
	"github.com/splitme/splitme/pkg/api"
	"github.com/splitme/splitme/pkg/api/apiconnect"
)

// AddressBookService implements the Connect AddressBookService.
type AddressBookService struct {
	apiconnect.UnimplementedAddressBookServiceHandler
	store storage.AddressBook
}

// NewAddressBookService creates a new AddressBookService.
func NewAddressBookService(store storage.AddressBook) *AddressBookService {
	return &AddressBookService{store: store}
}

// AddEntry labels an address with an owner name. An address can belong to
// one owner only; the comparison ignores case.
func (s *AddressBookService) AddEntry(ctx context.Context, req *connect.Request[api.AddEntryRequest]) (*connect.Response[api.AddEntryResponse], error) {
	if _, err := callerAddress(ctx); err != nil {
		return nil, err
	}

	slog.Info("AddEntry request received", "address", req.Msg.Address, "owner", req.Msg.OwnerName)

	address, err := parseEntryAddress(req.Msg.Address)
	if err != nil {
		return nil, err
	}
	owner, err := requiredText("owner name", req.Msg.OwnerName, maxOwnerNameLen)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetAddressEntry(ctx, address)
	if err == nil {
		return nil, connect.NewError(connect.CodeAlreadyExists,
			fmt.Errorf("address already exists for owner: %s", existing.OwnerName))
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, connectError(err)
	}

	entry := &models.AddressEntry{Address: address, OwnerName: owner}
	if err := s.store.AddAddressEntry(ctx, entry); err != nil {
		slog.Error("AddEntry failed", "address", address, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Address entry added", "address", address, "owner", owner)

	return connect.NewResponse(&api.AddEntryResponse{Entry: toAPIEntry(entry)}), nil
}

// RemoveEntry deletes the entry for an address.
func (s *AddressBookService) RemoveEntry(ctx context.Context, req *connect.Request[api.RemoveEntryRequest]) (*connect.Response[api.RemoveEntryResponse], error) {
	if _, err := callerAddress(ctx); err != nil {
		return nil, err
	}

	slog.Info("RemoveEntry request received", "address", req.Msg.Address)

	address, err := parseEntryAddress(req.Msg.Address)
	if err != nil {
		return nil, err
	}
	if err := s.store.RemoveAddressEntry(ctx, address); err != nil {
		return nil, connectError(err)
	}

	slog.Info("Address entry removed", "address", address)

	return connect.NewResponse(&api.RemoveEntryResponse{}), nil
}

// ListEntries returns every entry in the order they were added.
func (s *AddressBookService) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	if _, err := callerAddress(ctx); err != nil {
		return nil, err
	}

	entries, err := s.store.ListAddressEntries(ctx)
	if err != nil {
		slog.Error("ListEntries failed", "error", err)
		return nil, connectError(err)
	}

	apiEntries := make([]*api.AddressEntry, len(entries))
	for i, e := range entries {
		apiEntries[i] = toAPIEntry(e)
	}

	slog.Info("ListEntries successful", "count", len(entries))

	return connect.NewResponse(&api.ListEntriesResponse{Entries: apiEntries}), nil
}

// GetOwnerByAddress looks up who an address belongs to.
func (s *AddressBookService) GetOwnerByAddress(ctx context.Context, req *connect.Request[api.GetOwnerByAddressRequest]) (*connect.Response[api.GetOwnerByAddressResponse], error) {
	if _, err := callerAddress(ctx); err != nil {
		return nil, err
	}

	address, err := parseEntryAddress(req.Msg.Address)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.GetAddressEntry(ctx, address)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetOwnerByAddressResponse{OwnerName: entry.OwnerName}), nil
}

// GetAddressesByOwner lists the addresses recorded for an owner name.
func (s *AddressBookService) GetAddressesByOwner(ctx context.Context, req *connect.Request[api.GetAddressesByOwnerRequest]) (*connect.Response[api.GetAddressesByOwnerResponse], error) {
	if _, err := callerAddress(ctx); err != nil {
		return nil, err
	}

	owner := strings.TrimSpace(req.Msg.OwnerName)
	if owner == "" {
		return nil, invalidArgument("owner name is required")
	}
	addresses, err := s.store.ListAddressesByOwner(ctx, owner)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetAddressesByOwnerResponse{Addresses: addresses}), nil
}

func parseEntryAddress(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", invalidArgument("address is required")
	}
	address, err := wallet.ParseAddress(s)
	if err != nil {
		return "", connectError(err)
	}
	return address, nil
}
