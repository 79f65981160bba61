package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/pkg/api"
)

const AddressBookServiceName = "splitme.v1.AddressBookService"

const (
	AddressBookServiceAddEntryProcedure            = "/splitme.v1.AddressBookService/AddEntry"
	AddressBookServiceRemoveEntryProcedure         = "/splitme.v1.AddressBookService/RemoveEntry"
	AddressBookServiceListEntriesProcedure         = "/splitme.v1.AddressBookService/ListEntries"
	AddressBookServiceGetOwnerByAddressProcedure   = "/splitme.v1.AddressBookService/GetOwnerByAddress"
	AddressBookServiceGetAddressesByOwnerProcedure = "/splitme.v1.AddressBookService/GetAddressesByOwner"
)

// AddressBookServiceHandler is implemented by the address book.
type AddressBookServiceHandler interface {
	AddEntry(context.Context, *connect.Request[api.AddEntryRequest]) (*connect.Response[api.AddEntryResponse], error)
	RemoveEntry(context.Context, *connect.Request[api.RemoveEntryRequest]) (*connect.Response[api.RemoveEntryResponse], error)
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	GetOwnerByAddress(context.Context, *connect.Request[api.GetOwnerByAddressRequest]) (*connect.Response[api.GetOwnerByAddressResponse], error)
	GetAddressesByOwner(context.Context, *connect.Request[api.GetAddressesByOwnerRequest]) (*connect.Response[api.GetAddressesByOwnerResponse], error)
}

// NewAddressBookServiceHandler builds an HTTP handler for the service and returns
// the path to mount it on.
func NewAddressBookServiceHandler(svc AddressBookServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	addEntry := connect.NewUnaryHandler(AddressBookServiceAddEntryProcedure, svc.AddEntry, opts...)
	removeEntry := connect.NewUnaryHandler(AddressBookServiceRemoveEntryProcedure, svc.RemoveEntry, opts...)
	listEntries := connect.NewUnaryHandler(AddressBookServiceListEntriesProcedure, svc.ListEntries, opts...)
	getOwnerByAddress := connect.NewUnaryHandler(AddressBookServiceGetOwnerByAddressProcedure, svc.GetOwnerByAddress, opts...)
	getAddressesByOwner := connect.NewUnaryHandler(AddressBookServiceGetAddressesByOwnerProcedure, svc.GetAddressesByOwner, opts...)

	return "/" + AddressBookServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AddressBookServiceAddEntryProcedure:
			addEntry.ServeHTTP(w, r)
		case AddressBookServiceRemoveEntryProcedure:
			removeEntry.ServeHTTP(w, r)
		case AddressBookServiceListEntriesProcedure:
			listEntries.ServeHTTP(w, r)
		case AddressBookServiceGetOwnerByAddressProcedure:
			getOwnerByAddress.ServeHTTP(w, r)
		case AddressBookServiceGetAddressesByOwnerProcedure:
			getAddressesByOwner.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedAddressBookServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedAddressBookServiceHandler struct{}

func (UnimplementedAddressBookServiceHandler) AddEntry(context.Context, *connect.Request[api.AddEntryRequest]) (*connect.Response[api.AddEntryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.AddressBookService.AddEntry is not implemented"))
}

func (UnimplementedAddressBookServiceHandler) RemoveEntry(context.Context, *connect.Request[api.RemoveEntryRequest]) (*connect.Response[api.RemoveEntryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.AddressBookService.RemoveEntry is not implemented"))
}

func (UnimplementedAddressBookServiceHandler) ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.AddressBookService.ListEntries is not implemented"))
}

func (UnimplementedAddressBookServiceHandler) GetOwnerByAddress(context.Context, *connect.Request[api.GetOwnerByAddressRequest]) (*connect.Response[api.GetOwnerByAddressResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.AddressBookService.GetOwnerByAddress is not implemented"))
}

func (UnimplementedAddressBookServiceHandler) GetAddressesByOwner(context.Context, *connect.Request[api.GetAddressesByOwnerRequest]) (*connect.Response[api.GetAddressesByOwnerResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.AddressBookService.GetAddressesByOwner is not implemented"))
}

// AddressBookServiceClient is a client for the address book.
type AddressBookServiceClient interface {
	AddEntry(context.Context, *connect.Request[api.AddEntryRequest]) (*connect.Response[api.AddEntryResponse], error)
	RemoveEntry(context.Context, *connect.Request[api.RemoveEntryRequest]) (*connect.Response[api.RemoveEntryResponse], error)
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	GetOwnerByAddress(context.Context, *connect.Request[api.GetOwnerByAddressRequest]) (*connect.Response[api.GetOwnerByAddressResponse], error)
	GetAddressesByOwner(context.Context, *connect.Request[api.GetAddressesByOwnerRequest]) (*connect.Response[api.GetAddressesByOwnerResponse], error)
}

// NewAddressBookServiceClient constructs a client for the service at baseURL.
func NewAddressBookServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AddressBookServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &addressBookServiceClient{
		addEntry:            connect.NewClient[api.AddEntryRequest, api.AddEntryResponse](httpClient, baseURL+AddressBookServiceAddEntryProcedure, opts...),
		removeEntry:         connect.NewClient[api.RemoveEntryRequest, api.RemoveEntryResponse](httpClient, baseURL+AddressBookServiceRemoveEntryProcedure, opts...),
		listEntries:         connect.NewClient[api.ListEntriesRequest, api.ListEntriesResponse](httpClient, baseURL+AddressBookServiceListEntriesProcedure, opts...),
		getOwnerByAddress:   connect.NewClient[api.GetOwnerByAddressRequest, api.GetOwnerByAddressResponse](httpClient, baseURL+AddressBookServiceGetOwnerByAddressProcedure, opts...),
		getAddressesByOwner: connect.NewClient[api.GetAddressesByOwnerRequest, api.GetAddressesByOwnerResponse](httpClient, baseURL+AddressBookServiceGetAddressesByOwnerProcedure, opts...),
	}
}

type addressBookServiceClient struct {
	addEntry            *connect.Client[api.AddEntryRequest, api.AddEntryResponse]
	removeEntry         *connect.Client[api.RemoveEntryRequest, api.RemoveEntryResponse]
	listEntries         *connect.Client[api.ListEntriesRequest, api.ListEntriesResponse]
	getOwnerByAddress   *connect.Client[api.GetOwnerByAddressRequest, api.GetOwnerByAddressResponse]
	getAddressesByOwner *connect.Client[api.GetAddressesByOwnerRequest, api.GetAddressesByOwnerResponse]
}

func (c *addressBookServiceClient) AddEntry(ctx context.Context, req *connect.Request[api.AddEntryRequest]) (*connect.Response[api.AddEntryResponse], error) {
	return c.addEntry.CallUnary(ctx, req)
}

func (c *addressBookServiceClient) RemoveEntry(ctx context.Context, req *connect.Request[api.RemoveEntryRequest]) (*connect.Response[api.RemoveEntryResponse], error) {
	return c.removeEntry.CallUnary(ctx, req)
}

func (c *addressBookServiceClient) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	return c.listEntries.CallUnary(ctx, req)
}

func (c *addressBookServiceClient) GetOwnerByAddress(ctx context.Context, req *connect.Request[api.GetOwnerByAddressRequest]) (*connect.Response[api.GetOwnerByAddressResponse], error) {
	return c.getOwnerByAddress.CallUnary(ctx, req)
}

func (c *addressBookServiceClient) GetAddressesByOwner(ctx context.Context, req *connect.Request[api.GetAddressesByOwnerRequest]) (*connect.Response[api.GetAddressesByOwnerResponse], error) {
	return c.getAddressesByOwner.CallUnary(ctx, req)
}
