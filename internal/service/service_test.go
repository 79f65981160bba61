package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/internal/middleware"
	"github.com/splitme/splitme/internal/storage/sqlite"
	"github.com/splitme/splitme/pkg/api/apiconnect"
)

// Digit-only addresses are already in checksum form.
const (
	alice = "0x1111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222"
	carol = "0x3333333333333333333333333333333333333333"
	dave  = "0x4444444444444444444444444444444444444444"
)

const testAddressHeader = "X-Test-Address"

// testAuthInterceptor returns a Connect interceptor that signs the request
// in as the address in the test header.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if addr := req.Header().Get(testAddressHeader); addr != "" {
				ctx = middleware.WithAddress(ctx, addr)
			}
			return next(ctx, req)
		}
	}
}

// as builds a request made by address.
func as[T any](address string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testAddressHeader, address)
	return req
}

type testClients struct {
	groups   apiconnect.GroupServiceClient
	expenses apiconnect.ExpenseServiceClient
	book     apiconnect.AddressBookServiceClient
}

// setupTestServer creates a test server over a temporary SQLite database.
func setupTestServer(t *testing.T) (*testClients, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	authInterceptor := connect.WithInterceptors(testAuthInterceptor())
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(store), authInterceptor)
	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(NewExpenseService(store), authInterceptor)
	bookPath, bookHandler := apiconnect.NewAddressBookServiceHandler(NewAddressBookService(store), authInterceptor)

	mux := http.NewServeMux()
	mux.Handle(groupPath, groupHandler)
	mux.Handle(expensePath, expenseHandler)
	mux.Handle(bookPath, bookHandler)

	server := httptest.NewServer(mux)

	clients := &testClients{
		groups:   apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		book:     apiconnect.NewAddressBookServiceClient(http.DefaultClient, server.URL),
	}

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return clients, cleanup
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}
