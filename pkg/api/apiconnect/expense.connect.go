package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/pkg/api"
)

const ExpenseServiceName = "splitme.v1.ExpenseService"

const (
	ExpenseServiceCreateExpenseProcedure   = "/splitme.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure      = "/splitme.v1.ExpenseService/GetExpense"
	ExpenseServiceListExpensesProcedure    = "/splitme.v1.ExpenseService/ListExpenses"
	ExpenseServiceSettleExpenseProcedure   = "/splitme.v1.ExpenseService/SettleExpense"
	ExpenseServiceSettleAllDebtsProcedure  = "/splitme.v1.ExpenseService/SettleAllDebts"
	ExpenseServiceListSettlementsProcedure = "/splitme.v1.ExpenseService/ListSettlements"
)

// ExpenseServiceHandler is implemented by the expense ledger.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	SettleExpense(context.Context, *connect.Request[api.SettleExpenseRequest]) (*connect.Response[api.SettleExpenseResponse], error)
	SettleAllDebts(context.Context, *connect.Request[api.SettleAllDebtsRequest]) (*connect.Response[api.SettleAllDebtsResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for the service and returns
// the path to mount it on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createExpense := connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...)
	getExpense := connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...)
	listExpenses := connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...)
	settleExpense := connect.NewUnaryHandler(ExpenseServiceSettleExpenseProcedure, svc.SettleExpense, opts...)
	settleAllDebts := connect.NewUnaryHandler(ExpenseServiceSettleAllDebtsProcedure, svc.SettleAllDebts, opts...)
	listSettlements := connect.NewUnaryHandler(ExpenseServiceListSettlementsProcedure, svc.ListSettlements, opts...)

	return "/" + ExpenseServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ExpenseServiceCreateExpenseProcedure:
			createExpense.ServeHTTP(w, r)
		case ExpenseServiceGetExpenseProcedure:
			getExpense.ServeHTTP(w, r)
		case ExpenseServiceListExpensesProcedure:
			listExpenses.ServeHTTP(w, r)
		case ExpenseServiceSettleExpenseProcedure:
			settleExpense.ServeHTTP(w, r)
		case ExpenseServiceSettleAllDebtsProcedure:
			settleAllDebts.ServeHTTP(w, r)
		case ExpenseServiceListSettlementsProcedure:
			listSettlements.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedExpenseServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedExpenseServiceHandler struct{}

func (UnimplementedExpenseServiceHandler) CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.ExpenseService.CreateExpense is not implemented"))
}

func (UnimplementedExpenseServiceHandler) GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.ExpenseService.GetExpense is not implemented"))
}

func (UnimplementedExpenseServiceHandler) ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.ExpenseService.ListExpenses is not implemented"))
}

func (UnimplementedExpenseServiceHandler) SettleExpense(context.Context, *connect.Request[api.SettleExpenseRequest]) (*connect.Response[api.SettleExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.ExpenseService.SettleExpense is not implemented"))
}

func (UnimplementedExpenseServiceHandler) SettleAllDebts(context.Context, *connect.Request[api.SettleAllDebtsRequest]) (*connect.Response[api.SettleAllDebtsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.ExpenseService.SettleAllDebts is not implemented"))
}

func (UnimplementedExpenseServiceHandler) ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitme.v1.ExpenseService.ListSettlements is not implemented"))
}

// ExpenseServiceClient is a client for the expense ledger.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	SettleExpense(context.Context, *connect.Request[api.SettleExpenseRequest]) (*connect.Response[api.SettleExpenseResponse], error)
	SettleAllDebts(context.Context, *connect.Request[api.SettleAllDebtsRequest]) (*connect.Response[api.SettleAllDebtsResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewExpenseServiceClient constructs a client for the service at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &expenseServiceClient{
		createExpense:   connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		getExpense:      connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		listExpenses:    connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		settleExpense:   connect.NewClient[api.SettleExpenseRequest, api.SettleExpenseResponse](httpClient, baseURL+ExpenseServiceSettleExpenseProcedure, opts...),
		settleAllDebts:  connect.NewClient[api.SettleAllDebtsRequest, api.SettleAllDebtsResponse](httpClient, baseURL+ExpenseServiceSettleAllDebtsProcedure, opts...),
		listSettlements: connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+ExpenseServiceListSettlementsProcedure, opts...),
	}
}

type expenseServiceClient struct {
	createExpense   *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense      *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	listExpenses    *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	settleExpense   *connect.Client[api.SettleExpenseRequest, api.SettleExpenseResponse]
	settleAllDebts  *connect.Client[api.SettleAllDebtsRequest, api.SettleAllDebtsResponse]
	listSettlements *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) SettleExpense(ctx context.Context, req *connect.Request[api.SettleExpenseRequest]) (*connect.Response[api.SettleExpenseResponse], error) {
	return c.settleExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) SettleAllDebts(ctx context.Context, req *connect.Request[api.SettleAllDebtsRequest]) (*connect.Response[api.SettleAllDebtsResponse], error) {
	return c.settleAllDebts.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}
