package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/splitme/splitme/internal/calculator"
	"github.com/splitme/splitme/internal/metrics"
	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
	"github.com/splitme/splitme/internal/wallet"
	"github.com/splitme/splitme/pkg/api"
	"github.com/splitme/splitme/pkg/api/apiconnect"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	apiconnect.UnimplementedExpenseServiceHandler
	store storage.Store

	// settleMu serializes settlement writes so two concurrent payments
	// cannot both pass the outstanding-share check.
	settleMu sync.Mutex
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense records an expense paid by the caller and split equally
// among the participants.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	payer, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupId,
		"description", req.Msg.Description,
		"amount", req.Msg.Amount,
		"participants_count", len(req.Msg.Participants),
	)

	description, err := requiredText("description", req.Msg.Description, maxDescriptionLen)
	if err != nil {
		return nil, err
	}
	amount, err := wallet.ParseAmount(req.Msg.Amount)
	if err != nil {
		return nil, connectError(err)
	}
	if len(req.Msg.Participants) == 0 {
		return nil, invalidArgument("select at least one participant")
	}
	participants, err := wallet.ParseAddresses(req.Msg.Participants)
	if err != nil {
		return nil, connectError(err)
	}
	txHash, err := wallet.ParseTxHash(req.Msg.TxHash)
	if err != nil {
		return nil, connectError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, connectError(err)
	}
	if err := requireMember(group, payer); err != nil {
		return nil, err
	}
	for _, p := range participants {
		if !group.HasMember(p) {
			return nil, invalidArgument("participant %s is not a group member", wallet.ShortAddress(p))
		}
	}

	expense := &models.Expense{
		GroupID:      group.ID,
		Description:  description,
		Amount:       amount,
		Payer:        payer,
		Participants: participants,
		TxHash:       txHash,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, connectError(err)
	}
	metrics.RecordLedger(metrics.KindExpense, 1)

	shares, err := expenseShares(expense, nil, nil)
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", group.ID,
		"amount", expense.Amount.String(),
	)

	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: toAPIExpense(expense),
		Shares:  toAPIShares(shares),
	}), nil
}

// GetExpense retrieves an expense with each participant's settlement status.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	address, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseId)

	expense, ledger, err := s.loadExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		return nil, connectError(err)
	}
	if err := requireMember(ledger.group, address); err != nil {
		return nil, err
	}

	net, err := ledger.netBalances()
	if err != nil {
		return nil, connectError(err)
	}
	shares, err := expenseShares(expense, ledger.settlements, net)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetExpenseResponse{
		Expense: toAPIExpense(expense),
		Shares:  toAPIShares(shares),
	}), nil
}

// ListExpenses lists a group's expenses oldest first, or the caller's
// expense history across groups newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	address, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupId, "address", address)

	var expenses []*models.Expense
	if req.Msg.GroupId == "" {
		expenses, err = s.store.ListExpensesByAddress(ctx, address)
	} else {
		group, gerr := s.store.GetGroup(ctx, req.Msg.GroupId)
		if gerr != nil {
			return nil, connectError(gerr)
		}
		if err := requireMember(group, address); err != nil {
			return nil, err
		}
		expenses, err = s.store.ListExpensesByGroup(ctx, group.ID)
	}
	if err != nil {
		slog.Error("ListExpenses failed", "error", err)
		return nil, connectError(err)
	}

	apiExpenses := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		apiExpenses[i] = toAPIExpense(e)
	}

	slog.Info("ListExpenses successful", "count", len(expenses))

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: apiExpenses}), nil
}

// SettleExpense records the caller paying toward its share of an expense.
// The expense becomes settled once every participant's share is covered.
func (s *ExpenseService) SettleExpense(ctx context.Context, req *connect.Request[api.SettleExpenseRequest]) (*connect.Response[api.SettleExpenseResponse], error) {
	caller, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("SettleExpense request received",
		"expense_id", req.Msg.ExpenseId,
		"amount", req.Msg.Amount,
		"address", caller,
	)

	txHash, err := wallet.ParseTxHash(req.Msg.TxHash)
	if err != nil {
		return nil, connectError(err)
	}

	s.settleMu.Lock()
	defer s.settleMu.Unlock()

	expense, ledger, err := s.loadExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		return nil, connectError(err)
	}
	if expense.Settled {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("expense is already settled"))
	}
	if expense.Payer == caller {
		return nil, invalidArgument("the payer has no share to settle")
	}
	if !containsAddress(expense.Participants, caller) {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("caller is not a participant of the expense"))
	}

	net, err := ledger.netBalances()
	if err != nil {
		return nil, connectError(err)
	}
	statuses, err := expenseShares(expense, ledger.settlements, net)
	if err != nil {
		return nil, connectError(err)
	}
	// Settle-all payments are not tied to an expense, so the share is also
	// capped by what the caller still owes the group.
	outstanding := calculator.Outstanding(statuses, caller)
	if owed := net[caller].Neg(); owed.LessThan(outstanding) {
		outstanding = owed
	}
	if !outstanding.IsPositive() {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("share is already settled"))
	}

	amount := outstanding
	if req.Msg.Amount != "" {
		if amount, err = wallet.ParseAmount(req.Msg.Amount); err != nil {
			return nil, connectError(err)
		}
		if amount.GreaterThan(outstanding) {
			return nil, invalidArgument("amount %s exceeds outstanding share %s", amount, outstanding)
		}
	}

	settlement := &models.Settlement{
		GroupID:   expense.GroupID,
		ExpenseID: expense.ID,
		From:      caller,
		To:        expense.Payer,
		Amount:    amount,
		TxHash:    txHash,
	}
	if err := s.store.CreateSettlements(ctx, settlement); err != nil {
		slog.Error("SettleExpense failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}
	metrics.RecordLedger(metrics.KindSettlement, 1)

	ledger.settlements = append(ledger.settlements, settlement)
	if net, err = ledger.netBalances(); err != nil {
		return nil, connectError(err)
	}
	statuses, err = expenseShares(expense, ledger.settlements, net)
	if err != nil {
		return nil, connectError(err)
	}
	if calculator.AllSettled(statuses) {
		if err := s.store.SetExpenseSettled(ctx, expense.ID, true); err != nil {
			return nil, connectError(err)
		}
		expense.Settled = true
		slog.Info("Expense fully settled", "expense_id", expense.ID)
	}

	slog.Info("Expense share settled",
		"expense_id", expense.ID,
		"from", caller,
		"to", expense.Payer,
		"amount", amount.String(),
	)

	return connect.NewResponse(&api.SettleExpenseResponse{
		Settlement: toAPISettlement(settlement),
		Expense:    toAPIExpense(expense),
	}), nil
}

// SettleAllDebts pays every simplified debt the caller has in a group. When
// the group's balances are all zero afterwards, its expenses are marked
// settled.
func (s *ExpenseService) SettleAllDebts(ctx context.Context, req *connect.Request[api.SettleAllDebtsRequest]) (*connect.Response[api.SettleAllDebtsResponse], error) {
	caller, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("SettleAllDebts request received", "group_id", req.Msg.GroupId, "address", caller)

	txHash, err := wallet.ParseTxHash(req.Msg.TxHash)
	if err != nil {
		return nil, connectError(err)
	}

	s.settleMu.Lock()
	defer s.settleMu.Unlock()

	ledger, err := loadGroupLedger(ctx, s.store, req.Msg.GroupId)
	if err != nil {
		return nil, connectError(err)
	}
	if err := requireMember(ledger.group, caller); err != nil {
		return nil, err
	}

	_, edges, err := ledger.balances()
	if err != nil {
		return nil, connectError(err)
	}
	debts, total := calculator.DebtsFrom(edges, caller)
	if len(debts) == 0 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("no outstanding debts in this group"))
	}

	settlements := make([]*models.Settlement, len(debts))
	for i, d := range debts {
		settlements[i] = &models.Settlement{
			GroupID: ledger.group.ID,
			From:    d.From,
			To:      d.To,
			Amount:  d.Amount,
			TxHash:  txHash,
		}
	}
	if err := s.store.CreateSettlements(ctx, settlements...); err != nil {
		slog.Error("SettleAllDebts failed", "group_id", ledger.group.ID, "error", err)
		return nil, connectError(err)
	}
	metrics.RecordLedger(metrics.KindSettlement, len(settlements))

	ledger.settlements = append(ledger.settlements, settlements...)
	if err := s.markSettledIfBalanced(ctx, ledger); err != nil {
		return nil, connectError(err)
	}

	slog.Info("Debts settled",
		"group_id", ledger.group.ID,
		"address", caller,
		"payments", len(settlements),
		"total", total.String(),
	)

	return connect.NewResponse(&api.SettleAllDebtsResponse{Settlements: toAPISettlements(settlements)}), nil
}

// ListSettlements lists a group's recorded payments, oldest first.
func (s *ExpenseService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	address, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupId)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, connectError(err)
	}
	if err := requireMember(group, address); err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}

func (s *ExpenseService) loadExpense(ctx context.Context, expenseID string) (*models.Expense, *groupLedger, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := loadGroupLedger(ctx, s.store, expense.GroupID)
	if err != nil {
		return nil, nil, err
	}
	return expense, ledger, nil
}

func (s *ExpenseService) markSettledIfBalanced(ctx context.Context, ledger *groupLedger) error {
	balances, _, err := ledger.balances()
	if err != nil {
		return err
	}
	for _, b := range balances {
		if !b.NetBalance.Equal(decimal.Zero) {
			return nil
		}
	}
	for _, e := range ledger.expenses {
		if e.Settled {
			continue
		}
		if err := s.store.SetExpenseSettled(ctx, e.ID, true); err != nil {
			return fmt.Errorf("failed to mark expense %s settled: %w", e.ID, err)
		}
		e.Settled = true
	}
	return nil
}

func containsAddress(list []string, addr string) bool {
	for _, a := range list {
		if a == addr {
			return true
		}
	}
	return false
}
