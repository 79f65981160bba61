// Package reconcile applies SplitMe contract events to the local store.
//
// Writes made through the API are staged locally with a temporary identity
// and matched to their on-chain counterparts here: by transaction hash when
// the client reported one, otherwise by content. Events with no local
// counterpart are mirrored so the store converges on contract state.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/splitme/splitme/internal/chain"
	"github.com/splitme/splitme/internal/metrics"
	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
	"github.com/splitme/splitme/internal/wallet"
)

const (
	// CursorName keys the sync cursor in the store.
	CursorName = "splitme-events"
	// DefaultBatchSize is the number of blocks requested per eth_getLogs.
	DefaultBatchSize = 5000
)

// Outcomes reported per event.
const (
	OutcomeMatched   = "matched"
	OutcomeMirrored  = "mirrored"
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
)

// LogReader is the node access needed to pull events.
type LogReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// ContractReader reads group and expense state from the contract.
// *chain.SplitMe implements it.
type ContractReader interface {
	GetGroup(ctx context.Context, groupID *big.Int) (*chain.GroupInfo, error)
	GetExpense(ctx context.Context, expenseID *big.Int) (*chain.ExpenseInfo, error)
}

// Options tunes a Reconciler.
type Options struct {
	// StartBlock is where the first pass begins when no cursor is stored,
	// usually the block the contract was deployed in.
	StartBlock uint64
	// BatchSize caps the block range of one log query.
	BatchSize uint64
}

// Result summarizes one pass.
type Result struct {
	FromBlock uint64
	ToBlock   uint64
	Events    int
	Outcomes  map[string]int
}

// Reconciler pulls contract logs from a cursor to the chain head.
type Reconciler struct {
	logs     LogReader
	reader   ContractReader
	store    storage.Store
	contract common.Address
	opts     Options
	logger   *slog.Logger

	mu sync.Mutex
}

// New creates a Reconciler. reader may be nil, in which case mirrored groups
// hold only their creator, mirrored expenses are split among all group
// members and settled flags are left to the API.
func New(logs LogReader, reader ContractReader, store storage.Store, contract common.Address, opts Options, logger *slog.Logger) *Reconciler {
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Reconciler{
		logs:     logs,
		reader:   reader,
		store:    store,
		contract: contract,
		opts:     opts,
		logger:   logger,
	}
}

// Run performs one pass. Concurrent calls wait for each other. The cursor
// advances after every successfully applied batch, so a failed pass resumes
// where it stopped.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.run(ctx)
	metrics.ReconcileRun(err == nil, res.ToBlock)
	return res, err
}

func (r *Reconciler) run(ctx context.Context) (*Result, error) {
	res := &Result{Outcomes: make(map[string]int)}

	cursor, err := r.store.GetSyncCursor(ctx, CursorName)
	if err != nil {
		return res, err
	}
	from := r.opts.StartBlock
	if cursor >= from {
		from = cursor + 1
	}
	res.FromBlock = from
	res.ToBlock = cursor

	head, err := r.logs.BlockNumber(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get block number: %w", err)
	}

	for from <= head {
		to := from + r.opts.BatchSize - 1
		if to > head {
			to = head
		}
		if err := r.applyRange(ctx, from, to, res); err != nil {
			return res, err
		}
		if err := r.store.SetSyncCursor(ctx, CursorName, to); err != nil {
			return res, err
		}
		res.ToBlock = to
		from = to + 1
	}

	if res.Events > 0 {
		r.logger.Info("Reconciled contract events",
			"from_block", res.FromBlock, "to_block", res.ToBlock, "events", res.Events)
	}
	return res, nil
}

func (r *Reconciler) applyRange(ctx context.Context, from, to uint64, res *Result) error {
	logs, err := r.logs.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{r.contract},
		Topics:    [][]common.Hash{chain.EventTopics()},
	})
	if err != nil {
		return fmt.Errorf("failed to filter logs %d-%d: %w", from, to, err)
	}
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	for _, l := range logs {
		if l.Removed {
			continue
		}
		event, outcome, err := r.apply(ctx, l)
		if err != nil {
			metrics.ReconcileEvent(event, "error")
			return fmt.Errorf("apply %s in tx %s: %w", event, l.TxHash.Hex(), err)
		}
		metrics.ReconcileEvent(event, outcome)
		res.Events++
		res.Outcomes[outcome]++
	}
	return nil
}

func (r *Reconciler) apply(ctx context.Context, l types.Log) (string, string, error) {
	decoded, err := chain.DecodeEvent(l)
	if errors.Is(err, chain.ErrUnknownEvent) {
		return "unknown", OutcomeSkipped, nil
	}
	if err != nil {
		return "unknown", "", err
	}

	switch ev := decoded.(type) {
	case *chain.GroupCreated:
		outcome, err := r.groupCreated(ctx, ev)
		return chain.EventGroupCreated, outcome, err
	case *chain.GroupCategoryUpdated:
		outcome, err := r.groupCategoryUpdated(ctx, ev)
		return chain.EventGroupCategoryUpdated, outcome, err
	case *chain.ExpenseCreated:
		outcome, err := r.expenseCreated(ctx, ev)
		return chain.EventExpenseCreated, outcome, err
	case *chain.ExpenseSettled:
		outcome, err := r.expenseSettled(ctx, ev)
		return chain.EventExpenseSettled, outcome, err
	}
	return "unknown", OutcomeSkipped, nil
}

func (r *Reconciler) groupCreated(ctx context.Context, ev *chain.GroupCreated) (string, error) {
	chainID := ev.GroupId.Uint64()
	if _, err := r.store.GetGroupByChainID(ctx, chainID); err == nil {
		return OutcomeDuplicate, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	txHash := ev.Raw.TxHash.Hex()
	creator := ev.Creator.Hex()

	group, err := r.store.FindGroupByTxHash(ctx, txHash)
	if err == nil && group.ChainID == 0 {
		return OutcomeMatched, r.store.SetGroupChainID(ctx, group.ID, chainID)
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	group, err = r.store.FindUnreconciledGroup(ctx, ev.Name, creator)
	if err == nil {
		return OutcomeMatched, r.store.SetGroupChainID(ctx, group.ID, chainID)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	mirror := &models.Group{
		ChainID:   chainID,
		Name:      ev.Name,
		Creator:   creator,
		TxHash:    txHash,
		CreatedAt: time.Now().Unix(),
	}
	r.fillGroup(ctx, ev.GroupId, mirror)
	if err := r.store.CreateGroup(ctx, mirror); err != nil {
		return "", err
	}
	metrics.RecordLedger(metrics.KindGroup, 1)
	r.logger.Debug("Mirrored group", "group_id", mirror.ID, "chain_id", chainID)
	return OutcomeMirrored, nil
}

// fillGroup copies members, category and creation time from the contract
// into a mirror. The mirror keeps what the event carried when the read fails.
func (r *Reconciler) fillGroup(ctx context.Context, groupID *big.Int, g *models.Group) {
	if r.reader == nil {
		return
	}
	info, err := r.reader.GetGroup(ctx, groupID)
	if err != nil {
		r.logger.Warn("Failed to read group from contract", "chain_id", groupID, "error", err)
		return
	}
	for _, m := range info.Members {
		g.Members = append(g.Members, m.Hex())
	}
	if info.Category != "" {
		g.Category = info.Category
	}
	if info.CreatedAt != nil && info.CreatedAt.Sign() > 0 {
		g.CreatedAt = info.CreatedAt.Int64()
	}
}

func (r *Reconciler) groupCategoryUpdated(ctx context.Context, ev *chain.GroupCategoryUpdated) (string, error) {
	group, err := r.store.GetGroupByChainID(ctx, ev.GroupId.Uint64())
	if errors.Is(err, storage.ErrNotFound) {
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", err
	}
	if group.Category == ev.Category {
		return OutcomeDuplicate, nil
	}
	return OutcomeApplied, r.store.UpdateGroupCategory(ctx, group.ID, ev.Category)
}

func (r *Reconciler) expenseCreated(ctx context.Context, ev *chain.ExpenseCreated) (string, error) {
	chainID := ev.ExpenseId.Uint64()
	if _, err := r.store.GetExpenseByChainID(ctx, chainID); err == nil {
		return OutcomeDuplicate, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	group, err := r.store.GetGroupByChainID(ctx, ev.GroupId.Uint64())
	if errors.Is(err, storage.ErrNotFound) {
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", err
	}

	txHash := ev.Raw.TxHash.Hex()
	payer := ev.PaidBy.Hex()
	amount := wallet.FromBaseUnits(ev.Amount, wallet.TokenDecimals)

	expense, err := r.store.FindExpenseByTxHash(ctx, txHash)
	if err == nil && expense.ChainID == 0 {
		return OutcomeMatched, r.store.SetExpenseChainID(ctx, expense.ID, chainID)
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	expense, err = r.store.FindUnreconciledExpense(ctx, group.ID, ev.Description, payer, amount)
	if err == nil {
		return OutcomeMatched, r.store.SetExpenseChainID(ctx, expense.ID, chainID)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	participants, settled := r.participants(ctx, ev.ExpenseId, group)
	if err := r.store.AddGroupMembers(ctx, group.ID, append([]string{payer}, participants...)); err != nil {
		return "", err
	}
	mirror := &models.Expense{
		ChainID:      chainID,
		GroupID:      group.ID,
		Description:  ev.Description,
		Amount:       amount,
		Payer:        payer,
		Participants: participants,
		Settled:      settled,
		TxHash:       txHash,
	}
	if err := r.store.CreateExpense(ctx, mirror); err != nil {
		return "", err
	}
	metrics.RecordLedger(metrics.KindExpense, 1)
	r.logger.Debug("Mirrored expense", "expense_id", mirror.ID, "chain_id", chainID)
	return OutcomeMirrored, nil
}

// participants reads who splits an expense from the contract, falling back
// to every group member.
func (r *Reconciler) participants(ctx context.Context, expenseID *big.Int, group *models.Group) ([]string, bool) {
	if r.reader != nil {
		info, err := r.reader.GetExpense(ctx, expenseID)
		if err == nil && len(info.Participants) > 0 {
			out := make([]string, len(info.Participants))
			for i, p := range info.Participants {
				out[i] = p.Hex()
			}
			return out, info.Settled
		}
		if err != nil {
			r.logger.Warn("Failed to read expense from contract", "chain_id", expenseID, "error", err)
		}
	}
	return append([]string(nil), group.Members...), false
}

func (r *Reconciler) expenseSettled(ctx context.Context, ev *chain.ExpenseSettled) (string, error) {
	expense, err := r.store.GetExpenseByChainID(ctx, ev.ExpenseId.Uint64())
	if errors.Is(err, storage.ErrNotFound) {
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", err
	}

	txHash := ev.Raw.TxHash.Hex()
	for _, expenseID := range []string{expense.ID, ""} {
		seen, err := r.store.HasSettlement(ctx, txHash, expenseID)
		if err != nil {
			return "", err
		}
		if seen {
			return OutcomeDuplicate, nil
		}
	}

	settlement := &models.Settlement{
		GroupID:   expense.GroupID,
		ExpenseID: expense.ID,
		From:      ev.Settler.Hex(),
		To:        expense.Payer,
		Amount:    wallet.FromBaseUnits(ev.Amount, wallet.TokenDecimals),
		TxHash:    txHash,
	}
	if err := r.store.CreateSettlements(ctx, settlement); err != nil {
		return "", err
	}
	metrics.RecordLedger(metrics.KindSettlement, 1)

	if r.reader != nil && !expense.Settled {
		info, err := r.reader.GetExpense(ctx, ev.ExpenseId)
		if err != nil {
			r.logger.Warn("Failed to read expense from contract", "chain_id", ev.ExpenseId, "error", err)
		} else if info.Settled {
			if err := r.store.SetExpenseSettled(ctx, expense.ID, true); err != nil {
				return "", err
			}
		}
	}
	return OutcomeApplied, nil
}
