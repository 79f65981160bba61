package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitme/splitme/internal/chain"
	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage/sqlite"
)

var (
	alice    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob      = common.HexToAddress("0x2222222222222222222222222222222222222222")
	carol    = common.HexToAddress("0x3333333333333333333333333333333333333333")
	dave     = common.HexToAddress("0x4444444444444444444444444444444444444444")
	contract = common.HexToAddress("0x5555555555555555555555555555555555555555")
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func eventLog(t *testing.T, name string, block uint64, tx common.Hash, indexed []int64, data ...interface{}) types.Log {
	t.Helper()
	ev := chain.SplitMeABI.Events[name]
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	require.NoError(t, err)

	topics := []common.Hash{ev.ID}
	for _, v := range indexed {
		topics = append(topics, common.BigToHash(big.NewInt(v)))
	}
	return types.Log{
		Address:     contract,
		Topics:      topics,
		Data:        packed,
		BlockNumber: block,
		TxHash:      tx,
	}
}

type fakeLogs struct {
	head    uint64
	logs    []types.Log
	queries [][2]uint64
	err     error
}

func (f *fakeLogs) BlockNumber(ctx context.Context) (uint64, error) {
	return f.head, nil
}

func (f *fakeLogs) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	if f.err != nil {
		return nil, f.err
	}
	from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
	f.queries = append(f.queries, [2]uint64{from, to})
	var out []types.Log
	for _, l := range f.logs {
		if l.BlockNumber >= from && l.BlockNumber <= to {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeContract struct {
	groups   map[int64]*chain.GroupInfo
	expenses map[int64]*chain.ExpenseInfo
}

func (f *fakeContract) GetGroup(ctx context.Context, id *big.Int) (*chain.GroupInfo, error) {
	info, ok := f.groups[id.Int64()]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return info, nil
}

func (f *fakeContract) GetExpense(ctx context.Context, id *big.Int) (*chain.ExpenseInfo, error) {
	info, ok := f.expenses[id.Int64()]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return info, nil
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconciler_Run(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	createTx := common.HexToHash("0xa1")
	staged := &models.Group{Name: "Weekend Trip", Creator: alice.Hex(), Members: []string{bob.Hex()}, TxHash: createTx.Hex()}
	require.NoError(t, store.CreateGroup(ctx, staged))
	byContent := &models.Group{Name: "Dinner Club", Creator: bob.Hex()}
	require.NoError(t, store.CreateGroup(ctx, byContent))
	expense := &models.Expense{
		GroupID:      staged.ID,
		Description:  "Hotel",
		Amount:       decimal.NewFromInt(30),
		Payer:        alice.Hex(),
		Participants: []string{alice.Hex(), bob.Hex()},
	}
	require.NoError(t, store.CreateExpense(ctx, expense))

	settleTx := common.HexToHash("0xe1")
	logs := &fakeLogs{
		head: 12,
		logs: []types.Log{
			eventLog(t, chain.EventGroupCreated, 2, createTx, []int64{1}, "Weekend Trip", alice),
			eventLog(t, chain.EventGroupCreated, 3, common.HexToHash("0xb1"), []int64{2}, "Dinner Club", bob),
			eventLog(t, chain.EventGroupCreated, 4, common.HexToHash("0xc1"), []int64{3}, "Imported", carol),
			eventLog(t, chain.EventGroupCategoryUpdated, 5, common.HexToHash("0xc2"), []int64{1}, "travel"),
			eventLog(t, chain.EventExpenseCreated, 6, common.HexToHash("0xd1"), []int64{1, 1}, "Hotel", tokens(30), alice),
			eventLog(t, chain.EventExpenseCreated, 7, common.HexToHash("0xd2"), []int64{2, 3}, "Fuel", tokens(10), carol),
			eventLog(t, chain.EventExpenseSettled, 9, settleTx, []int64{1}, bob, tokens(15)),
			eventLog(t, chain.EventExpenseCreated, 11, common.HexToHash("0xd3"), []int64{3, 99}, "Orphan", tokens(1), carol),
		},
	}
	reader := &fakeContract{
		groups: map[int64]*chain.GroupInfo{
			3: {
				ID:        big.NewInt(3),
				Name:      "Imported",
				Creator:   carol,
				Members:   []common.Address{carol, bob},
				Active:    true,
				CreatedAt: big.NewInt(1700000000),
				Category:  "imports",
			},
		},
		expenses: map[int64]*chain.ExpenseInfo{
			1: {Settled: true, Participants: []common.Address{alice, bob}},
			2: {Participants: []common.Address{carol, dave}},
		},
	}

	r := New(logs, reader, store, contract, Options{StartBlock: 1, BatchSize: 5}, discard())
	res, err := r.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), res.FromBlock)
	assert.Equal(t, uint64(12), res.ToBlock)
	assert.Equal(t, 8, res.Events)
	assert.Equal(t, [][2]uint64{{1, 5}, {6, 10}, {11, 12}}, logs.queries)
	assert.Equal(t, 3, res.Outcomes[OutcomeMatched])
	assert.Equal(t, 2, res.Outcomes[OutcomeMirrored])
	assert.Equal(t, 2, res.Outcomes[OutcomeApplied])
	assert.Equal(t, 1, res.Outcomes[OutcomeSkipped])

	cursor, err := store.GetSyncCursor(ctx, CursorName)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), cursor)

	t.Run("groups matched by tx hash and by content", func(t *testing.T) {
		g, err := store.GetGroupByChainID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, staged.ID, g.ID)
		assert.Equal(t, "travel", g.Category)

		g, err = store.GetGroupByChainID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, byContent.ID, g.ID)
	})

	t.Run("unknown group mirrored", func(t *testing.T) {
		g, err := store.GetGroupByChainID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Imported", g.Name)
		assert.Equal(t, carol.Hex(), g.Creator)
		assert.Equal(t, "imports", g.Category)
		assert.Equal(t, int64(1700000000), g.CreatedAt)
		assert.ElementsMatch(t, []string{carol.Hex(), bob.Hex(), dave.Hex()}, g.Members)
	})

	t.Run("expenses matched and mirrored", func(t *testing.T) {
		e, err := store.GetExpenseByChainID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, expense.ID, e.ID)
		assert.True(t, e.Settled)

		e, err = store.GetExpenseByChainID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Fuel", e.Description)
		assert.True(t, e.Amount.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, []string{carol.Hex(), dave.Hex()}, e.Participants)
	})

	t.Run("settlement recorded", func(t *testing.T) {
		settlements, err := store.ListSettlementsByGroup(ctx, staged.ID)
		require.NoError(t, err)
		require.Len(t, settlements, 1)
		assert.Equal(t, expense.ID, settlements[0].ExpenseID)
		assert.Equal(t, bob.Hex(), settlements[0].From)
		assert.Equal(t, alice.Hex(), settlements[0].To)
		assert.True(t, settlements[0].Amount.Equal(decimal.NewFromInt(15)))
	})

	t.Run("replay is idempotent", func(t *testing.T) {
		require.NoError(t, store.SetSyncCursor(ctx, CursorName, 0))
		res, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, res.Outcomes[OutcomeDuplicate])

		settlements, err := store.ListSettlementsByGroup(ctx, staged.ID)
		require.NoError(t, err)
		assert.Len(t, settlements, 1)
	})

	t.Run("nothing new", func(t *testing.T) {
		res, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Events)
		assert.Equal(t, uint64(12), res.ToBlock)
	})
}

func TestReconciler_MirrorGroupWithoutContractRead(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	logs := &fakeLogs{
		head: 2,
		logs: []types.Log{eventLog(t, chain.EventGroupCreated, 2, common.HexToHash("0xa9"), []int64{7}, "Lost", dave)},
	}
	r := New(logs, &fakeContract{}, store, contract, Options{}, discard())
	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Outcomes[OutcomeMirrored])

	g, err := store.GetGroupByChainID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategory, g.Category)
	assert.Equal(t, []string{dave.Hex()}, g.Members)
}

func TestReconciler_SettleAllNotDoubleCounted(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	group := &models.Group{Name: "Flat", Creator: alice.Hex(), Members: []string{bob.Hex()}, ChainID: 1}
	require.NoError(t, store.CreateGroup(ctx, group))
	expense := &models.Expense{
		ChainID:      4,
		GroupID:      group.ID,
		Description:  "Rent",
		Amount:       decimal.NewFromInt(100),
		Payer:        alice.Hex(),
		Participants: []string{alice.Hex(), bob.Hex()},
	}
	require.NoError(t, store.CreateExpense(ctx, expense))

	settleTx := common.HexToHash("0xf1")
	require.NoError(t, store.CreateSettlements(ctx, &models.Settlement{
		GroupID: group.ID,
		From:    bob.Hex(),
		To:      alice.Hex(),
		Amount:  decimal.NewFromInt(50),
		TxHash:  settleTx.Hex(),
	}))

	logs := &fakeLogs{
		head: 3,
		logs: []types.Log{eventLog(t, chain.EventExpenseSettled, 3, settleTx, []int64{4}, bob, tokens(50))},
	}
	r := New(logs, nil, store, contract, Options{}, discard())
	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Outcomes[OutcomeDuplicate])

	settlements, err := store.ListSettlementsByGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, settlements, 1)
}

func TestReconciler_FailureKeepsCursor(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SetSyncCursor(ctx, CursorName, 40))

	logs := &fakeLogs{head: 50, err: errors.New("rpc unavailable")}
	r := New(logs, nil, store, contract, Options{StartBlock: 10}, discard())

	res, err := r.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, uint64(41), res.FromBlock)

	cursor, err := store.GetSyncCursor(ctx, CursorName)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), cursor)
}

func TestNewScheduler(t *testing.T) {
	r := New(&fakeLogs{}, nil, newTestStore(t), contract, Options{}, discard())

	s, err := NewScheduler(r, DefaultSchedule, time.Minute, discard())
	require.NoError(t, err)
	s.Start()
	<-s.Stop().Done()

	_, err = NewScheduler(r, "not a schedule", time.Minute, discard())
	assert.Error(t, err)
}
