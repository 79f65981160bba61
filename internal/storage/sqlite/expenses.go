package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
)

const expenseColumns = "id, chain_id, group_id, description, amount, payer, settled, tx_hash, created_at"

// CreateExpense persists a new expense with its participants.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, nullChainID(expense.ChainID), expense.GroupID, expense.Description,
		expense.Amount.String(), expense.Payer, expense.Settled, nullString(expense.TxHash),
		expense.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("expense with chain id %d %w", expense.ChainID, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, p := range expense.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, address) VALUES (?, ?)",
			expense.ID, p,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its participants.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.getExpenseWhere(ctx, "id = ?", expenseID)
}

// GetExpenseByChainID retrieves an expense by its contract id.
func (s *SQLiteStore) GetExpenseByChainID(ctx context.Context, chainID uint64) (*models.Expense, error) {
	return s.getExpenseWhere(ctx, "chain_id = ?", int64(chainID))
}

// FindExpenseByTxHash retrieves the expense created by a transaction.
func (s *SQLiteStore) FindExpenseByTxHash(ctx context.Context, txHash string) (*models.Expense, error) {
	return s.getExpenseWhere(ctx, "tx_hash = ? ORDER BY created_at LIMIT 1", txHash)
}

// FindUnreconciledExpense returns the oldest matching expense without a contract id.
func (s *SQLiteStore) FindUnreconciledExpense(ctx context.Context, groupID, description, payer string, amount decimal.Decimal) (*models.Expense, error) {
	// Amounts are compared as decimals; the TEXT column may hold another
	// representation of the same value.
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE chain_id IS NULL AND group_id = ? AND description = ? AND payer = ?
		 ORDER BY created_at, rowid`,
		groupID, description, payer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}

	var match *models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if e.Amount.Equal(amount) {
			match = e
			break
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if match == nil {
		return nil, fmt.Errorf("expense %w", storage.ErrNotFound)
	}
	if err := s.loadParticipants(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *SQLiteStore) getExpenseWhere(ctx context.Context, where string, args ...any) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE "+where, args...)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if err := s.loadParticipants(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListExpensesByGroup retrieves all expenses of a group, oldest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
}

// ListExpensesByAddress retrieves every expense an address paid for or shares.
func (s *SQLiteStore) ListExpensesByAddress(ctx context.Context, address string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE payer = ? OR id IN (SELECT expense_id FROM expense_participants WHERE address = ?)
		 ORDER BY created_at DESC, rowid DESC`,
		address, address,
	)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, e := range expenses {
		if err := s.loadParticipants(ctx, e); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// SetExpenseSettled updates the settled flag.
func (s *SQLiteStore) SetExpenseSettled(ctx context.Context, expenseID string, settled bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE expenses SET settled = ? WHERE id = ?", settled, expenseID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireAffected(res, "expense")
}

// SetExpenseChainID records the contract id of a reconciled expense.
func (s *SQLiteStore) SetExpenseChainID(ctx context.Context, expenseID string, chainID uint64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE expenses SET chain_id = ? WHERE id = ?", nullChainID(chainID), expenseID)
	if isUniqueViolation(err) {
		return fmt.Errorf("expense with chain id %d %w", chainID, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to set expense chain id: %w", err)
	}
	return requireAffected(res, "expense")
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var chainID sql.NullInt64
	var txHash sql.NullString
	var amount string
	if err := row.Scan(&e.ID, &chainID, &e.GroupID, &e.Description, &amount,
		&e.Payer, &e.Settled, &txHash, &e.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("bad amount %q: %w", amount, err)
	}
	e.Amount = d
	if chainID.Valid {
		e.ChainID = uint64(chainID.Int64)
	}
	e.TxHash = txHash.String
	return e, nil
}

// loadParticipants fills in participants in the order they were recorded.
// Order matters: split remainders go to the first participants.
func (s *SQLiteStore) loadParticipants(ctx context.Context, e *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT address FROM expense_participants WHERE expense_id = ? ORDER BY rowid",
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	e.Participants = nil
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		e.Participants = append(e.Participants, addr)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}
	return nil
}
