package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitme/splitme/internal/models"
)

// CreateSettlements persists settlements in one transaction.
func (s *SQLiteStore) CreateSettlements(ctx context.Context, settlements ...*models.Settlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, st := range settlements {
		// Generate ID if not set
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		if st.CreatedAt == 0 {
			st.CreatedAt = now
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (id, group_id, expense_id, from_address, to_address, amount, tx_hash, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, st.GroupID, nullString(st.ExpenseID), st.From, st.To,
			st.Amount.String(), nullString(st.TxHash), st.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSettlementsByGroup retrieves all settlements for a group, oldest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, expense_id, from_address, to_address, amount, tx_hash, created_at
		 FROM settlements WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		st := &models.Settlement{}
		var expenseID, txHash sql.NullString
		var amount string

		if err := rows.Scan(&st.ID, &st.GroupID, &expenseID, &st.From, &st.To,
			&amount, &txHash, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("bad settlement amount %q: %w", amount, err)
		}
		st.Amount = d
		st.ExpenseID = expenseID.String
		st.TxHash = txHash.String

		settlements = append(settlements, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// HasSettlement reports whether a settlement from this transaction and for
// this expense was already stored.
func (s *SQLiteStore) HasSettlement(ctx context.Context, txHash, expenseID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM settlements WHERE tx_hash = ? AND IFNULL(expense_id, '') = ?",
		txHash, expenseID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check settlement: %w", err)
	}
	return n > 0, nil
}
