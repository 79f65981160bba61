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

const groupColumns = "id, chain_id, name, creator, category, tx_hash, created_at"

// CreateGroup persists a new group and its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Category == "" {
		group.Category = models.DefaultCategory
	}

	// The creator always comes first in the member list.
	members := []string{group.Creator}
	for _, m := range group.Members {
		if m != group.Creator {
			members = append(members, m)
		}
	}
	group.Members = members

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups ("+groupColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		group.ID, nullChainID(group.ChainID), group.Name, group.Creator,
		group.Category, nullString(group.TxHash), group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("group with chain id %d %w", group.ChainID, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, m := range group.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, address) VALUES (?, ?)",
			group.ID, m,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.getGroupWhere(ctx, "id = ?", groupID)
}

// GetGroupByChainID retrieves a group by its contract id.
func (s *SQLiteStore) GetGroupByChainID(ctx context.Context, chainID uint64) (*models.Group, error) {
	return s.getGroupWhere(ctx, "chain_id = ?", int64(chainID))
}

// FindGroupByTxHash retrieves the group created by a transaction.
func (s *SQLiteStore) FindGroupByTxHash(ctx context.Context, txHash string) (*models.Group, error) {
	return s.getGroupWhere(ctx, "tx_hash = ? ORDER BY created_at LIMIT 1", txHash)
}

// FindUnreconciledGroup returns the oldest group waiting for its contract id.
func (s *SQLiteStore) FindUnreconciledGroup(ctx context.Context, name, creator string) (*models.Group, error) {
	return s.getGroupWhere(ctx,
		"chain_id IS NULL AND name = ? AND creator = ? ORDER BY created_at, rowid LIMIT 1",
		name, creator,
	)
}

func (s *SQLiteStore) getGroupWhere(ctx context.Context, where string, args ...any) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups WHERE "+where, args...)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if err := s.loadGroupDetails(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsByMember retrieves the groups an address belongs to.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, address string) ([]*models.Group, error) {
	return s.listGroups(ctx,
		`SELECT `+groupColumns+` FROM groups
		 WHERE id IN (SELECT group_id FROM group_members WHERE address = ?)
		 ORDER BY created_at DESC, rowid DESC`,
		address,
	)
}

func (s *SQLiteStore) listGroups(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, g := range groups {
		if err := s.loadGroupDetails(ctx, g); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// UpdateGroupCategory changes a group's category tag.
func (s *SQLiteStore) UpdateGroupCategory(ctx context.Context, groupID, category string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE groups SET category = ? WHERE id = ?", category, groupID)
	if err != nil {
		return fmt.Errorf("failed to update group category: %w", err)
	}
	return requireAffected(res, "group")
}

// AddGroupMembers appends new members to a group.
func (s *SQLiteStore) AddGroupMembers(ctx context.Context, groupID string, members []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("group %s %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	for _, m := range members {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, address) VALUES (?, ?)",
			groupID, m,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetGroupChainID records the contract id of a reconciled group.
func (s *SQLiteStore) SetGroupChainID(ctx context.Context, groupID string, chainID uint64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE groups SET chain_id = ? WHERE id = ?", nullChainID(chainID), groupID)
	if isUniqueViolation(err) {
		return fmt.Errorf("group with chain id %d %w", chainID, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to set group chain id: %w", err)
	}
	return requireAffected(res, "group")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*models.Group, error) {
	g := &models.Group{}
	var chainID sql.NullInt64
	var txHash sql.NullString
	if err := row.Scan(&g.ID, &chainID, &g.Name, &g.Creator, &g.Category, &txHash, &g.CreatedAt); err != nil {
		return nil, err
	}
	if chainID.Valid {
		g.ChainID = uint64(chainID.Int64)
	}
	g.TxHash = txHash.String
	return g, nil
}

// loadGroupDetails fills in members (in insertion order) and the expense total.
func (s *SQLiteStore) loadGroupDetails(ctx context.Context, g *models.Group) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT address FROM group_members WHERE group_id = ? ORDER BY rowid",
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	g.Members = nil
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return fmt.Errorf("failed to scan group member: %w", err)
		}
		g.Members = append(g.Members, addr)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate group members: %w", err)
	}
	rows.Close()

	amountRows, err := s.db.QueryContext(ctx, "SELECT amount FROM expenses WHERE group_id = ?", g.ID)
	if err != nil {
		return fmt.Errorf("failed to get group expenses: %w", err)
	}
	defer amountRows.Close()

	total := decimal.Zero
	for amountRows.Next() {
		var amount decimal.Decimal
		if err := amountRows.Scan(&amount); err != nil {
			return fmt.Errorf("failed to scan expense amount: %w", err)
		}
		total = total.Add(amount)
	}
	if err := amountRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense amounts: %w", err)
	}
	g.TotalAmount = total
	return nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %w", what, storage.ErrNotFound)
	}
	return nil
}
