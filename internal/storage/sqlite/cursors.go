package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSyncCursor returns the last processed block for a named cursor, or 0.
func (s *SQLiteStore) GetSyncCursor(ctx context.Context, name string) (uint64, error) {
	var block int64
	err := s.db.QueryRowContext(ctx, "SELECT block FROM sync_cursors WHERE name = ?", name).Scan(&block)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get sync cursor: %w", err)
	}
	return uint64(block), nil
}

// SetSyncCursor stores the last processed block for a named cursor.
func (s *SQLiteStore) SetSyncCursor(ctx context.Context, name string, block uint64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_cursors (name, block) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET block = excluded.block`,
		name, int64(block),
	)
	if err != nil {
		return fmt.Errorf("failed to set sync cursor: %w", err)
	}
	return nil
}
