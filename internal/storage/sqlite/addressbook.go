package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
)

// AddAddressEntry inserts a new address book entry. Addresses are stored in
// checksum form, so uniqueness is case-insensitive.
func (s *SQLiteStore) AddAddressEntry(ctx context.Context, entry *models.AddressEntry) error {
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO address_book (address, owner_name, created_at) VALUES (?, ?, ?)",
		entry.Address, entry.OwnerName, entry.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("address %s %w", entry.Address, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert address entry: %w", err)
	}
	return nil
}

// GetAddressEntry retrieves the entry for an address.
func (s *SQLiteStore) GetAddressEntry(ctx context.Context, address string) (*models.AddressEntry, error) {
	entry := &models.AddressEntry{}
	err := s.db.QueryRowContext(ctx,
		"SELECT address, owner_name, created_at FROM address_book WHERE address = ?",
		address,
	).Scan(&entry.Address, &entry.OwnerName, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("address %s %w", address, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get address entry: %w", err)
	}
	return entry, nil
}

// ListAddressEntries returns the whole address book in the order entries were added.
func (s *SQLiteStore) ListAddressEntries(ctx context.Context) ([]*models.AddressEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT address, owner_name, created_at FROM address_book ORDER BY created_at, rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list address entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AddressEntry
	for rows.Next() {
		entry := &models.AddressEntry{}
		if err := rows.Scan(&entry.Address, &entry.OwnerName, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan address entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate address entries: %w", err)
	}
	return entries, nil
}

// ListAddressesByOwner returns every address belonging to an owner name.
func (s *SQLiteStore) ListAddressesByOwner(ctx context.Context, ownerName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT address FROM address_book WHERE owner_name = ? ORDER BY created_at, rowid",
		ownerName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses by owner: %w", err)
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate addresses: %w", err)
	}
	return addresses, nil
}

// RemoveAddressEntry deletes an entry.
func (s *SQLiteStore) RemoveAddressEntry(ctx context.Context, address string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM address_book WHERE address = ?", address)
	if err != nil {
		return fmt.Errorf("failed to delete address entry: %w", err)
	}
	return requireAffected(res, "address "+address)
}
