package sqlite

import "database/sql"

// schema sets up the database. It runs on startup to ensure tables exist.
// Groups must be created before expenses due to the foreign keys.
const schema = `
CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    chain_id INTEGER UNIQUE,
    name TEXT NOT NULL,
    creator TEXT NOT NULL,
    category TEXT NOT NULL,
    tx_hash TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    address TEXT NOT NULL,
    PRIMARY KEY (group_id, address),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    chain_id INTEGER UNIQUE,
    group_id TEXT NOT NULL,
    description TEXT NOT NULL,
    amount TEXT NOT NULL,
    payer TEXT NOT NULL,
    settled INTEGER NOT NULL DEFAULT 0,
    tx_hash TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expense_participants (
    expense_id TEXT NOT NULL,
    address TEXT NOT NULL,
    PRIMARY KEY (expense_id, address),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    expense_id TEXT,
    from_address TEXT NOT NULL,
    to_address TEXT NOT NULL,
    amount TEXT NOT NULL,
    tx_hash TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE,
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS address_book (
    address TEXT PRIMARY KEY,
    owner_name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_cursors (
    name TEXT PRIMARY KEY,
    block INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_group_members_address ON group_members(address);
CREATE INDEX IF NOT EXISTS idx_groups_tx_hash ON groups(tx_hash);
CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses(group_id);
CREATE INDEX IF NOT EXISTS idx_expenses_tx_hash ON expenses(tx_hash);
CREATE INDEX IF NOT EXISTS idx_expense_participants_address ON expense_participants(address);
CREATE INDEX IF NOT EXISTS idx_settlements_group_id ON settlements(group_id);
CREATE INDEX IF NOT EXISTS idx_settlements_tx_hash ON settlements(tx_hash);
CREATE INDEX IF NOT EXISTS idx_address_book_owner ON address_book(owner_name);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
