package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with engine-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
// Position values are stored as JSON documents in TEXT columns; the
// typed model lives in internal/position.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    phase TEXT NOT NULL DEFAULT 'intake' CHECK(phase IN ('intake','commercial','negotiation','agreed')),
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sessions_customer ON sessions(customer_id);

CREATE TABLE IF NOT EXISTS clause_packs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    owner_type TEXT NOT NULL DEFAULT 'platform' CHECK(owner_type IN ('platform','customer')),
    pack_type TEXT NOT NULL DEFAULT 'service' CHECK(pack_type IN ('service','industry','regulatory','favourite')),
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS pack_clauses (
    pack_id TEXT NOT NULL REFERENCES clause_packs(id) ON DELETE CASCADE,
    clause_id TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    display_order INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL DEFAULT 5,
    weight INTEGER NOT NULL DEFAULT 5,
    non_negotiable INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY(pack_id, clause_id)
);

CREATE TABLE IF NOT EXISTS clause_selections (
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    clause_id TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    display_order INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL DEFAULT 5,
    weight INTEGER NOT NULL DEFAULT 5,
    non_negotiable INTEGER NOT NULL DEFAULT 0,
    source_pack_id TEXT,
    added_manually INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY(session_id, clause_id)
);

CREATE TABLE IF NOT EXISTS bids (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    provider_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'invited',
    intake_complete INTEGER NOT NULL DEFAULT 0,
    questionnaire_complete INTEGER NOT NULL DEFAULT 0,
    invited_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_bids_session ON bids(session_id);

CREATE TABLE IF NOT EXISTS negotiation_items (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    bid_id TEXT NOT NULL REFERENCES bids(id) ON DELETE CASCADE,
    item_id TEXT NOT NULL,
    group_name TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL DEFAULT '',
    customer_position TEXT NOT NULL,
    provider_position TEXT NOT NULL,
    customer_priority INTEGER NOT NULL DEFAULT 5,
    provider_priority INTEGER NOT NULL DEFAULT 5,
    aligned INTEGER NOT NULL DEFAULT 0,
    recommendation TEXT,
    suggested_compromise TEXT,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(session_id, bid_id, item_id)
);

CREATE INDEX IF NOT EXISTS idx_items_session ON negotiation_items(session_id, bid_id);

CREATE TABLE IF NOT EXISTS engine_events (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    session_id TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL DEFAULT '{}',
    delivered INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_events_created ON engine_events(created_at);
`
