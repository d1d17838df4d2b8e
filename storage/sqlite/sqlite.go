// Package sqlite persists users, catalog data, and orders in a single
// SQLite database file. Session records are not stored here; they live in
// Redis or in memory behind the session.Repo interface.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	provider_id    TEXT NOT NULL UNIQUE,
	nickname       TEXT NOT NULL DEFAULT '',
	zipcode        TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT '',
	address_detail TEXT NOT NULL DEFAULT '',
	mileage        INTEGER NOT NULL DEFAULT 0,
	recent_total   INTEGER NOT NULL DEFAULT 0,
	deletable      INTEGER NOT NULL DEFAULT 1,
	created_at     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	price      INTEGER NOT NULL,
	brand      TEXT NOT NULL DEFAULT '',
	image_path TEXT NOT NULL DEFAULT '',
	is_new     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS item_categories (
	item_id     INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (item_id, category_id)
);

CREATE TABLE IF NOT EXISTS orders (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	provider_id TEXT NOT NULL,
	item_id     INTEGER NOT NULL,
	item_name   TEXT NOT NULL,
	nickname    TEXT NOT NULL DEFAULT '',
	quantity    INTEGER NOT NULL,
	total_price INTEGER NOT NULL,
	final_price INTEGER NOT NULL,
	status      TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_provider ON orders(provider_id);
CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at);
`

// DB wraps the shared SQLite handle the individual stores hang off.
type DB struct {
	sqlDB *sql.DB
}

// Open opens the database file, creating it and its schema when absent.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("[Open] storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("[Open] open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("[Open] ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("[Open] apply schema: %w", err)
	}
	return &DB{sqlDB: sqlDB}, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error {
	if db == nil || db.sqlDB == nil {
		return nil
	}
	return db.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
