// Package sqlite implements repository.KeyValueStore on an embedded SQLite
// file.
//
// DRIVER:
// modernc.org/sqlite, a pure Go translation of SQLite. No C toolchain is
// needed to build.
//
// SCHEMA:
// A single table, kv(key, value, updated_at), created by the goose
// migrations embedded under migrations/. Every persisted slot of the
// dashboard is one row.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps a sql.DB connection pool and implements repository.KeyValueStore.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/bonvan.db"  → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Concurrent writers wait instead of failing with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate applies the embedded goose migrations.
func (db *DB) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("selecting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.conn, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
