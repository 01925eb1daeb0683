package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
)

// compile-time check that *DB implements repository.KeyValueStore
var _ repository.KeyValueStore = (*DB)(nil)

// Get returns the value stored under key.
// A missing row is reported as found=false, not as an error.
func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sqlite: getting %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value under key.
func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: deleting %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in lexical order.
func (db *DB) Keys(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing keys: %w", err)
	}
	// rows must be closed or the connection stays checked out of the pool.
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("sqlite: scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating keys: %w", err)
	}
	return keys, nil
}
