package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"sentiboard/internal/domain"
)

// Compile-time interface check.
var _ Store = (*SQLite)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS bundles (
	key         TEXT PRIMARY KEY,
	value       BLOB NOT NULL,
	created_at  INTEGER NOT NULL,
	last_access INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bundles_last_access ON bundles(last_access);
`

// SQLite persists bundles across restarts in a single-table database,
// evicting rows by last access once capacity is exceeded.
type SQLite struct {
	db       *sql.DB
	capacity int
}

// NewSQLite opens (or creates) the cache database at path and prepares its
// schema. A non-positive capacity falls back to the default.
func NewSQLite(path string, capacity int) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising cache schema: %w", err)
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &SQLite{db: db, capacity: capacity}, nil
}

// Get returns the bundle under key and refreshes its access time. A row
// that no longer unmarshals is deleted and reported as a miss.
func (s *SQLite) Get(ctx context.Context, key string) (domain.Bundle, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM bundles WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bundle{}, false, nil
	}
	if err != nil {
		return domain.Bundle{}, false, err
	}

	var bundle domain.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM bundles WHERE key = ?`, key)
		return domain.Bundle{}, false, nil
	}

	_, _ = s.db.ExecContext(ctx,
		`UPDATE bundles SET last_access = ? WHERE key = ?`, time.Now().UnixNano(), key)
	return bundle, true, nil
}

// Put upserts the bundle under key and trims the least recently accessed
// rows beyond capacity in the same transaction.
func (s *SQLite) Put(ctx context.Context, key string, bundle domain.Bundle) error {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	now := time.Now().UnixNano()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO bundles (key, value, created_at, last_access)
VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, last_access = excluded.last_access`,
		key, raw, now, now); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM bundles WHERE key IN (
	SELECT key FROM bundles ORDER BY last_access DESC LIMIT -1 OFFSET ?
)`, s.capacity); err != nil {
		return err
	}

	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
