package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cached_entitlements (
	user_id        TEXT NOT NULL,
	entitlement_id TEXT NOT NULL,
	payload        TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	PRIMARY KEY (user_id, entitlement_id)
);
`

// SQLiteEntitlementCache stores snapshots in a local SQLite database, the
// default for on-device deployments.
type SQLiteEntitlementCache struct {
	db *sql.DB
}

// NewSQLiteEntitlementCache opens (creating if needed) the database at path.
func NewSQLiteEntitlementCache(path string) (*SQLiteEntitlementCache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite cache schema: %w", err)
	}
	return &SQLiteEntitlementCache{db: db}, nil
}

// Save replaces the user's snapshot in a single transaction.
func (c *SQLiteEntitlementCache) Save(ctx context.Context, userID string, entitlements []domain.Entitlement) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_entitlements WHERE user_id = ?`, userID); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entitlements {
		payload, err := json.Marshal(e)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cached_entitlements (user_id, entitlement_id, payload, updated_at) VALUES (?, ?, ?, ?)`,
			userID, e.ID, string(payload), now,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load returns the cached snapshot for a user.
func (c *SQLiteEntitlementCache) Load(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT payload FROM cached_entitlements WHERE user_id = ? ORDER BY entitlement_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Entitlement
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e domain.Entitlement
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (c *SQLiteEntitlementCache) Close() error {
	return c.db.Close()
}

var _ EntitlementCache = (*SQLiteEntitlementCache)(nil)
