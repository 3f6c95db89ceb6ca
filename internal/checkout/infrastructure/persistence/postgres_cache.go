package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS cached_entitlements (
	user_id        TEXT NOT NULL,
	entitlement_id TEXT NOT NULL,
	payload        JSONB NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, entitlement_id)
);
`

// PostgresEntitlementCache stores snapshots in Postgres, for server-side
// deployments of the engine.
type PostgresEntitlementCache struct {
	db *sql.DB
}

// NewPostgresEntitlementCache connects and ensures the schema exists.
func NewPostgresEntitlementCache(databaseURL string) (*PostgresEntitlementCache, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres cache: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize postgres cache schema: %w", err)
	}
	return &PostgresEntitlementCache{db: db}, nil
}

// Save replaces the user's snapshot in a single transaction.
func (c *PostgresEntitlementCache) Save(ctx context.Context, userID string, entitlements []domain.Entitlement) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_entitlements WHERE user_id = $1`, userID); err != nil {
		return err
	}

	for _, e := range entitlements {
		payload, err := json.Marshal(e)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cached_entitlements (user_id, entitlement_id, payload) VALUES ($1, $2, $3)`,
			userID, e.ID, payload,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load returns the cached snapshot for a user.
func (c *PostgresEntitlementCache) Load(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT payload FROM cached_entitlements WHERE user_id = $1 ORDER BY entitlement_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Entitlement
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e domain.Entitlement
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying pool.
func (c *PostgresEntitlementCache) Close() error {
	return c.db.Close()
}

var _ EntitlementCache = (*PostgresEntitlementCache)(nil)
