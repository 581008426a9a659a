// internal/common/kvstore/postgres.go
package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"registration-pipeline/internal/common/config"

	_ "github.com/lib/pq"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresClient keeps one row per key in a two-column table.
type PostgresClient struct {
	DB    *sql.DB
	table string
}

// NewPostgres opens a PostgreSQL handle; the connection is established lazily.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	client, err := NewPostgresFromDB(db, cfg.Table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return client, nil
}

// NewPostgresFromDB wraps an existing handle. table must be a plain identifier.
func NewPostgresFromDB(db *sql.DB, table string) (*PostgresClient, error) {
	if table == "" {
		table = "kv_store"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresClient{DB: db, table: table}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureSchema creates the backing table when missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	_, err := c.DB.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, c.table))
	if err != nil {
		return fmt.Errorf("create table %s: %w", c.table, err)
	}
	return nil
}

func (c *PostgresClient) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := c.DB.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, c.table), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, true, nil
}

func (c *PostgresClient) Set(ctx context.Context, key, value string) error {
	_, err := c.DB.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, c.table),
		key, value)
	if err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}
