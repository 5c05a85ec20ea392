// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"insurance-advisor/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection used for quote results.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
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

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS applicant_profiles (
		session_id  TEXT PRIMARY KEY,
		payload     JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS quote_sets (
		id            TEXT PRIMARY KEY,
		session_id    TEXT NOT NULL,
		product_type  TEXT NOT NULL,
		skipped       INTEGER NOT NULL DEFAULT 0,
		payload       JSONB NOT NULL,
		generated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quote_sets_session ON quote_sets (session_id, generated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS policy_scores (
		quote_set_id  TEXT NOT NULL,
		plan_id       TEXT NOT NULL,
		session_id    TEXT NOT NULL,
		rank          INTEGER NOT NULL,
		composite     NUMERIC(5,1) NOT NULL,
		payload       JSONB NOT NULL,
		PRIMARY KEY (quote_set_id, plan_id)
	)`,
}

// Migrate creates the result tables when they do not exist yet.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
