// Package database owns the PostgreSQL connection pool and the idempotent
// schema bootstrap the workflow service runs at startup.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/decisionflow-ai/decisionflow/internal/platform/config"
)

// DB wraps the SQL connection pool.
type DB struct {
	*sql.DB
	cfg config.DatabaseConfig
}

// New opens the connection pool, verifies connectivity and bootstraps the
// service schema.
func New(cfg config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Schema != "" {
		if err := bootstrap(db, cfg.Schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to bootstrap schema %s: %w", cfg.Schema, err)
		}
	}

	return &DB{DB: db, cfg: cfg}, nil
}

// Table definitions, parameterized on the schema name. IF NOT EXISTS
// keeps the bootstrap safe to run from every instance.
const (
	ddlDefinitions = `
		CREATE TABLE IF NOT EXISTS %[1]s.workflow_definitions (
			id                  TEXT PRIMARY KEY,
			workflow_id         TEXT NOT NULL UNIQUE,
			name                TEXT NOT NULL,
			mode                TEXT NOT NULL,
			usage_method        TEXT NOT NULL DEFAULT '',
			owner_user_id       TEXT NOT NULL,
			template_source     TEXT NOT NULL,
			status              TEXT NOT NULL,
			is_active           BOOLEAN NOT NULL DEFAULT FALSE,
			latest_version_code TEXT NOT NULL,
			created_at          TIMESTAMPTZ NOT NULL,
			updated_at          TIMESTAMPTZ NOT NULL
		)`

	ddlVersions = `
		CREATE TABLE IF NOT EXISTS %[1]s.workflow_versions (
			id            TEXT PRIMARY KEY,
			definition_id TEXT NOT NULL REFERENCES %[1]s.workflow_definitions (id),
			version_code  TEXT NOT NULL,
			status        TEXT NOT NULL,
			snapshot      JSONB NOT NULL,
			published_at  TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL,
			UNIQUE (definition_id, version_code)
		)`

	ddlPublishAudits = `
		CREATE TABLE IF NOT EXISTS %[1]s.workflow_publish_audits (
			id                   TEXT PRIMARY KEY,
			definition_id        TEXT NOT NULL,
			version_id           TEXT NOT NULL,
			operation            TEXT NOT NULL,
			published_by_user_id TEXT NOT NULL,
			snapshot             JSONB NOT NULL,
			published_at         TIMESTAMPTZ NOT NULL
		)`

	ddlRulePacks = `
		CREATE TABLE IF NOT EXISTS %[1]s.rule_packs (
			code          TEXT NOT NULL,
			version       TEXT NOT NULL,
			status        TEXT NOT NULL,
			owner_user_id TEXT NOT NULL,
			visibility    TEXT NOT NULL,
			PRIMARY KEY (code, version)
		)`

	ddlAgentProfiles = `
		CREATE TABLE IF NOT EXISTS %[1]s.agent_profiles (
			code          TEXT NOT NULL,
			version       TEXT NOT NULL,
			status        TEXT NOT NULL,
			owner_user_id TEXT NOT NULL,
			visibility    TEXT NOT NULL,
			PRIMARY KEY (code, version)
		)`

	ddlParameterSets = `
		CREATE TABLE IF NOT EXISTS %[1]s.parameter_sets (
			code          TEXT NOT NULL,
			version       TEXT NOT NULL,
			status        TEXT NOT NULL,
			owner_user_id TEXT NOT NULL,
			visibility    TEXT NOT NULL,
			PRIMARY KEY (code, version)
		)`

	ddlParameterItems = `
		CREATE TABLE IF NOT EXISTS %[1]s.parameter_items (
			set_code TEXT NOT NULL,
			code     TEXT NOT NULL,
			status   TEXT NOT NULL,
			PRIMARY KEY (set_code, code)
		)`

	ddlDataConnectors = `
		CREATE TABLE IF NOT EXISTS %[1]s.data_connectors (
			code   TEXT PRIMARY KEY,
			status TEXT NOT NULL
		)`
)

// bootstrap creates the schema and every table the repositories and
// registries query.
func bootstrap(db *sql.DB, schema string) error {
	statements := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema),
		fmt.Sprintf("SET search_path TO %s", schema),
	}
	for _, ddl := range []string{
		ddlDefinitions,
		ddlVersions,
		ddlPublishAudits,
		ddlRulePacks,
		ddlAgentProfiles,
		ddlParameterSets,
		ddlParameterItems,
		ddlDataConnectors,
	} {
		statements = append(statements, fmt.Sprintf(ddl, schema))
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Transaction runs fn inside a transaction, rolling back on error or
// panic.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// HealthCheck verifies the database answers queries.
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.DB.Close()
}

// NullTimePtr converts an optional time into its SQL representation.
func NullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
