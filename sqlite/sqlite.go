// Package sqlite provides SQLite-based storage implementations for
// scrapsae services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Wait up to 5 seconds on lock contention instead of failing with
	// "database is locked".
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL mode allows concurrent reads during writes. Not supported for
	// in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sites (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			base_url TEXT NOT NULL,
			login_required INTEGER NOT NULL DEFAULT 0,
			credentials_ref TEXT NOT NULL DEFAULT '',
			strategies TEXT NOT NULL DEFAULT '[]',
			selectors TEXT NOT NULL DEFAULT '{}',
			max_products INTEGER NOT NULL DEFAULT 0,
			navigation_timeout_ms INTEGER NOT NULL DEFAULT 0,
			step_delay_ms INTEGER NOT NULL DEFAULT 0,
			sitemap_excludes TEXT NOT NULL DEFAULT '[]',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS staging_products (
			id TEXT PRIMARY KEY,
			site_id TEXT NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
			execution_id TEXT NOT NULL DEFAULT '',
			norm_key TEXT NOT NULL,
			sku TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			price TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			source_url TEXT NOT NULL DEFAULT '',
			parent_key TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(site_id, norm_key)
		);

		CREATE INDEX IF NOT EXISTS idx_staging_products_site_id ON staging_products(site_id);
		CREATE INDEX IF NOT EXISTS idx_staging_products_execution_id ON staging_products(execution_id);

		CREATE TABLE IF NOT EXISTS execution_metrics (
			execution_id TEXT PRIMARY KEY,
			site_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL DEFAULT '',
			pages_visited INTEGER NOT NULL DEFAULT 0,
			products_found INTEGER NOT NULL DEFAULT 0,
			products_skipped INTEGER NOT NULL DEFAULT 0,
			products_with_sku INTEGER NOT NULL DEFAULT 0,
			products_with_price INTEGER NOT NULL DEFAULT 0,
			timeouts INTEGER NOT NULL DEFAULT 0,
			navigation_errors INTEGER NOT NULL DEFAULT 0,
			avg_page_load_ms INTEGER NOT NULL DEFAULT 0,
			selectors TEXT NOT NULL DEFAULT '{}',
			requires_manual INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_execution_metrics_site_id ON execution_metrics(site_id);

		CREATE TABLE IF NOT EXISTS config_changes (
			id TEXT PRIMARY KEY,
			site_id TEXT NOT NULL,
			property TEXT NOT NULL,
			old_value TEXT NOT NULL DEFAULT '',
			new_value TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_config_changes_site_id ON config_changes(site_id);

		CREATE TABLE IF NOT EXISTS learned_patterns (
			site_id TEXT PRIMARY KEY,
			product_template TEXT NOT NULL DEFAULT '',
			listing_template TEXT NOT NULL DEFAULT '',
			subcategory_template TEXT NOT NULL DEFAULT '',
			product_examples TEXT NOT NULL DEFAULT '[]',
			listing_examples TEXT NOT NULL DEFAULT '[]',
			subcategory_examples TEXT NOT NULL DEFAULT '[]',
			navigation_hint TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS diagnostics (
			id TEXT PRIMARY KEY,
			execution_id TEXT NOT NULL,
			page_url TEXT NOT NULL DEFAULT '',
			failure_type TEXT NOT NULL,
			html TEXT NOT NULL DEFAULT '',
			screenshot BLOB,
			screenshot_ref TEXT NOT NULL DEFAULT '',
			attempts TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_diagnostics_execution_id ON diagnostics(execution_id);

		CREATE TABLE IF NOT EXISTS sync_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			operation TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);
	`

	_, err := db.db.Exec(schema)
	return err
}
