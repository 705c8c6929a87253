package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database represents the wicket PostgreSQL database connection
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase creates a new database connection
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

// migration pairs a version label with the DDL it applies.
type migration struct {
	version string
	stmt    string
}

var migrations = []migration{
	{
		version: "001_create_matches",
		stmt: `
			CREATE TABLE IF NOT EXISTS matches (
				id TEXT PRIMARY KEY,
				teams TEXT NOT NULL,
				format TEXT NOT NULL DEFAULT '',
				url TEXT NOT NULL,
				scheduled_start TIMESTAMPTZ NOT NULL,
				status TEXT NOT NULL DEFAULT 'upcoming',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		version: "002_create_snapshots",
		stmt: `
			CREATE TABLE IF NOT EXISTS snapshots (
				id BIGSERIAL PRIMARY KEY,
				match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
				kind TEXT NOT NULL,
				payload JSONB NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		version: "003_create_snapshots_latest",
		stmt: `
			CREATE TABLE IF NOT EXISTS snapshots_latest (
				match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
				kind TEXT NOT NULL,
				payload JSONB NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (match_id, kind)
			)
		`,
	},
	{
		version: "004_create_indexes",
		stmt: `
			CREATE INDEX IF NOT EXISTS idx_snapshots_match_kind ON snapshots (match_id, kind, recorded_at DESC);
			CREATE INDEX IF NOT EXISTS idx_matches_status ON matches (status);
			CREATE INDEX IF NOT EXISTS idx_matches_scheduled_start ON matches (scheduled_start)
		`,
	},
}

// RunMigrations executes all pending migrations in order
func (db *Database) RunMigrations() error {
	log.Println("Running database migrations...")

	// Create migrations tracking table
	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All migrations completed successfully")

	return nil
}

// createMigrationsTable creates a table to track which migrations have been run
func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

// runMigration applies a single migration if it hasn't been applied yet
func (db *Database) runMigration(m migration) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		log.Printf("  ⊘ Skipping %s (already applied)", m.version)
		return nil
	}

	// Execute migration in a transaction
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.stmt); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	// Record migration as applied
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("  ✓ Applied %s", m.version)
	return nil
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
