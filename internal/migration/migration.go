package migration

import (
	"context"

	"geoverify/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the critique session and usage schema. Statements are
// idempotent and portable between postgres and sqlite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSchemaVersionTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create schema_version table")
	}

	if err := r.createCritiqueSessionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create critique_sessions table")
	}

	if err := r.createLLMUsageTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create llm_usage table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	return nil
}

// CurrentVersion reads the recorded schema version, or "" before the first run
func (r *MigrationRunner) CurrentVersion(ctx context.Context, db *sqlx.DB) (string, error) {
	var versions []string
	err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_version`)
	if err != nil {
		return "", errors.DatabaseError("failed to read schema version", err)
	}
	if len(versions) == 0 {
		return "", nil
	}
	return versions[0], nil
}

func (r *MigrationRunner) createSchemaVersionTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			id INTEGER PRIMARY KEY,
			version VARCHAR(32) NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createCritiqueSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS critique_sessions (
			id VARCHAR(64) PRIMARY KEY,
			paper_title TEXT NOT NULL,
			domain VARCHAR(100) NOT NULL DEFAULT '',
			overall_result VARCHAR(50) NOT NULL,
			plausibility_trap_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			iteration_count INTEGER NOT NULL DEFAULT 0,
			is_complete BOOLEAN NOT NULL DEFAULT FALSE,
			document TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createLLMUsageTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS llm_usage (
			id VARCHAR(64) PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			model VARCHAR(100) NOT NULL DEFAULT '',
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_critique_sessions_updated_at ON critique_sessions(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_critique_sessions_result ON critique_sessions(overall_result)`,
		`CREATE INDEX IF NOT EXISTS idx_llm_usage_session ON llm_usage(session_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO schema_version (id, version) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET version = excluded.version
	`), r.version)
	return err
}
