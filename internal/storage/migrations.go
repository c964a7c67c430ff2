package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/punchclock/internal/common"
)

// ExpectedSchemaVersion is the schema version this build reads and writes.
// Failing to reach it after migrating is fatal.
const ExpectedSchemaVersion = 4

// Migration is one schema step. Its statements run in a single transaction
// that also bumps PRAGMA user_version to Version.
type Migration struct {
	Description string
	Statements  []string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Holidays and employee rates",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS holidays (
				date TEXT PRIMARY KEY,
				name TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS employees (
				key TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				normal_rate TEXT NOT NULL DEFAULT '0',
				premium_rate TEXT NOT NULL DEFAULT '0',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		Version:     2,
		Description: "Suspended review batches",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS review_batches (
				id TEXT PRIMARY KEY,
				document TEXT NOT NULL,
				source TEXT NOT NULL,
				policy TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				snapshot TEXT NOT NULL
			)`,
			`CREATE INDEX idx_review_batches_updated_at ON review_batches(updated_at)`,
		},
	},
	{
		Version:     3,
		Description: "Checkpoint metadata",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS checkpoint_metadata (
				id TEXT PRIMARY KEY,
				created_at DATETIME NOT NULL,
				description TEXT,
				file_size INTEGER,
				row_counts TEXT,
				schema_version INTEGER,
				is_auto BOOLEAN DEFAULT 0
			)`,
			`CREATE INDEX idx_checkpoint_metadata_created_at ON checkpoint_metadata(created_at)`,
		},
	},
	{
		Version:     4,
		Description: "Outstanding review count per batch",
		Statements: []string{
			`ALTER TABLE review_batches ADD COLUMN outstanding INTEGER NOT NULL DEFAULT 0`,
		},
	},
}

// PendingMigrations lists the migrations newer than version, oldest first.
func PendingMigrations(version int) []Migration {
	for i, m := range migrations {
		if m.Version > version {
			return migrations[i:]
		}
	}
	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range PendingMigrations(current) {
		if err := s.apply(ctx, m); err != nil {
			return err
		}
		common.Logger(ctx).Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	final, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, final)
	}
	return nil
}

func (s *SQLiteStorage) apply(ctx context.Context, m Migration) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range m.Statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", m.Version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}
