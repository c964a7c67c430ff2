package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

An automatic checkpoint is taken before an existing database is migrated.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")
	cmd.Flags().Bool("no-checkpoint", false, "Skip the automatic checkpoint before migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	noCheckpoint, _ := cmd.Flags().GetBool("no-checkpoint")
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := cfg.Database.Path

	_, statErr := os.Stat(dbPath)
	existed := statErr == nil

	slog.Info("Starting database migration",
		"database", dbPath,
		"status_only", status)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	out := cmd.OutOrStdout()
	if status {
		fmt.Fprintf(out, "Database:        %s\n", dbPath)
		fmt.Fprintf(out, "Current version: %d\n", current)
		fmt.Fprintf(out, "Latest version:  %d\n", storage.ExpectedSchemaVersion)
		pending := storage.PendingMigrations(current)
		if len(pending) > 0 {
			fmt.Fprintf(out, "%d migration(s) pending:\n", len(pending))
			for _, m := range pending {
				fmt.Fprintf(out, "  %d  %s\n", m.Version, m.Description)
			}
		}
		return nil
	}

	if current >= storage.ExpectedSchemaVersion {
		slog.Info("Database schema is up to date", "version", current)
		return nil
	}

	if existed && current > 0 && !noCheckpoint {
		manager, err := store.NewCheckpointManager()
		if err != nil {
			return fmt.Errorf("failed to create checkpoint manager: %w", err)
		}
		info, err := manager.AutoCheckpoint(ctx, "pre-migrate")
		if err != nil {
			return fmt.Errorf("failed to checkpoint before migration: %w", err)
		}
		slog.Info("Created checkpoint before migration", "checkpoint", info.ID)
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	common.LogInfo("Database migrations completed", common.Fields{"from": current, "to": storage.ExpectedSchemaVersion})
	return nil
}
