package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchclock/internal/cli"
	"github.com/Veraticus/punchclock/internal/storage"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

A checkpoint copies the database (holidays, employee rates, suspended
batches) aside so it can be put back after a bad edit or migration.`,
		Example: `  # Checkpoint before editing rates for a new pay period
  punch checkpoint create --tag "pre-october-rates"

  punch checkpoint list
  punch checkpoint restore pre-october-rates
  punch checkpoint delete pre-october-rates --force`,
	}

	cmd.AddCommand(
		createCheckpointCmd(),
		listCheckpointsCmd(),
		restoreCheckpointCmd(),
		deleteCheckpointCmd(),
	)
	return cmd
}

type checkpointFunc func(ctx context.Context, out io.Writer, manager *storage.CheckpointManager) error

// withCheckpoints opens storage and hands a checkpoint manager to fn. Closing
// the store again after Restore has closed it is harmless.
func withCheckpoints(cmd *cobra.Command, fn checkpointFunc) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}

	manager, err := store.NewCheckpointManager()
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}

	defer func() { _ = store.Close() }()
	return fn(ctx, cmd.OutOrStdout(), manager)
}

// findCheckpoint looks a checkpoint up by ID.
func findCheckpoint(ctx context.Context, manager *storage.CheckpointManager, id string) (*storage.CheckpointInfo, error) {
	checkpoints, err := manager.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	for i := range checkpoints {
		if checkpoints[i].ID == id {
			return &checkpoints[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrCheckpointNotFound, id)
}

// confirmCheckpoint describes what is about to happen to info and asks before
// continuing.
func confirmCheckpoint(cmd *cobra.Command, force bool, action string, info *storage.CheckpointInfo) bool {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("This will %s checkpoint %s.", action, info.ID)))
	fmt.Fprintf(out, "  Created: %s (%s)\n", info.CreatedAt.Format("2006-01-02 15:04"), formatFileSize(info.FileSize))
	if info.Description != "" {
		fmt.Fprintf(out, "  Description: %s\n", info.Description)
	}
	fmt.Fprintf(out, "  Contents: %d holidays, %d employees, %d batches\n", info.Holidays, info.Employees, info.Batches)
	return confirm(cmd, force, "\nContinue?")
}

func createCheckpointCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd, func(ctx context.Context, out io.Writer, m *storage.CheckpointManager) error {
				info, err := m.Create(ctx, tag, description)
				if err != nil {
					return fmt.Errorf("failed to create checkpoint: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created checkpoint %s (%s)", info.ID, formatFileSize(info.FileSize))))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Checkpoint name (generated from the time if empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "What the checkpoint protects")
	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd, func(ctx context.Context, out io.Writer, m *storage.CheckpointManager) error {
				checkpoints, err := m.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}
				if len(checkpoints) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No checkpoints found."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				headers := []string{"NAME", "CREATED", "SIZE", "HOLIDAYS", "EMPLOYEES", "BATCHES", "TYPE"}
				for i, h := range headers {
					headers[i] = cli.TableHeaderStyle.Render(h)
				}
				fmt.Fprintln(w, strings.Join(headers, "\t"))

				for _, cp := range checkpoints {
					kind := "manual"
					if cp.IsAuto {
						kind = "auto"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
						cli.InfoStyle.Render(cp.ID), formatRelativeTime(cp.CreatedAt), formatFileSize(cp.FileSize),
						cp.Holidays, cp.Employees, cp.Batches, cli.SubtitleStyle.Render(kind))
				}
				return w.Flush()
			})
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Replace the database with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCheckpoints(cmd, func(ctx context.Context, out io.Writer, m *storage.CheckpointManager) error {
				info, err := findCheckpoint(ctx, m, args[0])
				if err != nil {
					return err
				}
				if !confirmCheckpoint(cmd, force, "replace your current database with", info) {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("Restore cancelled."))
					return nil
				}
				// Restore closes the store's connection before swapping files.
				if err := m.Restore(ctx, info.ID); err != nil {
					return fmt.Errorf("failed to restore checkpoint: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess("Restored from checkpoint "+info.ID))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCheckpoints(cmd, func(ctx context.Context, out io.Writer, m *storage.CheckpointManager) error {
				info, err := findCheckpoint(ctx, m, args[0])
				if err != nil {
					return err
				}
				if !confirmCheckpoint(cmd, force, "permanently delete", info) {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("Deletion cancelled."))
					return nil
				}
				if err := m.Delete(ctx, info.ID); err != nil {
					return fmt.Errorf("failed to delete checkpoint: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess("Deleted checkpoint "+info.ID))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
