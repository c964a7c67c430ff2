package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/engine"
	"github.com/Veraticus/punchclock/internal/storage"
)

func reviewCmd() *cobra.Command {
	var (
		opts   publishOptions
		useTUI bool
	)

	cmd := &cobra.Command{
		Use:   "review <batch-id>",
		Short: "Resume review of a suspended batch",
		Long: `Load a suspended batch and continue reviewing its outstanding corrections.

When nothing is left outstanding the batch is paid and removed from the
database. Deferring again keeps it suspended.`,
		Example: `  # See which batches are waiting
  punch batches list

  # Finish one and save the workbook
  punch review 3f2c9d1e -o payroll.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			id := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			batch, err := engine.Resume(ctx, store, id)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("No suspended batch %s; see: punch batches list", id), err)
				}
				return err
			}
			printBatchSummary(out, batch)

			rec, err := newReconciler(ctx, cfg, store, cfg.EngineConfig())
			if err != nil {
				return err
			}

			reviewer := newReviewer(useTUI, cmd.InOrStdin(), out)
			reviewed, report, err := reviewInterruptibly(ctx, cmd, rec, batch, reviewer)
			showReviewStats(out, reviewer)
			return settle(ctx, cmd, store, batch.ID, true, reviewed, report, err, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the payroll workbook to this .xlsx file")
	cmd.Flags().BoolVar(&opts.sheets, "sheets", false, "Publish the payroll report to Google Sheets")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Review corrections in the full-screen interface")

	return cmd
}
