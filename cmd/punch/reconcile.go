package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/punchclock/internal/cli"
	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/config"
	"github.com/Veraticus/punchclock/internal/engine"
	"github.com/Veraticus/punchclock/internal/export"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/payroll"
	"github.com/Veraticus/punchclock/internal/service"
	"github.com/Veraticus/punchclock/internal/sheets"
	"github.com/Veraticus/punchclock/internal/source"
	"github.com/Veraticus/punchclock/internal/storage"
)

// publishOptions says where a finished payroll report goes besides the terminal.
type publishOptions struct {
	output string
	sheets bool
}

func reconcileCmd() *cobra.Command {
	var (
		opts     publishOptions
		useTUI   bool
		noReview bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile <file>",
		Short: "Reconcile an attendance document and compute payroll",
		Long: `Read an attendance document, group its punches into daily records, and
ask for corrections to records that are incomplete or implausible.

Supported documents: chat exports and text logs (.txt, .log, .xz), HTML
chat exports (.html), and spreadsheets (.xlsx, .xls, .csv).

Deferring the review suspends the batch; resume it later with
"punch review <batch-id>".`,
		Example: `  # Reconcile a chat export and save the payroll workbook
  punch reconcile chat.txt -o payroll.xlsx

  # Review in the full-screen interface and publish to Google Sheets
  punch reconcile timesheet.xlsx --tui --sheets

  # Pay confirmed records now and leave the rest for later
  punch reconcile chat.txt --policy per-record`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, args[0], opts, useTUI, noReview)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the payroll workbook to this .xlsx file")
	cmd.Flags().BoolVar(&opts.sheets, "sheets", false, "Publish the payroll report to Google Sheets")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Review corrections in the full-screen interface")
	cmd.Flags().BoolVar(&noReview, "no-review", false, "Suspend the batch without reviewing")
	cmd.Flags().String("policy", "", "Release policy: batch or per-record")
	cmd.Flags().String("encoding", "", "Text encoding: utf-8, windows-1252 or latin1")
	cmd.Flags().String("date-order", "", "Date order for ambiguous dates: day-first or month-first")

	_ = viper.BindPFlag("review.policy", cmd.Flags().Lookup("policy"))
	_ = viper.BindPFlag("input.encoding", cmd.Flags().Lookup("encoding"))
	_ = viper.BindPFlag("input.date_order", cmd.Flags().Lookup("date-order"))

	return cmd
}

func runReconcile(cmd *cobra.Command, path string, opts publishOptions, useTUI, noReview bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	doc, err := source.Open(path, cfg.SourceOptions())
	if err != nil {
		return documentError(path, err)
	}

	rec, err := newReconciler(ctx, cfg, store, cfg.EngineConfig())
	if err != nil {
		return err
	}

	batch, err := rec.Ingest(ctx, doc)
	if err != nil {
		return documentError(path, err)
	}
	printBatchSummary(out, batch)

	if noReview && len(batch.Outstanding()) > 0 {
		return suspend(ctx, out, store, batch)
	}

	reviewer := newReviewer(useTUI, cmd.InOrStdin(), out)
	reviewed, report, err := reviewInterruptibly(ctx, cmd, rec, batch, reviewer)
	showReviewStats(out, reviewer)
	return settle(ctx, cmd, store, batch.ID, false, reviewed, report, err, opts)
}

// reviewInterruptibly runs the review under a context that Ctrl-C cancels.
// A cancelled review abandons the batch, so settle discards it.
func reviewInterruptibly(ctx context.Context, cmd *cobra.Command, rec *engine.Reconciler,
	batch *engine.Batch, reviewer engine.Reviewer,
) (*engine.Batch, *payroll.Report, error) {
	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(),
		fmt.Sprintf("Batch %s is abandoned; nothing will be paid.", batch.ID))
	reviewCtx, stop := interrupts.Watch(ctx)
	defer stop()
	return rec.Review(reviewCtx, batch, reviewer)
}

// documentError turns unreadable-document failures into messages for the operator.
func documentError(path string, err error) error {
	switch {
	case errors.Is(err, common.ErrUnsupportedFile):
		return common.NewUserError(fmt.Sprintf("%s is not a supported document type", path), err)
	case errors.Is(err, common.ErrUndecodable):
		return common.NewUserError(fmt.Sprintf("%s could not be decoded; try --encoding windows-1252", path), err)
	case errors.Is(err, common.ErrSchemaInvalid):
		return common.NewUserError(fmt.Sprintf("%s: %v", path, err), err)
	case errors.Is(err, common.ErrExtractionEmpty):
		return common.NewUserError(fmt.Sprintf("No attendance found in %s", path), err)
	default:
		return err
	}
}

func printBatchSummary(w io.Writer, batch *engine.Batch) {
	counts := batch.Counts()
	fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("Batch %s: %s", batch.ID, batch.Document)))
	parts := make([]string, 0, len(summaryStates))
	for _, state := range summaryStates {
		parts = append(parts, fmt.Sprintf("%d %s", counts[state], cli.FormatState(state)))
	}
	fmt.Fprintf(w, "  %d record(s): %s\n", len(batch.Records), strings.Join(parts, ", "))
	if batch.Stats.Unmatched > 0 {
		fmt.Fprintln(w, cli.SubtleStyle.Render(fmt.Sprintf("  %d line(s) without a date or time", batch.Stats.Unmatched)))
	}
}

var summaryStates = []model.ClassificationState{
	model.StateWellFormed,
	model.StateIncomplete,
	model.StateAmbiguous,
	model.StateAbsent,
	model.StateCorrected,
}

func showReviewStats(w io.Writer, reviewer engine.Reviewer) {
	if p, ok := reviewer.(*cli.Prompter); ok {
		p.ShowCompletion()
		return
	}
	stats := reviewer.GetCompletionStats()
	if stats.TotalRequests == 0 {
		return
	}
	fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Reviewed %d request(s): %d corrected, %d skipped in %s",
		stats.TotalRequests, stats.Corrected, stats.Skipped, stats.Duration.Round(time.Second))))
}

func suspend(ctx context.Context, w io.Writer, store service.Storage, batch *engine.Batch) error {
	if err := engine.Suspend(ctx, store, batch, time.Now); err != nil {
		return err
	}
	fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Batch %s suspended with %d record(s) awaiting review.",
		batch.ID, len(batch.Outstanding()))))
	fmt.Fprintf(w, "  Resume with: punch review %s\n", batch.ID)
	return nil
}

// settle acts on the outcome of a review: suspend, discard, or publish payroll.
// stored reports whether the batch already lives in the database.
func settle(ctx context.Context, cmd *cobra.Command, store *storage.SQLiteStorage,
	batchID string, stored bool, batch *engine.Batch, report *payroll.Report, reviewErr error, opts publishOptions,
) error {
	out := cmd.OutOrStdout()

	switch {
	case reviewErr == nil:
	case errors.Is(reviewErr, common.ErrBatchIncomplete) && batch != nil:
		return suspend(ctx, out, store, batch)
	case errors.Is(reviewErr, common.ErrReviewAbandoned) || errors.Is(reviewErr, context.Canceled):
		if stored {
			if err := engine.Discard(context.WithoutCancel(ctx), store, batchID); err != nil {
				common.LogError(err, "Failed to delete suspended batch", common.Fields{"batch": batchID})
			}
		}
		return common.NewUserError(fmt.Sprintf("Review abandoned; batch %s discarded and nothing was paid.", batchID), reviewErr)
	default:
		if batch != nil {
			if err := engine.Suspend(context.WithoutCancel(ctx), store, batch, time.Now); err != nil {
				common.LogError(err, "Failed to suspend batch after review error", common.Fields{"batch": batchID})
			} else {
				fmt.Fprintf(out, "Batch %s kept; resume with: punch review %s\n", batchID, batchID)
			}
		}
		return reviewErr
	}

	fmt.Fprintln(out)
	printReport(out, report)

	if opts.output != "" {
		if err := export.WriteFile(opts.output, report); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess("Wrote "+opts.output))
	}

	if opts.sheets {
		if err := publishSheets(ctx, reportTitle(batch.Document), report); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess("Published to Google Sheets"))
	}

	// Per-record release pays what was decided; the rest waits for another session.
	if rest := batch.Remainder(); rest != nil {
		return suspend(ctx, out, store, rest)
	}
	if stored {
		if err := engine.Discard(ctx, store, batchID); err != nil {
			return err
		}
	}
	return nil
}

func publishSheets(ctx context.Context, title string, report *payroll.Report) error {
	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured; run: punch auth sheets", err)
	}
	writer, err := sheets.NewWriter(ctx, *sheetsCfg, common.Logger(ctx))
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}
	if err := writer.Write(ctx, title, report); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	return nil
}
