package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchclock/internal/classification"
	"github.com/Veraticus/punchclock/internal/cli"
	"github.com/Veraticus/punchclock/internal/config"
	"github.com/Veraticus/punchclock/internal/engine"
	"github.com/Veraticus/punchclock/internal/payroll"
	"github.com/Veraticus/punchclock/internal/storage"
	"github.com/Veraticus/punchclock/internal/tui"
)

// loadConfig reads the typed configuration from viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newReconciler wires the pipeline stages from configuration and stored payroll data.
func newReconciler(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage, engineCfg engine.Config) (*engine.Reconciler, error) {
	calc, err := engine.LoadCalculator(ctx, store, cfg.CalculatorConfig(), cfg.Splitter(), cfg.Holidays)
	if err != nil {
		return nil, err
	}
	return engine.New(classification.NewDefaultDetector(), calc, engineCfg), nil
}

// newReviewer picks the terminal reviewer.
func newReviewer(useTUI bool, in io.Reader, out io.Writer) engine.Reviewer {
	if useTUI {
		return tui.New()
	}
	return cli.NewCLIPrompter(in, out)
}

// printReport writes per-employee totals as a table.
func printReport(w io.Writer, report *payroll.Report) {
	totals := report.Totals()
	if len(totals) == 0 {
		fmt.Fprintln(w, cli.SubtitleStyle.Render("No records reached payroll."))
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join([]string{
			cli.TableHeaderStyle.Render("EMPLOYEE"),
			cli.TableHeaderStyle.Render("DAYS"),
			cli.TableHeaderStyle.Render("HOURS"),
			cli.TableHeaderStyle.Render("PREMIUM"),
			cli.TableHeaderStyle.Render("GROSS"),
			cli.TableHeaderStyle.Render("NET"),
		}, "\t"))
		for _, t := range totals {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%s\t%s\n",
				t.Employee,
				t.Days,
				t.TotalHours,
				t.PremiumHours,
				cli.FormatMoney(t.GrossPay),
				cli.FormatMoney(t.NetPay),
			)
		}
		_ = tw.Flush()
		fmt.Fprintf(w, "\n%s %s\n", cli.BoldStyle.Render("Net total:"), cli.FormatMoney(report.NetTotal()))
	}

	if len(report.Excluded) > 0 {
		fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%d record(s) excluded from payroll", len(report.Excluded))))
		for _, ex := range report.Excluded {
			fmt.Fprintf(w, "  %s %s: %s\n", ex.Record.Employee, ex.Record.Date, cli.SubtleStyle.Render(ex.Reason))
		}
	}
}

// reportTitle names the published report after its source document.
func reportTitle(document string) string {
	base := filepath.Base(document)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// confirm asks a yes/no question on stdin unless force is set.
func confirm(cmd *cobra.Command, force bool, question string) bool {
	if force {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N) ", question)
	response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y")
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		if m := int(duration.Minutes()); m != 1 {
			return fmt.Sprintf("%d minutes ago", m)
		}
		return "1 minute ago"
	case duration < 24*time.Hour:
		if h := int(duration.Hours()); h != 1 {
			return fmt.Sprintf("%d hours ago", h)
		}
		return "1 hour ago"
	case duration < 7*24*time.Hour:
		if d := int(duration.Hours() / 24); d != 1 {
			return fmt.Sprintf("%d days ago", d)
		}
		return "yesterday"
	default:
		return t.Format("2006-01-02 15:04")
	}
}
