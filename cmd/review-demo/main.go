// Package main runs the full-screen reviewer against a built-in sample document.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/punchclock/internal/classification"
	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/engine"
	"github.com/Veraticus/punchclock/internal/payroll"
	"github.com/Veraticus/punchclock/internal/source"
	"github.com/Veraticus/punchclock/internal/tui"
	"github.com/Veraticus/punchclock/internal/tui/themes"
)

var sample = []string{
	"Ana Gomez 05/01/2024 08:00 17:00",
	"Luis Mora 05/01/2024 08:00",
	"Marta Diaz 05/01/2024 23:00 02:00",
	"Pedro Ruiz 05/01/2024 09:00 09:03",
	"Ana Gomez 06/01/2024 14:00 22:30",
	"Luis Mora 06/01/2024 17:00",
}

func main() {
	theme := flag.String("theme", "default", "color theme (default, catppuccin-mocha)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	calc, err := payroll.NewCalculator(payroll.DefaultConfig(decimal.NewFromInt(15000)))
	if err != nil {
		log.Fatal(err)
	}
	rec := engine.New(classification.NewDefaultDetector(), calc, engine.DefaultConfig())
	reviewer := tui.New(tui.WithTheme(themes.ByName(*theme)), tui.WithAltScreen(true))

	_, report, err := rec.Reconcile(ctx, source.FromLines("sample.txt", sample), reviewer)
	switch {
	case errors.Is(err, common.ErrBatchIncomplete):
		fmt.Println("Review deferred; nothing paid.")
		return
	case errors.Is(err, common.ErrReviewAbandoned), errors.Is(err, context.Canceled):
		fmt.Println("Review abandoned.")
		return
	case err != nil:
		log.Fatal(err)
	}

	for _, t := range report.Totals() {
		fmt.Printf("%-12s %6.2fh  %s\n", t.Employee, t.TotalHours, payroll.RoundCurrency(t.NetPay).StringFixed(0))
	}
	for _, ex := range report.Excluded {
		fmt.Printf("excluded %s %s: %s\n", ex.Record.Employee, ex.Record.Date, ex.Reason)
	}
	stats := reviewer.GetCompletionStats()
	fmt.Printf("%d corrected, %d skipped in %s\n", stats.Corrected, stats.Skipped, stats.Duration)
}
