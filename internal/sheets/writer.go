package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/export"
	"github.com/Veraticus/punchclock/internal/payroll"
	"github.com/Veraticus/punchclock/internal/service"
)

// Writer implements service.ReportWriter for Google Sheets.
type Writer struct {
	api    backend
	logger *slog.Logger
	config Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	api, err := newGoogleBackend(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return newWriter(api, config, logger), nil
}

func newWriter(api backend, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Writer{api: api, config: config, logger: logger}
}

type tab struct {
	name    string
	headers []string
	rows    [][]any
}

func tabsFor(title string, report *payroll.Report) []tab {
	payrollTab := export.PayrollSheet
	if title != "" {
		payrollTab = export.SheetName(title)
	}
	return []tab{
		{name: payrollTab, headers: export.PayrollHeaders, rows: export.PayrollRows(report)},
		{name: export.TotalsSheet, headers: export.TotalsHeaders, rows: export.TotalsRows(report)},
		{name: export.ExcludedSheet, headers: export.ExcludedHeaders, rows: export.ExcludedRows(report)},
	}
}

// Write publishes the report. The payroll tab is named after title; each tab is
// cleared and rewritten so publishing the same batch twice is idempotent.
func (w *Writer) Write(ctx context.Context, title string, report *payroll.Report) error {
	tabs := tabsFor(title, report)
	w.logger.Info("starting report publication",
		"title", title,
		"paid", len(report.Breakdowns),
		"excluded", len(report.Excluded))

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var (
		spreadsheetID string
		sheetIDs      map[string]int64
	)
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheetID, sheetIDs, err = w.getOrCreateSpreadsheet(ctx, tabs)
		return err
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, t := range tabs {
		values := make([][]any, 0, len(t.rows)+1)
		header := make([]any, len(t.headers))
		for i, h := range t.headers {
			header[i] = h
		}
		values = append(values, header)
		values = append(values, t.rows...)

		err := common.WithRetry(ctx, func() error {
			if err := w.api.Clear(ctx, spreadsheetID, quoteRange(t.name, "A:Z")); err != nil {
				return fmt.Errorf("failed to clear tab %s: %w", t.name, err)
			}
			return w.writeData(ctx, spreadsheetID, t.name, values)
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write tab %s: %w", t.name, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.api.BatchUpdate(ctx, spreadsheetID, formatRequests(tabs, sheetIDs))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report publication completed",
		"spreadsheet_id", spreadsheetID,
		"tabs", len(tabs))
	return nil
}

// getOrCreateSpreadsheet opens the configured spreadsheet, adding any missing tabs,
// or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context, tabs []tab) (string, map[string]int64, error) {
	names := make([]string, len(tabs))
	for i, t := range tabs {
		names[i] = t.name
	}

	if w.config.SpreadsheetID == "" {
		id, url, err := w.api.Create(ctx, w.config.SpreadsheetName, w.config.TimeZone, names)
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		w.logger.Info("created new spreadsheet", "id", id, "url", url)
		// Later retries and writes reuse it instead of creating another.
		w.config.SpreadsheetID = id
	}

	existing, err := w.api.Tabs(ctx, w.config.SpreadsheetID)
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}
	for _, name := range names {
		if _, ok := existing[name]; ok {
			continue
		}
		sheetID, err := w.api.AddTab(ctx, w.config.SpreadsheetID, name)
		if err != nil {
			return "", nil, fmt.Errorf("unable to add tab %s: %w", name, err)
		}
		existing[name] = sheetID
	}
	return w.config.SpreadsheetID, existing, nil
}

// writeData writes values in batches to avoid API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tabName string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		rng := quoteRange(tabName, fmt.Sprintf("A%d", i+1))
		if err := w.api.Update(ctx, spreadsheetID, rng, values[i:end]); err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}
		w.logger.Debug("wrote batch", "tab", tabName, "start_row", i+1, "rows", end-i)
	}
	return nil
}

func quoteRange(tabName, cells string) string {
	return fmt.Sprintf("'%s'!%s", tabName, cells)
}

// formatRequests bolds and freezes each header row and sizes the columns.
func formatRequests(tabs []tab, sheetIDs map[string]int64) []*sheets.Request {
	var requests []*sheets.Request
	for _, t := range tabs {
		sheetID, ok := sheetIDs[t.name]
		if !ok {
			continue
		}
		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   int64(len(t.headers)),
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        sheetID,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "COLUMNS",
						StartIndex: 0,
						EndIndex:   int64(len(t.headers)),
					},
				},
			},
		)
	}
	return requests
}
