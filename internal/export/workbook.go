package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/punchclock/internal/payroll"
)

// Sheet titles in the exported workbook.
const (
	PayrollSheet  = "Payroll"
	TotalsSheet   = "Totals"
	ExcludedSheet = "Excluded"
)

// moneyFormat is excelize's built-in "#,##0" number format.
const moneyFormat = 3

// Workbook builds an xlsx workbook for a report. Callers must Close the file.
func Workbook(r *payroll.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), PayrollSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name payroll sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	sheets := []struct {
		rows       [][]any
		name       string
		headers    []string
		moneyFrom  int
		moneyUntil int
	}{
		{name: PayrollSheet, headers: PayrollHeaders, rows: PayrollRows(r), moneyFrom: 9, moneyUntil: 13},
		{name: TotalsSheet, headers: TotalsHeaders, rows: TotalsRows(r), moneyFrom: 7, moneyUntil: 9},
		{name: ExcludedSheet, headers: ExcludedHeaders, rows: ExcludedRows(r)},
	}

	for _, s := range sheets {
		if s.name != PayrollSheet {
			if _, err := f.NewSheet(s.name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("failed to create sheet %s: %w", s.name, err)
			}
		}
		if err := writeTable(f, s.name, s.headers, s.rows, styles); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write sheet %s: %w", s.name, err)
		}
		if s.moneyFrom > 0 && len(s.rows) > 0 {
			if err := applyColumnStyle(f, s.name, s.moneyFrom, s.moneyUntil, len(s.rows)+1, styles.money); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}

	f.SetActiveSheet(0)
	slog.Debug("Built payroll workbook",
		"paid", len(r.Breakdowns),
		"excluded", len(r.Excluded))
	return f, nil
}

// Write streams the workbook for r to w.
func Write(w io.Writer, r *payroll.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook for r at path.
func WriteFile(path string, r *payroll.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	slog.Info("Payroll workbook written", "path", path)
	return nil
}

type styles struct {
	header int
	money  int
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create money style: %w", err)
	}
	return styles{header: header, money: money}, nil
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any, st styles) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, st.header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 16)
}

func applyColumnStyle(f *excelize.File, sheet string, fromCol, toCol, lastRow, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, 2)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, lastRow)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		return fmt.Errorf("failed to style %s!%s:%s: %w", sheet, from, to, err)
	}
	return nil
}
