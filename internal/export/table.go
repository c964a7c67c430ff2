// Package export renders payroll reports as tables for workbooks and spreadsheets.
package export

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/payroll"
)

// PayrollHeaders are the columns of the payroll table.
var PayrollHeaders = []string{
	"Employee", "Date", "CheckIn", "CheckOut", "IsHoliday",
	"HoursWorked", "NormalHours", "PremiumHours",
	"Descuento Inventario", "Descuento Caja", "Retiro",
	"GrossPay", "NetPay",
}

// ExcludedHeaders are the columns of the excluded-records table.
var ExcludedHeaders = []string{"Employee", "Date", "State", "CheckIn", "CheckOut", "Reason"}

// TotalsHeaders are the columns of the per-employee totals table.
var TotalsHeaders = []string{"Employee", "Days", "Holidays", "HoursWorked", "NormalHours", "PremiumHours", "GrossPay", "Deductions", "NetPay"}

// PayrollRows returns one row per breakdown, in report order.
func PayrollRows(r *payroll.Report) [][]any {
	rows := make([][]any, 0, len(r.Breakdowns))
	for _, b := range r.Breakdowns {
		rows = append(rows, []any{
			b.Employee,
			b.Date,
			b.CheckIn.String(),
			b.CheckOut.String(),
			yesNo(b.IsHoliday),
			hours(b.TotalHours),
			hours(b.NormalHours),
			hours(b.PremiumHours),
			money(b.Deductions.Inventory),
			money(b.Deductions.CashDrawer),
			money(b.Deductions.Advance),
			money(b.GrossPay),
			money(b.NetPay),
		})
	}
	return rows
}

// ExcludedRows returns one row per record that did not reach payroll.
func ExcludedRows(r *payroll.Report) [][]any {
	rows := make([][]any, 0, len(r.Excluded))
	for _, ex := range r.Excluded {
		rows = append(rows, []any{
			ex.Record.Employee,
			ex.Record.Date,
			string(ex.Record.State),
			model.FormatPunch(ex.Record.CheckIn),
			model.FormatPunch(ex.Record.CheckOut),
			ex.Reason,
		})
	}
	return rows
}

// TotalsRows returns one row per employee followed by a grand total row.
func TotalsRows(r *payroll.Report) [][]any {
	totals := r.Totals()
	rows := make([][]any, 0, len(totals)+1)

	var grand payroll.EmployeeTotal
	for _, t := range totals {
		rows = append(rows, []any{
			t.Employee, t.Days, t.Holidays,
			hours(t.TotalHours), hours(t.NormalHours), hours(t.PremiumHours),
			money(t.GrossPay), money(t.Deductions), money(t.NetPay),
		})
		grand.Days += t.Days
		grand.Holidays += t.Holidays
		grand.TotalHours += t.TotalHours
		grand.NormalHours += t.NormalHours
		grand.PremiumHours += t.PremiumHours
		grand.GrossPay = grand.GrossPay.Add(t.GrossPay)
		grand.Deductions = grand.Deductions.Add(t.Deductions)
		grand.NetPay = grand.NetPay.Add(t.NetPay)
	}
	rows = append(rows, []any{
		"TOTAL", grand.Days, grand.Holidays,
		hours(grand.TotalHours), hours(grand.NormalHours), hours(grand.PremiumHours),
		money(grand.GrossPay), money(grand.Deductions), money(grand.NetPay),
	})
	return rows
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// hours rounds to two decimals for display.
func hours(h float64) float64 {
	f, _ := decimal.NewFromFloat(h).Round(2).Float64()
	return f
}

// money rounds to whole currency units for display.
func money(d decimal.Decimal) float64 {
	f, _ := payroll.RoundCurrency(d).Float64()
	return f
}

// SheetName makes a document name safe to use as a worksheet title.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "Payroll"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
