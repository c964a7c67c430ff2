package payroll

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/shopspring/decimal"
)

// Report is the payroll outcome for one batch.
type Report struct {
	Breakdowns []model.HourBreakdown
	Excluded   []model.Excluded
}

// EmployeeTotal sums one employee's breakdowns.
type EmployeeTotal struct {
	GrossPay     decimal.Decimal
	Deductions   decimal.Decimal
	NetPay       decimal.Decimal
	Employee     string
	TotalHours   float64
	NormalHours  float64
	PremiumHours float64
	Days         int
	Holidays     int
}

// Totals aggregates breakdowns per employee, sorted by name.
func (r *Report) Totals() []EmployeeTotal {
	index := make(map[string]int)
	var totals []EmployeeTotal
	for _, b := range r.Breakdowns {
		key := strings.ToLower(b.Employee)
		i, ok := index[key]
		if !ok {
			i = len(totals)
			index[key] = i
			totals = append(totals, EmployeeTotal{Employee: b.Employee})
		}
		t := &totals[i]
		t.Days++
		if b.IsHoliday {
			t.Holidays++
		}
		t.TotalHours += b.TotalHours
		t.NormalHours += b.NormalHours
		t.PremiumHours += b.PremiumHours
		t.GrossPay = t.GrossPay.Add(b.GrossPay)
		t.Deductions = t.Deductions.Add(b.Deductions.Total())
		t.NetPay = t.NetPay.Add(b.NetPay)
	}
	slices.SortFunc(totals, func(a, b EmployeeTotal) int {
		return cmp.Compare(strings.ToLower(a.Employee), strings.ToLower(b.Employee))
	})
	return totals
}

// NetTotal sums net pay across the report.
func (r *Report) NetTotal() decimal.Decimal {
	total := decimal.Zero
	for _, b := range r.Breakdowns {
		total = total.Add(b.NetPay)
	}
	return total
}
