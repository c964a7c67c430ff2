package model

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SourceKind identifies what kind of document a record was read from.
type SourceKind string

// Source kinds.
const (
	SourceText        SourceKind = "text"
	SourceSpreadsheet SourceKind = "spreadsheet"
)

// Deductions holds the optional per-record amounts subtracted from gross pay.
type Deductions struct {
	Inventory  decimal.Decimal `json:"inventory"`
	CashDrawer decimal.Decimal `json:"cash_drawer"`
	Advance    decimal.Decimal `json:"advance"`
}

// Total sums every deduction.
func (d Deductions) Total() decimal.Decimal {
	return d.Inventory.Add(d.CashDrawer).Add(d.Advance)
}

// Add combines two sets of deductions field by field.
func (d Deductions) Add(other Deductions) Deductions {
	return Deductions{
		Inventory:  d.Inventory.Add(other.Inventory),
		CashDrawer: d.CashDrawer.Add(other.CashDrawer),
		Advance:    d.Advance.Add(other.Advance),
	}
}

// AttendanceRecord is one employee's punches for one date.
type AttendanceRecord struct {
	CheckIn      *ClockTime          `json:"check_in,omitempty"`
	CheckOut     *ClockTime          `json:"check_out,omitempty"`
	Deductions   Deductions          `json:"deductions"`
	ID           string              `json:"id"`
	Employee     string              `json:"employee"`
	Date         string              `json:"date"` // YYYY-MM-DD
	State        ClassificationState `json:"state"`
	Source       SourceKind          `json:"source"`
	SourceLines  []int               `json:"source_lines,omitempty"`
	ExtraPunches []ClockTime         `json:"extra_punches,omitempty"`
	Reasons      []AmbiguityReason   `json:"reasons,omitempty"`
	DateFallback bool                `json:"date_fallback,omitempty"`
	Holiday      bool                `json:"holiday,omitempty"`
}

// RecordID derives the stable identity of the (employee, date) group.
func RecordID(employee, date string) string {
	data := fmt.Sprintf("%s:%s", strings.ToLower(strings.TrimSpace(employee)), date)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)[:16]
}

// PunchCount returns how many of check-in and check-out are present.
func (r AttendanceRecord) PunchCount() int {
	count := 0
	if r.CheckIn != nil {
		count++
	}
	if r.CheckOut != nil {
		count++
	}
	return count
}

// Captured returns the single punch of an incomplete record.
func (r AttendanceRecord) Captured() (ClockTime, bool) {
	switch {
	case r.CheckIn != nil && r.CheckOut == nil:
		return *r.CheckIn, true
	case r.CheckOut != nil && r.CheckIn == nil:
		return *r.CheckOut, true
	default:
		return 0, false
	}
}

// Clone returns a deep copy so pipeline stages never share mutable state.
func (r AttendanceRecord) Clone() AttendanceRecord {
	c := r
	if r.CheckIn != nil {
		c.CheckIn = ClockPtr(*r.CheckIn)
	}
	if r.CheckOut != nil {
		c.CheckOut = ClockPtr(*r.CheckOut)
	}
	c.SourceLines = append([]int(nil), r.SourceLines...)
	c.ExtraPunches = append([]ClockTime(nil), r.ExtraPunches...)
	c.Reasons = append([]AmbiguityReason(nil), r.Reasons...)
	return c
}

// FormatPunch renders an optional punch, using "--" when missing.
func FormatPunch(c *ClockTime) string {
	if c == nil {
		return "--"
	}
	return c.String()
}

// SheetRow is one row of a tabular attendance sheet before normalization.
type SheetRow struct {
	Employee   string
	Date       string
	CheckIn    string
	CheckOut   string
	Holiday    string
	Deductions Deductions
	Row        int
}
