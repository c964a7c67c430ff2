package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/punchclock/internal/model"
)

// RecordBuilder builds attendance records for tests.
type RecordBuilder struct {
	rec model.AttendanceRecord
}

// NewRecord starts a text-sourced, unclassified record for employee on date (YYYY-MM-DD).
func NewRecord(employee, date string) *RecordBuilder {
	return &RecordBuilder{rec: model.AttendanceRecord{
		ID:       model.RecordID(employee, date),
		Employee: employee,
		Date:     date,
		Source:   model.SourceText,
		State:    model.StateUnclassified,
	}}
}

// In sets the check-in punch.
func (b *RecordBuilder) In(hour, minute int) *RecordBuilder {
	c := model.MustClockTime(hour, minute)
	b.rec.CheckIn = &c
	return b
}

// Out sets the check-out punch.
func (b *RecordBuilder) Out(hour, minute int) *RecordBuilder {
	c := model.MustClockTime(hour, minute)
	b.rec.CheckOut = &c
	return b
}

// State sets the classification state.
func (b *RecordBuilder) State(s model.ClassificationState) *RecordBuilder {
	b.rec.State = s
	return b
}

// Spreadsheet marks the record as coming from a spreadsheet.
func (b *RecordBuilder) Spreadsheet() *RecordBuilder {
	b.rec.Source = model.SourceSpreadsheet
	return b
}

// Holiday flags the record as worked on a holiday.
func (b *RecordBuilder) Holiday() *RecordBuilder {
	b.rec.Holiday = true
	return b
}

// Deductions sets the three deduction amounts.
func (b *RecordBuilder) Deductions(inventory, cash, advance int64) *RecordBuilder {
	b.rec.Deductions = model.Deductions{
		Inventory:  decimal.NewFromInt(inventory),
		CashDrawer: decimal.NewFromInt(cash),
		Advance:    decimal.NewFromInt(advance),
	}
	return b
}

// Build returns a copy of the record.
func (b *RecordBuilder) Build() model.AttendanceRecord {
	return b.rec.Clone()
}

// WellFormed is shorthand for a well-formed record between two whole hours.
func WellFormed(employee, date string, in, out int) model.AttendanceRecord {
	return NewRecord(employee, date).In(in, 0).Out(out, 0).State(model.StateWellFormed).Build()
}
