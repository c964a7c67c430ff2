package model

import "github.com/shopspring/decimal"

// HourBreakdown is the payroll result computed for one finalized record.
type HourBreakdown struct {
	NormalRate   decimal.Decimal
	PremiumRate  decimal.Decimal
	GrossPay     decimal.Decimal
	NetPay       decimal.Decimal
	Deductions   Deductions
	RecordID     string
	Employee     string
	Date         string
	CheckIn      ClockTime
	CheckOut     ClockTime
	TotalHours   float64
	NormalHours  float64
	PremiumHours float64
	IsHoliday    bool
}

// Excluded describes a record that did not reach payroll and why.
type Excluded struct {
	Reason string
	Record AttendanceRecord
}

// Holiday is a calendar date paid at double rate.
type Holiday struct {
	Date string
	Name string
}

// EmployeeRate overrides the default hourly rates for one employee.
// A zero PremiumRate means "derive from the normal rate".
type EmployeeRate struct {
	NormalRate  decimal.Decimal
	PremiumRate decimal.Decimal
	Name        string
}
