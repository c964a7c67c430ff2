package payroll

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultMultipliers derive the premium rate from the normal rate per source kind.
// Spreadsheet and text documents have historically used different multipliers.
func DefaultMultipliers() map[model.SourceKind]decimal.Decimal {
	return map[model.SourceKind]decimal.Decimal{
		model.SourceSpreadsheet: decimal.RequireFromString("1.2"),
		model.SourceText:        decimal.RequireFromString("1.3"),
	}
}

// Config holds the pay parameters shared by every employee.
type Config struct {
	Multipliers       map[model.SourceKind]decimal.Decimal
	NormalRate        decimal.Decimal
	DefaultMultiplier decimal.Decimal
	HolidayFactor     decimal.Decimal
}

// DefaultConfig returns the default pay parameters for a normal hourly rate.
func DefaultConfig(normalRate decimal.Decimal) Config {
	return Config{
		NormalRate:        normalRate,
		Multipliers:       DefaultMultipliers(),
		DefaultMultiplier: decimal.RequireFromString("1.2"),
		HolidayFactor:     decimal.NewFromInt(2),
	}
}

// Calculator turns finalized records into hour breakdowns.
type Calculator struct {
	holidays *HolidayCalendar
	rates    map[string]model.EmployeeRate
	cfg      Config
	splitter Splitter
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithSplitter overrides the premium window.
func WithSplitter(s Splitter) Option {
	return func(c *Calculator) { c.splitter = s }
}

// WithHolidays sets the holiday calendar.
func WithHolidays(h *HolidayCalendar) Option {
	return func(c *Calculator) { c.holidays = h }
}

// WithEmployeeRates sets per-employee rate overrides.
func WithEmployeeRates(rates []model.EmployeeRate) Option {
	return func(c *Calculator) {
		for _, r := range rates {
			c.rates[rateKey(r.Name)] = r
		}
	}
}

// NewCalculator creates a calculator.
func NewCalculator(cfg Config, opts ...Option) (*Calculator, error) {
	if cfg.NormalRate.IsNegative() {
		return nil, fmt.Errorf("normal rate must not be negative: %s", cfg.NormalRate)
	}
	if cfg.HolidayFactor.IsZero() {
		cfg.HolidayFactor = decimal.NewFromInt(2)
	}
	if cfg.DefaultMultiplier.IsZero() {
		cfg.DefaultMultiplier = decimal.RequireFromString("1.2")
	}

	c := &Calculator{
		cfg:      cfg,
		splitter: DefaultSplitter(),
		rates:    make(map[string]model.EmployeeRate),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func rateKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Rates returns the normal and premium hourly rates for a record.
func (c *Calculator) Rates(rec model.AttendanceRecord) (normal, premium decimal.Decimal) {
	normal = c.cfg.NormalRate
	if r, ok := c.rates[rateKey(rec.Employee)]; ok {
		if r.NormalRate.IsPositive() {
			normal = r.NormalRate
		}
		if r.PremiumRate.IsPositive() {
			return normal, r.PremiumRate
		}
	}

	multiplier, ok := c.cfg.Multipliers[rec.Source]
	if !ok {
		multiplier = c.cfg.DefaultMultiplier
	}
	return normal, normal.Mul(multiplier)
}

// Compute produces the breakdown for one payable record.
func (c *Calculator) Compute(rec model.AttendanceRecord) (model.HourBreakdown, error) {
	if !rec.State.Payable() {
		return model.HourBreakdown{}, fmt.Errorf("record %s is not payable in state %s", rec.ID, rec.State)
	}
	if rec.CheckIn == nil || rec.CheckOut == nil {
		return model.HourBreakdown{}, fmt.Errorf("record %s is missing a punch", rec.ID)
	}

	split := c.splitter.Split(*rec.CheckIn, *rec.CheckOut)
	normalRate, premiumRate := c.Rates(rec)

	sixty := decimal.NewFromInt(60)
	gross := normalRate.Mul(decimal.NewFromInt(int64(split.NormalMinutes))).
		Add(premiumRate.Mul(decimal.NewFromInt(int64(split.PremiumMinutes)))).
		Div(sixty)

	holiday := rec.Holiday || c.holidays.IsHoliday(rec.Date)
	if holiday {
		gross = gross.Mul(c.cfg.HolidayFactor)
	}

	return model.HourBreakdown{
		RecordID:     rec.ID,
		Employee:     rec.Employee,
		Date:         rec.Date,
		CheckIn:      *rec.CheckIn,
		CheckOut:     *rec.CheckOut,
		TotalHours:   split.TotalHours(),
		NormalHours:  split.NormalHours(),
		PremiumHours: split.PremiumHours(),
		IsHoliday:    holiday,
		NormalRate:   normalRate,
		PremiumRate:  premiumRate,
		GrossPay:     gross,
		Deductions:   rec.Deductions,
		NetPay:       gross.Sub(rec.Deductions.Total()),
	}, nil
}

// Run computes every released record. Records that cannot be paid are reported as excluded.
func (c *Calculator) Run(released []model.AttendanceRecord, excluded []model.Excluded) *Report {
	report := &Report{Excluded: append([]model.Excluded(nil), excluded...)}
	for _, rec := range released {
		b, err := c.Compute(rec)
		if err != nil {
			slog.Warn("Record excluded from payroll", "employee", rec.Employee, "date", rec.Date, "error", err)
			report.Excluded = append(report.Excluded, model.Excluded{Record: rec, Reason: err.Error()})
			continue
		}
		report.Breakdowns = append(report.Breakdowns, b)
	}
	return report
}

// RoundCurrency rounds an amount to whole currency units for display.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
