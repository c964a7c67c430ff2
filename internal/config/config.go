package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/punchclock/internal/correction"
	"github.com/Veraticus/punchclock/internal/engine"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
	"github.com/Veraticus/punchclock/internal/payroll"
	"github.com/Veraticus/punchclock/internal/source"
)

// ErrInvalidConfig is returned when a configured value cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the typed view of the punch configuration file.
type Config struct {
	Logging  LoggingConfig
	Database DatabaseConfig
	Input    InputConfig
	Review   ReviewConfig
	Payroll  PayrollConfig
	Holidays []model.Holiday
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string
	Format string
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// InputConfig controls how documents are decoded.
type InputConfig struct {
	Encoding  string
	DateOrder normalize.DateOrder
}

// ReviewConfig controls the correction protocol.
type ReviewConfig struct {
	Policy    correction.ReleasePolicy
	MaxRounds int
}

// PayrollConfig holds pay parameters.
type PayrollConfig struct {
	Multipliers   map[model.SourceKind]decimal.Decimal
	NormalRate    decimal.Decimal
	HolidayFactor decimal.Decimal
	WindowStart   model.ClockTime
	WindowEnd     model.ClockTime
}

// DefaultDatabasePath returns the database location used when none is configured.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "punch.db"
	}
	return filepath.Join(home, ".local", "share", "punch", "punch.db")
}

// SetDefaults registers default values for every key Load reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("input.encoding", "utf-8")
	v.SetDefault("input.date_order", string(normalize.DayFirst))
	v.SetDefault("review.policy", string(correction.ReleaseBatch))
	v.SetDefault("review.max_rounds", engine.DefaultConfig().MaxRounds)
	v.SetDefault("payroll.normal_rate", "0")
	v.SetDefault("payroll.holiday_factor", "2")
	v.SetDefault("payroll.multipliers.text", "1.3")
	v.SetDefault("payroll.multipliers.spreadsheet", "1.2")
	v.SetDefault("payroll.premium_window.start", payroll.DefaultWindowStart.String())
	v.SetDefault("payroll.premium_window.end", payroll.DefaultWindowEnd.String())
}

// Load reads the global viper instance into a Config.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads v into a Config, applying defaults for unset keys.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Database: DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		Input:    InputConfig{Encoding: v.GetString("input.encoding")},
		Review:   ReviewConfig{MaxRounds: v.GetInt("review.max_rounds")},
	}

	var err error
	if cfg.Input.DateOrder, err = normalize.ParseDateOrder(v.GetString("input.date_order")); err != nil {
		return nil, fmt.Errorf("%w: input.date_order: %w", ErrInvalidConfig, err)
	}
	if cfg.Review.Policy, err = correction.ParseReleasePolicy(v.GetString("review.policy")); err != nil {
		return nil, fmt.Errorf("%w: review.policy: %w", ErrInvalidConfig, err)
	}
	if cfg.Payroll, err = loadPayroll(v); err != nil {
		return nil, err
	}
	if cfg.Holidays, err = loadHolidays(v); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadPayroll(v *viper.Viper) (PayrollConfig, error) {
	amount := func(key string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
		}
		return d, nil
	}
	clock := func(key string) (model.ClockTime, error) {
		c, err := normalize.ParseClock(v.GetString(key))
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
		}
		return c, nil
	}

	var (
		p   PayrollConfig
		err error
	)
	if p.NormalRate, err = amount("payroll.normal_rate"); err != nil {
		return p, err
	}
	if p.HolidayFactor, err = amount("payroll.holiday_factor"); err != nil {
		return p, err
	}
	p.Multipliers = make(map[model.SourceKind]decimal.Decimal, 2)
	for _, kind := range []model.SourceKind{model.SourceText, model.SourceSpreadsheet} {
		m, err := amount("payroll.multipliers." + string(kind))
		if err != nil {
			return p, err
		}
		p.Multipliers[kind] = m
	}
	if p.WindowStart, err = clock("payroll.premium_window.start"); err != nil {
		return p, err
	}
	if p.WindowEnd, err = clock("payroll.premium_window.end"); err != nil {
		return p, err
	}
	return p, nil
}

// loadHolidays reads holidays given either as a list of dates or as date/name maps.
func loadHolidays(v *viper.Viper) ([]model.Holiday, error) {
	raw := v.Get("holidays")
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: holidays must be a list", ErrInvalidConfig)
	}

	holidays := make([]model.Holiday, 0, len(items))
	for i, item := range items {
		var h model.Holiday
		switch val := item.(type) {
		case map[string]any:
			h.Date = dateString(val["date"])
			if name, ok := val["name"]; ok {
				h.Name = fmt.Sprint(name)
			}
		case string, time.Time:
			h.Date = dateString(val)
		default:
			return nil, fmt.Errorf("%w: holidays[%d] has unsupported type %T", ErrInvalidConfig, i, item)
		}
		date, err := normalize.ParseDate(h.Date, normalize.DayFirst)
		if err != nil {
			return nil, fmt.Errorf("%w: holidays[%d]: %w", ErrInvalidConfig, i, err)
		}
		h.Date = date
		holidays = append(holidays, h)
	}
	return holidays, nil
}

// dateString accepts both quoted dates and values the YAML decoder turned into timestamps.
func dateString(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Validate checks value ranges that parsing alone does not catch.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format must be console or json, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}
	if c.Review.MaxRounds <= 0 {
		return fmt.Errorf("%w: review.max_rounds must be positive", ErrInvalidConfig)
	}
	if c.Payroll.NormalRate.IsNegative() {
		return fmt.Errorf("%w: payroll.normal_rate must not be negative", ErrInvalidConfig)
	}
	if !c.Payroll.HolidayFactor.IsPositive() {
		return fmt.Errorf("%w: payroll.holiday_factor must be positive", ErrInvalidConfig)
	}
	for kind, m := range c.Payroll.Multipliers {
		if !m.IsPositive() {
			return fmt.Errorf("%w: payroll.multipliers.%s must be positive", ErrInvalidConfig, kind)
		}
	}
	if _, err := payroll.NewSplitter(c.Payroll.WindowStart, c.Payroll.WindowEnd); err != nil {
		return fmt.Errorf("%w: payroll.premium_window: %w", ErrInvalidConfig, err)
	}
	return nil
}

// CalculatorConfig converts the pay section for the calculator.
func (c *Config) CalculatorConfig() payroll.Config {
	cfg := payroll.DefaultConfig(c.Payroll.NormalRate)
	cfg.HolidayFactor = c.Payroll.HolidayFactor
	for kind, m := range c.Payroll.Multipliers {
		cfg.Multipliers[kind] = m
	}
	return cfg
}

// Splitter returns the configured premium window.
func (c *Config) Splitter() payroll.Splitter {
	return payroll.Splitter{WindowStart: c.Payroll.WindowStart, WindowEnd: c.Payroll.WindowEnd}
}

// EngineConfig returns the reconciler configuration.
func (c *Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Policy = c.Review.Policy
	cfg.MaxRounds = c.Review.MaxRounds
	cfg.Normalize.DateOrder = c.Input.DateOrder
	cfg.Grouper.DateOrder = c.Input.DateOrder
	return cfg
}

// SourceOptions returns the document decoding options.
func (c *Config) SourceOptions() source.Options {
	return source.Options{Encoding: c.Input.Encoding}
}
