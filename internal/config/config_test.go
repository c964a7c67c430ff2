package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/punchclock/internal/correction"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, DefaultDatabasePath(), cfg.Database.Path)
	assert.Equal(t, normalize.DayFirst, cfg.Input.DateOrder)
	assert.Equal(t, correction.ReleaseBatch, cfg.Review.Policy)
	assert.Equal(t, 20, cfg.Review.MaxRounds)
	assert.True(t, cfg.Payroll.NormalRate.IsZero())
	assert.Equal(t, "1.3", cfg.Payroll.Multipliers[model.SourceText].String())
	assert.Equal(t, "1.2", cfg.Payroll.Multipliers[model.SourceSpreadsheet].String())
	assert.Equal(t, model.MustClockTime(20, 0), cfg.Payroll.WindowStart)
	assert.Equal(t, model.MustClockTime(22, 0), cfg.Payroll.WindowEnd)
	assert.Empty(t, cfg.Holidays)
}

func TestLoadFrom_YAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
logging:
  level: debug
  format: json
database:
  path: /tmp/punch-test.db
input:
  encoding: windows-1252
  date_order: mdy
review:
  policy: per-record
  max_rounds: 3
payroll:
  normal_rate: "15000"
  holiday_factor: "2.5"
  multipliers:
    text: "1.25"
  premium_window:
    start: "19:00"
    end: "23:00"
holidays:
  - 2024-01-01
  - date: 2024-05-01
    name: Dia del Trabajo
`)))

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/punch-test.db", cfg.Database.Path)
	assert.Equal(t, normalize.MonthFirst, cfg.Input.DateOrder)
	assert.Equal(t, correction.ReleasePerRecord, cfg.Review.Policy)
	assert.Equal(t, 3, cfg.Review.MaxRounds)
	assert.True(t, cfg.Payroll.NormalRate.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, "1.25", cfg.Payroll.Multipliers[model.SourceText].String())
	assert.Equal(t, model.MustClockTime(19, 0), cfg.Payroll.WindowStart)
	assert.Equal(t, []model.Holiday{
		{Date: "2024-01-01"},
		{Date: "2024-05-01", Name: "Dia del Trabajo"},
	}, cfg.Holidays)

	calc := cfg.CalculatorConfig()
	assert.Equal(t, "2.5", calc.HolidayFactor.String())
	assert.Equal(t, "1.25", calc.Multipliers[model.SourceText].String())
	assert.Equal(t, "1.2", calc.Multipliers[model.SourceSpreadsheet].String())

	eng := cfg.EngineConfig()
	assert.Equal(t, correction.ReleasePerRecord, eng.Policy)
	assert.Equal(t, normalize.MonthFirst, eng.Normalize.DateOrder)
	assert.Equal(t, normalize.MonthFirst, eng.Grouper.DateOrder)

	assert.Equal(t, "windows-1252", cfg.SourceOptions().Encoding)
	assert.Equal(t, model.MustClockTime(23, 0), cfg.Splitter().WindowEnd)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"bad policy", "review.policy", "whenever"},
		{"bad date order", "input.date_order", "ydm"},
		{"bad rate", "payroll.normal_rate", "lots"},
		{"negative rate", "payroll.normal_rate", "-1"},
		{"zero holiday factor", "payroll.holiday_factor", "0"},
		{"zero multiplier", "payroll.multipliers.text", "0"},
		{"inverted window", "payroll.premium_window.start", "23:00"},
		{"bad window", "payroll.premium_window.end", "late"},
		{"bad format", "logging.format", "xml"},
		{"zero rounds", "review.max_rounds", 0},
		{"bad holiday", "holidays", []any{"someday"}},
		{"holidays not a list", "holidays", "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := LoadFrom(v)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadFrom_Env(t *testing.T) {
	t.Setenv("PUNCH_REVIEW_POLICY", "per-record")

	v := viper.New()
	v.SetEnvPrefix("PUNCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, correction.ReleasePerRecord, cfg.Review.Policy)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PUNCH_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/punch.db", filepath.Join(home, "punch.db")},
		{"$PUNCH_TEST_DIR/punch.db", "/data/punch.db"},
		{"/abs/punch.db", "/abs/punch.db"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in), tt.in)
	}
}

func TestLoadSheetsConfigFrom(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_TOKEN_FILE", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(key, "")
	}

	t.Run("viper values", func(t *testing.T) {
		v := viper.New()
		v.Set("sheets.service_account_path", "/keys/sa.json")
		v.Set("sheets.spreadsheet_name", "Nomina")
		v.Set("sheets.formatting", false)

		cfg, err := LoadSheetsConfigFrom(v)
		require.NoError(t, err)
		assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "Nomina", cfg.SpreadsheetName)
		assert.False(t, cfg.EnableFormatting)
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "token")

		cfg, err := LoadSheetsConfigFrom(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "id", cfg.ClientID)
		assert.True(t, cfg.EnableFormatting)
	})

	t.Run("no credentials", func(t *testing.T) {
		_, err := LoadSheetsConfigFrom(viper.New())
		assert.Error(t, err)
	})
}
