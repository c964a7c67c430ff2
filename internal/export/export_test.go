package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/payroll"
	"github.com/Veraticus/punchclock/internal/testutil"
)

func testReport(t *testing.T) *payroll.Report {
	t.Helper()
	calc, err := payroll.NewCalculator(payroll.DefaultConfig(decimal.NewFromInt(15000)))
	require.NoError(t, err)

	released := []model.AttendanceRecord{
		testutil.NewRecord("Ana", "2024-01-05").In(8, 0).Out(17, 0).State(model.StateWellFormed).Deductions(5000, 0, 10000).Build(),
		testutil.NewRecord("Ana", "2024-01-06").In(14, 0).Out(22, 0).State(model.StateWellFormed).Holiday().Build(),
		testutil.WellFormed("Luis", "2024-01-05", 8, 12),
	}
	excluded := []model.Excluded{{
		Record: testutil.NewRecord("Marta", "2024-01-05").State(model.StateAbsent).Build(),
		Reason: "absent: no punches recorded",
	}}
	return calc.Run(released, excluded)
}

func TestPayrollRows(t *testing.T) {
	rows := PayrollRows(testReport(t))
	require.Len(t, rows, 3)

	assert.Equal(t, []any{
		"Ana", "2024-01-05", "08:00", "17:00", "No",
		9.0, 9.0, 0.0,
		5000.0, 0.0, 10000.0,
		135000.0, 120000.0,
	}, rows[0])

	// 14:00-22:00 text source: 6 normal hours and 2 premium hours at 1.3, doubled.
	assert.Equal(t, "Yes", rows[1][4])
	assert.Equal(t, 2.0, rows[1][7])
	assert.Equal(t, 258000.0, rows[1][11])
}

func TestTotalsRows(t *testing.T) {
	rows := TotalsRows(testReport(t))
	require.Len(t, rows, 3)
	assert.Equal(t, "Ana", rows[0][0])
	assert.Equal(t, 2, rows[0][1])
	assert.Equal(t, 1, rows[0][2])
	assert.Equal(t, "TOTAL", rows[2][0])
	assert.Equal(t, 3, rows[2][1])
	assert.Equal(t, 453000.0, rows[2][6])
	assert.Equal(t, 423000.0, rows[2][8])
}

func TestExcludedRows(t *testing.T) {
	rows := ExcludedRows(testReport(t))
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"Marta", "2024-01-05", "ABSENT", "--", "--", "absent: no punches recorded"}, rows[0])
}

func TestWrite_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{PayrollSheet, TotalsSheet, ExcludedSheet}, f.GetSheetList())

	rows, err := f.GetRows(PayrollSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, PayrollHeaders, rows[0])
	assert.Equal(t, "Ana", rows[1][0])

	raw, err := f.GetRows(PayrollSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "120000", raw[1][12])

	excluded, err := f.GetRows(ExcludedSheet)
	require.NoError(t, err)
	require.Len(t, excluded, 2)
	assert.Equal(t, "absent: no punches recorded", excluded[1][5])
}

func TestWrite_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &payroll.Report{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(PayrollSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nomina.xlsx")
	require.NoError(t, WriteFile(path, testReport(t)))
	assert.FileExists(t, path)
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "marcaciones enero", want: "marcaciones enero"},
		{in: "a/b:c", want: "a_b_c"},
		{in: "  ", want: "Payroll"},
		{in: "nómina quincenal de trabajadores 2024", want: "nómina quincenal de trabajadore"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SheetName(tt.in), tt.in)
	}
}
