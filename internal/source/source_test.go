package source

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

func TestRead_Text(t *testing.T) {
	doc, err := Read(bytes.NewReader([]byte("\xEF\xBB\xBFAna\r\n05/01/2024 08:00\r\n\r\n")), "report.txt", Options{})
	require.NoError(t, err)
	assert.Equal(t, model.SourceText, doc.Kind)
	assert.Equal(t, []string{"Ana", "05/01/2024 08:00", ""}, doc.Lines)
}

func TestRead_Encodings(t *testing.T) {
	// "Mié" in Windows-1252.
	legacy := []byte{'M', 'i', 0xE9}

	_, err := Read(bytes.NewReader(legacy), "legacy.txt", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUndecodable)

	doc, err := Read(bytes.NewReader(legacy), "legacy.txt", Options{Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mié"}, doc.Lines)

	_, err = Read(bytes.NewReader([]byte("abc\x00def")), "binary.txt", Options{})
	assert.ErrorIs(t, err, common.ErrUndecodable)

	_, err = Read(bytes.NewReader([]byte("abc")), "x.txt", Options{Encoding: "ebcdic"})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestRead_XZ(t *testing.T) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte("Ana\n05/01/2024 08:00 17:00\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	doc, err := Read(&buf, "report.txt.xz", Options{})
	require.NoError(t, err)
	assert.Equal(t, "report.txt.xz", doc.Name)
	assert.Equal(t, []string{"Ana", "05/01/2024 08:00 17:00"}, doc.Lines)

	_, err = Read(bytes.NewReader([]byte("not xz")), "broken.txt.xz", Options{})
	assert.ErrorIs(t, err, common.ErrUndecodable)
}

func TestRead_CSV(t *testing.T) {
	data := "Empleado;Fecha;Entrada;Salida;Descuento Caja;Retiro;Festivo\n" +
		"Ana;05/01/2024;08:00;17:00;1.500;;\n" +
		"Luis;05/01/2024;08:00;;;2500,50;si\n" +
		";;;;;;\n"

	doc, err := Read(bytes.NewReader([]byte(data)), "sheet.csv", Options{})
	require.NoError(t, err)
	assert.Equal(t, model.SourceSpreadsheet, doc.Kind)
	require.Len(t, doc.Rows, 2)

	assert.Equal(t, "Ana", doc.Rows[0].Employee)
	assert.Equal(t, 2, doc.Rows[0].Row)
	assert.True(t, decimal.NewFromInt(1500).Equal(doc.Rows[0].Deductions.CashDrawer))
	assert.Equal(t, "", doc.Rows[1].CheckOut)
	assert.True(t, decimal.RequireFromString("2500.50").Equal(doc.Rows[1].Deductions.Advance))
	assert.Equal(t, "si", doc.Rows[1].Holiday)
}

func TestMapRows_SchemaError(t *testing.T) {
	_, err := MapRows([][]string{
		{"Nombre", "Fecha", "Hora"},
		{"Ana", "05/01/2024", "08:00"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchemaInvalid)

	var schemaErr *common.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"Entrada", "Salida"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "Entrada, Salida")
}

func TestMapRows_HeaderBelowTitle(t *testing.T) {
	rows, err := MapRows([][]string{
		{"Reporte de asistencia - enero"},
		{},
		{"Employee", "Date", "Check-in", "Check-out", "Inventario"},
		{"Ana", "45296", "0.3333333", "0.7083333", "$ 1,000"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Row)
	assert.Equal(t, "2024-01-05", rows[0].Date)
	assert.Equal(t, "08:00", rows[0].CheckIn)
	assert.Equal(t, "17:00", rows[0].CheckOut)
	assert.True(t, decimal.NewFromInt(1000).Equal(rows[0].Deductions.Inventory))
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Empleado", "Fecha", "Entrada", "Salida"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Ana", "05/01/2024", "08:00", "17:00"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	doc, err := Read(buf, "sheet.xlsx", Options{})
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, model.SheetRow{
		Row:      2,
		Employee: "Ana",
		Date:     "05/01/2024",
		CheckIn:  "08:00",
		CheckOut: "17:00",
		Deductions: model.Deductions{
			Inventory:  decimal.Zero,
			CashDrawer: decimal.Zero,
			Advance:    decimal.Zero,
		},
	}, doc.Rows[0])
}

func TestRead_HTML(t *testing.T) {
	t.Run("attendance table becomes rows", func(t *testing.T) {
		page := `<html><body><table>
			<tr><th>Nombre</th><th>Fecha</th><th>Entrada</th><th>Salida</th></tr>
			<tr><td>Ana  Gomez</td><td>05/01/2024</td><td>08:00</td><td>17:00</td></tr>
		</table></body></html>`
		doc, err := Read(bytes.NewReader([]byte(page)), "clock.html", Options{})
		require.NoError(t, err)
		assert.Equal(t, model.SourceSpreadsheet, doc.Kind)
		require.Len(t, doc.Rows, 1)
		assert.Equal(t, "Ana Gomez", doc.Rows[0].Employee)
	})

	t.Run("other tables become lines", func(t *testing.T) {
		page := `<table>
			<tr><td>Ana Gomez</td></tr>
			<tr><td>05/01/2024</td><td>08:00</td><td>17:00</td></tr>
		</table>`
		doc, err := Read(bytes.NewReader([]byte(page)), "clock.htm", Options{})
		require.NoError(t, err)
		assert.Equal(t, model.SourceText, doc.Kind)
		assert.Equal(t, []string{"Ana Gomez", "05/01/2024 08:00 17:00"}, doc.Lines)
	})
}

func TestRead_Unsupported(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("%PDF-1.4")), "report.pdf", Options{})
	assert.ErrorIs(t, err, common.ErrUnsupportedFile)
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"":             "0",
		"-":            "0",
		"1500":         "1500",
		"1.500":        "1500",
		"1,500":        "1500",
		"12,5":         "12.5",
		"0.5":          "0.5",
		"0.125":        "0.125",
		"0,125":        "0.125",
		"-0.250":       "-0.25",
		"12.345":       "12345",
		"1234.567":     "1234.567",
		"1.500.000,25": "1500000.25",
		"1,500,000.25": "1500000.25",
		"$ 2.000":      "2000",
		"abc":          "0",
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			got := parseAmount(1, "test", input)
			assert.True(t, decimal.RequireFromString(want).Equal(got), "got %s", got)
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\r\rb\n"))
}
