package grouper

import (
	"slices"
	"testing"
	"time"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(line int, date string, hour, minute int) model.RawToken {
	return model.RawToken{
		LineIndex:  line,
		Date:       date,
		Time:       model.MustClockTime(hour, minute),
		DateSource: model.DateFromLine,
	}
}

func punch(c *model.ClockTime) string {
	return model.FormatPunch(c)
}

func TestGroup_OrderingRule(t *testing.T) {
	lines := []string{"Ana Gomez", "05/01/2024 17:00 08:00"}

	tests := []struct {
		name   string
		tokens []model.RawToken
	}{
		{
			name:   "chronological input",
			tokens: []model.RawToken{tok(1, "2024-01-05", 8, 0), tok(1, "2024-01-05", 17, 0)},
		},
		{
			name:   "reversed input",
			tokens: []model.RawToken{tok(1, "2024-01-05", 17, 0), tok(1, "2024-01-05", 8, 0)},
		},
		{
			name: "duplicates dropped",
			tokens: []model.RawToken{
				tok(1, "2024-01-05", 17, 0),
				tok(1, "2024-01-05", 8, 0),
				tok(1, "2024-01-05", 8, 0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := New(DefaultConfig()).Group(lines, slices.Values(tt.tokens))
			require.Len(t, records, 1)

			rec := records[0]
			assert.Equal(t, "Ana Gomez", rec.Employee)
			assert.Equal(t, "2024-01-05", rec.Date)
			assert.Equal(t, "08:00", punch(rec.CheckIn))
			assert.Equal(t, "17:00", punch(rec.CheckOut))
			assert.Empty(t, rec.ExtraPunches)
			assert.Equal(t, model.RecordID("Ana Gomez", "2024-01-05"), rec.ID)
			assert.Equal(t, model.SourceText, rec.Source)
			assert.Equal(t, model.StateUnclassified, rec.State)
		})
	}
}

func TestGroup_ExtraPunchesKeptForAudit(t *testing.T) {
	lines := []string{"Ana Gomez 05/01/2024 08:00 12:00 13:00 17:00"}
	tokens := []model.RawToken{
		tok(0, "2024-01-05", 13, 0),
		tok(0, "2024-01-05", 8, 0),
		tok(0, "2024-01-05", 17, 0),
		tok(0, "2024-01-05", 12, 0),
	}

	records := New(DefaultConfig()).Group(lines, slices.Values(tokens))
	require.Len(t, records, 1)
	assert.Equal(t, "08:00", punch(records[0].CheckIn))
	assert.Equal(t, "12:00", punch(records[0].CheckOut))
	assert.Equal(t, []model.ClockTime{model.MustClockTime(13, 0), model.MustClockTime(17, 0)}, records[0].ExtraPunches)
}

func TestGroup_EmployeeResolution(t *testing.T) {
	lines := []string{
		"Reporte de asistencia",             // 0
		"Carlos Ruiz",                       // 1
		"Fecha Entrada Salida",              // 2
		"05/01/2024 08:00 17:00",            // 3
		"Lunes 6 de enero de 2024",          // 4
		"08:00 17:00",                       // 5
		"",                                  // 6
		"",                                  // 7
		"",                                  // 8
		"",                                  // 9
		"07/01/2024 09:00",                  // 10
		"Marta Diaz 07/01/2024 10:00 18:00", // 11
	}
	tokens := []model.RawToken{
		tok(3, "2024-01-05", 8, 0),
		tok(3, "2024-01-05", 17, 0),
		tok(5, "2024-01-06", 8, 0),
		tok(5, "2024-01-06", 17, 0),
		tok(10, "2024-01-07", 9, 0),
		tok(11, "2024-01-07", 10, 0),
		tok(11, "2024-01-07", 18, 0),
	}

	records := New(DefaultConfig()).Group(lines, slices.Values(tokens))
	require.Len(t, records, 3)

	byEmployee := map[string][]string{}
	for _, rec := range records {
		byEmployee[rec.Employee] = append(byEmployee[rec.Employee], rec.Date)
	}

	// Line 5 is four lines below Carlos, outside the window.
	assert.Equal(t, []string{"2024-01-05"}, byEmployee["Carlos Ruiz"])
	assert.Equal(t, []string{"2024-01-06"}, byEmployee["Employee_6"])
	// Line 10 has no name of its own; Marta on the next line is nearest.
	assert.Equal(t, []string{"2024-01-07"}, byEmployee["Marta Diaz"])
	assert.Len(t, byEmployee, 3)
}

func TestGroup_PrefersPrecedingNameOnTie(t *testing.T) {
	lines := []string{
		"Ana Gomez",
		"05/01/2024 08:00 17:00",
		"Luis Mora",
	}
	tokens := []model.RawToken{tok(1, "2024-01-05", 8, 0), tok(1, "2024-01-05", 17, 0)}

	records := New(DefaultConfig()).Group(lines, slices.Values(tokens))
	require.Len(t, records, 1)
	assert.Equal(t, "Ana Gomez", records[0].Employee)
}

func TestGroup_DateFallbackFlagged(t *testing.T) {
	lines := []string{"Ana Gomez 08:00"}
	token := tok(0, "2024-03-10", 8, 0)
	token.DateSource = model.DateFallback

	records := New(DefaultConfig()).Group(lines, slices.Values([]model.RawToken{token}))
	require.Len(t, records, 1)
	assert.True(t, records[0].DateFallback)
	assert.Nil(t, records[0].CheckOut)
}

func TestGroup_SortedByEmployeeThenDate(t *testing.T) {
	lines := []string{"zoe", "", "", "", "", "", "", "", "ana"}
	tokens := []model.RawToken{
		tok(0, "2024-01-06", 8, 0),
		tok(0, "2024-01-05", 8, 0),
		tok(8, "2024-01-05", 8, 0),
	}
	records := New(DefaultConfig()).Group(lines, slices.Values(tokens))
	require.Len(t, records, 3)

	var got []string
	for _, rec := range records {
		got = append(got, rec.Employee+" "+rec.Date)
	}
	assert.Equal(t, []string{"ana 2024-01-05", "zoe 2024-01-05", "zoe 2024-01-06"}, got)
}

func TestFromRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC) }
	g := New(cfg)

	rows := []model.SheetRow{
		{Row: 2, Employee: "Ana", Date: "05/01/2024", CheckIn: "17:00", CheckOut: "08:00"},
		{Row: 3, Employee: "Luis", Date: "05/01/2024", CheckIn: "08:00", CheckOut: "",
			Deductions: model.Deductions{Inventory: decimal.NewFromInt(500)}},
		{Row: 4, Employee: "Luis", Date: "5 de enero de 2024", CheckIn: "", CheckOut: "5:00 pm",
			Deductions: model.Deductions{Advance: decimal.NewFromInt(1000)}, Holiday: "Sí"},
		{Row: 5, Employee: "", Date: "not a date", CheckIn: "", CheckOut: ""},
		{Row: 6, Employee: "Marta", Date: "06/01/2024", CheckIn: "bogus", CheckOut: "18:00"},
	}

	records := g.FromRows(rows)
	require.Len(t, records, 4)

	byName := map[string]model.AttendanceRecord{}
	for _, rec := range records {
		byName[rec.Employee] = rec
	}

	ana := byName["Ana"]
	assert.Equal(t, "17:00", punch(ana.CheckIn), "single row keeps its labels")
	assert.Equal(t, "08:00", punch(ana.CheckOut))
	assert.Equal(t, model.SourceSpreadsheet, ana.Source)

	luis := byName["Luis"]
	assert.Equal(t, "08:00", punch(luis.CheckIn))
	assert.Equal(t, "17:00", punch(luis.CheckOut))
	assert.Equal(t, []int{3, 4}, luis.SourceLines)
	assert.True(t, luis.Holiday)
	assert.True(t, decimal.NewFromInt(1500).Equal(luis.Deductions.Total()))

	blank := byName["Employee_5"]
	assert.Equal(t, "2024-03-10", blank.Date)
	assert.True(t, blank.DateFallback)
	assert.Zero(t, blank.PunchCount())

	marta := byName["Marta"]
	assert.Nil(t, marta.CheckIn)
	assert.Equal(t, "18:00", punch(marta.CheckOut))
}

func TestParseFlag(t *testing.T) {
	for _, s := range []string{"1", "X", "sí", "Si", "yes", "TRUE", "festivo"} {
		assert.True(t, ParseFlag(s), s)
	}
	for _, s := range []string{"", "0", "no", "false"} {
		assert.False(t, ParseFlag(s), s)
	}
}

func TestFromRows_DuplicateEntradaSalida(t *testing.T) {
	tests := []struct {
		name    string
		in, out string
		wantIn  string
		wantOut string
	}{
		{name: "identical values collapse to one punch", in: "08:00", out: "08:00", wantIn: "08:00", wantOut: "--"},
		{name: "same time written differently", in: "5:00 pm", out: "17:00", wantIn: "17:00", wantOut: "--"},
		{name: "distinct values kept as written", in: "17:00", out: "08:00", wantIn: "17:00", wantOut: "08:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := New(DefaultConfig()).FromRows([]model.SheetRow{
				{Row: 2, Employee: "Ana", Date: "05/01/2024", CheckIn: tt.in, CheckOut: tt.out},
			})
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantIn, punch(records[0].CheckIn))
			assert.Equal(t, tt.wantOut, punch(records[0].CheckOut))
		})
	}
}
