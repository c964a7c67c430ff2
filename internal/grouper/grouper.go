// Package grouper clusters time tokens into one attendance record per employee and date.
package grouper

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
)

// DefaultWindow is how many lines above and below a token are searched for an employee name.
const DefaultWindow = 3

// PlaceholderPrefix starts the generated name used when no employee can be found.
const PlaceholderPrefix = "Employee_"

// Config tunes employee resolution.
type Config struct {
	Now        func() time.Time
	DateOrder  normalize.DateOrder
	Stopwords  []string
	Window     int
	MinLetters int
}

// DefaultConfig returns the default grouping configuration.
func DefaultConfig() Config {
	return Config{
		Window:     DefaultWindow,
		MinLetters: 3,
		Stopwords:  DefaultStopwords,
		DateOrder:  normalize.DayFirst,
		Now:        time.Now,
	}
}

// Grouper turns tokens or sheet rows into attendance records.
type Grouper struct {
	cfg Config
}

// New creates a grouper, filling zero config values with defaults.
func New(cfg Config) *Grouper {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MinLetters <= 0 {
		cfg.MinLetters = def.MinLetters
	}
	if cfg.Stopwords == nil {
		cfg.Stopwords = def.Stopwords
	}
	if cfg.DateOrder == "" {
		cfg.DateOrder = def.DateOrder
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	return &Grouper{cfg: cfg}
}

// group accumulates punches for one (employee, date) key.
type group struct {
	record  model.AttendanceRecord
	punches []model.ClockTime
	lines   []int
	labeled int
}

// Group consumes a token stream from lines and returns one record per (employee, date),
// sorted by employee then date.
func (g *Grouper) Group(lines []string, tokens iter.Seq[model.RawToken]) []model.AttendanceRecord {
	names := newNameResolver(lines, g.cfg.Stopwords, g.cfg.MinLetters)
	groups := make(map[string]*group)

	for tok := range tokens {
		employee, ok := names.nearest(tok.LineIndex, g.cfg.Window)
		if !ok {
			employee = Placeholder(tok.LineIndex + 1)
			slog.Debug("No employee name near token", "line", tok.LineIndex+1, "placeholder", employee)
		}

		id := model.RecordID(employee, tok.Date)
		grp, exists := groups[id]
		if !exists {
			grp = &group{record: model.AttendanceRecord{
				ID:       id,
				Employee: employee,
				Date:     tok.Date,
				Source:   model.SourceText,
			}}
			groups[id] = grp
		}
		grp.punches = append(grp.punches, tok.Time)
		grp.lines = append(grp.lines, tok.LineIndex)
		if tok.DateSource == model.DateFallback {
			grp.record.DateFallback = true
		}
	}

	return finish(groups)
}

// FromRows groups spreadsheet rows. A single row keeps its Entrada/Salida labels;
// several rows for the same key are pooled and ordered chronologically.
func (g *Grouper) FromRows(rows []model.SheetRow) []model.AttendanceRecord {
	groups := make(map[string]*group)

	for _, row := range rows {
		employee := strings.TrimSpace(row.Employee)
		if employee == "" {
			employee = Placeholder(row.Row)
		}

		date, err := normalize.ParseDate(row.Date, g.cfg.DateOrder)
		fallback := false
		if err != nil {
			date = g.cfg.Now().Format("2006-01-02")
			fallback = true
			slog.Warn("Unparseable date in row, using today", "row", row.Row, "value", row.Date, "date", date)
		}

		id := model.RecordID(employee, date)
		grp, exists := groups[id]
		if !exists {
			grp = &group{record: model.AttendanceRecord{
				ID:       id,
				Employee: employee,
				Date:     date,
				Source:   model.SourceSpreadsheet,
			}}
			groups[id] = grp
		}
		grp.record.DateFallback = grp.record.DateFallback || fallback
		grp.record.Holiday = grp.record.Holiday || ParseFlag(row.Holiday)
		grp.record.Deductions = grp.record.Deductions.Add(row.Deductions)
		grp.lines = append(grp.lines, row.Row)
		grp.labeled++

		in := g.rowClock(row.Row, "Entrada", row.CheckIn)
		out := g.rowClock(row.Row, "Salida", row.CheckOut)
		if in != nil && out != nil && *in == *out {
			// An exact duplicate is one punch; the record goes to review as incomplete.
			out = nil
		}
		if in != nil {
			grp.punches = append(grp.punches, *in)
		}
		if out != nil {
			grp.punches = append(grp.punches, *out)
		}
		if grp.labeled == 1 {
			grp.record.CheckIn, grp.record.CheckOut = in, out
		}
	}

	return finish(groups)
}

func (g *Grouper) rowClock(row int, column, value string) *model.ClockTime {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	clock, err := normalize.ParseClock(value)
	if err != nil {
		slog.Warn("Unparseable time in row, treating as missing", "row", row, "column", column, "value", value)
		return nil
	}
	return &clock
}

// finish applies the ordering rule to every group and sorts the result.
func finish(groups map[string]*group) []model.AttendanceRecord {
	records := make([]model.AttendanceRecord, 0, len(groups))
	for _, grp := range groups {
		rec := grp.record
		rec.SourceLines = uniqueSorted(grp.lines)

		// Labelled single rows keep their columns as written.
		if grp.labeled != 1 {
			assignPunches(&rec, grp.punches)
		}
		records = append(records, rec)
	}

	slices.SortFunc(records, func(a, b model.AttendanceRecord) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Employee), strings.ToLower(b.Employee)),
			cmp.Compare(a.Date, b.Date),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return records
}

// assignPunches applies the ordering rule: earliest is check-in, the next distinct time
// is check-out, anything later is kept for audit only.
func assignPunches(rec *model.AttendanceRecord, punches []model.ClockTime) {
	distinct := slices.Clone(punches)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	rec.CheckIn, rec.CheckOut, rec.ExtraPunches = nil, nil, nil
	if len(distinct) > 0 {
		rec.CheckIn = model.ClockPtr(distinct[0])
	}
	if len(distinct) > 1 {
		rec.CheckOut = model.ClockPtr(distinct[1])
	}
	if len(distinct) > 2 {
		rec.ExtraPunches = distinct[2:]
		slog.Info("Extra punches kept for audit, not paid",
			"employee", rec.Employee,
			"date", rec.Date,
			"extra", len(rec.ExtraPunches))
	}
}

// Placeholder names an employee that could not be resolved from the text.
func Placeholder(line int) string {
	return fmt.Sprintf("%s%d", PlaceholderPrefix, line)
}

// ParseFlag reads the truthy spellings used in holiday columns.
func ParseFlag(s string) bool {
	switch normalize.Fold(strings.TrimSpace(s)) {
	case "1", "x", "si", "s", "yes", "y", "true", "verdadero", "festivo":
		return true
	default:
		return false
	}
}

func uniqueSorted(values []int) []int {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
