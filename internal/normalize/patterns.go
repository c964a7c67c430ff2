// Package normalize extracts canonical date and time tokens from raw time-clock text.
package normalize

import (
	"fmt"
	"regexp"
	"sort"
)

// PatternKind orders patterns by how much they tell us about a line.
type PatternKind string

const (
	// KindDateTime patterns match a date immediately followed by a time.
	KindDateTime PatternKind = "datetime"
	// KindDateOnly patterns match a date anywhere on the line.
	KindDateOnly PatternKind = "date"
	// KindTimeOnly patterns match a bare time of day.
	KindTimeOnly PatternKind = "time"
)

// DateExtractor turns the (a, b, c) components captured by a date pattern into YYYY-MM-DD.
type DateExtractor func(parts []string, order DateOrder) (string, bool)

// Pattern is one tagged entry in the ordered matching list.
// Date-bearing patterns must capture the whole date as group 1 and its three components as groups 2-4.
type Pattern struct {
	Date     DateExtractor
	Name     string
	Kind     PatternKind
	Regex    string
	Priority int // Higher priority patterns are tried first
}

type compiledPattern struct {
	re *regexp.Regexp
	Pattern
}

func (p compiledPattern) extractDate(m []string, order DateOrder) (string, bool) {
	if p.Date == nil || len(m) < 5 {
		return "", false
	}
	return p.Date(m[2:5], order)
}

const (
	isoDateExpr      = `(\d{4})-(\d{1,2})-(\d{1,2})`
	numericDateExpr  = `\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{4}|\d{2})\b`
	dayMonthNameExpr = `\b(\d{1,2})\s+(?:de\s+)?([a-z]{3,10})\.?,?\s+(?:del?\s+)?(\d{4})`
	monthNameDayExpr = `\b([a-z]{3,9})\.?\s+(\d{1,2}),?\s+(\d{4})`
	timeExpr         = `\d{1,2}[:h]\d{2}`
	dateTimeJoin     = `(?:[\sT,]+|\s+a\s+las\s+)`
)

// DefaultPatterns returns the built-in ordered pattern list: combined date+time first,
// then date-only, then time-only.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:     "iso-datetime",
			Kind:     KindDateTime,
			Regex:    `(?P<date>` + isoDateExpr + `)` + dateTimeJoin + timeExpr,
			Priority: 100,
			Date:     isoDate,
		},
		{
			Name:     "numeric-datetime",
			Kind:     KindDateTime,
			Regex:    `(?P<date>` + numericDateExpr + `)` + dateTimeJoin + timeExpr,
			Priority: 95,
			Date:     numericDate,
		},
		{
			Name:     "day-month-name-datetime",
			Kind:     KindDateTime,
			Regex:    `(?P<date>` + dayMonthNameExpr + `)` + dateTimeJoin + timeExpr,
			Priority: 90,
			Date:     dayMonthNameDate,
		},
		{
			Name:     "month-name-day-datetime",
			Kind:     KindDateTime,
			Regex:    `(?P<date>` + monthNameDayExpr + `)` + dateTimeJoin + timeExpr,
			Priority: 90,
			Date:     monthNameDayDate,
		},
		{
			Name:     "iso-date",
			Kind:     KindDateOnly,
			Regex:    `(?P<date>` + isoDateExpr + `)`,
			Priority: 80,
			Date:     isoDate,
		},
		{
			Name:     "numeric-date",
			Kind:     KindDateOnly,
			Regex:    `(?P<date>` + numericDateExpr + `)`,
			Priority: 75,
			Date:     numericDate,
		},
		{
			Name:     "day-month-name-date",
			Kind:     KindDateOnly,
			Regex:    `(?P<date>` + dayMonthNameExpr + `)`,
			Priority: 70,
			Date:     dayMonthNameDate,
		},
		{
			Name:     "month-name-day-date",
			Kind:     KindDateOnly,
			Regex:    `(?P<date>` + monthNameDayExpr + `)`,
			Priority: 70,
			Date:     monthNameDayDate,
		},
		{
			Name:     "time",
			Kind:     KindTimeOnly,
			Regex:    timeExpr,
			Priority: 10,
		},
	}
}

// compilePatterns compiles patterns case-insensitively and sorts them by priority, highest first.
// Patterns with equal priority keep their declared order.
func compilePatterns(patterns []Pattern) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		if p.Kind != KindTimeOnly && p.Date == nil {
			return nil, fmt.Errorf("pattern %s: date patterns need a date extractor", p.Name)
		}
		compiled = append(compiled, compiledPattern{Pattern: p, re: re})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return compiled, nil
}

var defaultCompiled = mustCompile(DefaultPatterns())

func mustCompile(patterns []Pattern) []compiledPattern {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		panic(err)
	}
	return compiled
}
