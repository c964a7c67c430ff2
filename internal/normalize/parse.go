package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/punchclock/internal/model"
)

// DateOrder decides how ambiguous numeric dates such as 05/01/2024 are read.
type DateOrder string

// Date orders.
const (
	DayFirst   DateOrder = "dmy"
	MonthFirst DateOrder = "mdy"
)

// ParseDateOrder validates a configured date order.
func ParseDateOrder(s string) (DateOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dmy", "day-first", "dd/mm/yyyy":
		return DayFirst, nil
	case "mdy", "month-first", "mm/dd/yyyy":
		return MonthFirst, nil
	default:
		return "", fmt.Errorf("invalid date order %q (use day-first or month-first)", s)
	}
}

const canonicalDate = "2006-01-02"

// The meridiem must end at a word boundary so "14:00 a Mario" keeps its time.
var timeRe = regexp.MustCompile(`(?i)(\d{1,2})[:h](\d{2})(?::\d{2})?(\s*([ap])\.?\s?m\b\.?)?`)

type timeMatch struct {
	start, end int
	clock      model.ClockTime
}

// findTimes returns every valid clock time in s. Matches glued to other digits
// (e.g. "123:45" or a serial number) are rejected, as are out of range hours.
func findTimes(s string) []timeMatch {
	var out []timeMatch
	for _, loc := range timeRe.FindAllStringSubmatchIndex(s, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && (isDigit(s[start-1]) || s[start-1] == ':') {
			continue
		}
		if end < len(s) && isDigit(s[end]) {
			continue
		}
		hour, _ := strconv.Atoi(s[loc[2]:loc[3]])
		minute, _ := strconv.Atoi(s[loc[4]:loc[5]])
		meridiem := ""
		if loc[8] >= 0 {
			meridiem = strings.ToLower(s[loc[8]:loc[9]])
		}
		clock, ok := toClock(hour, minute, meridiem)
		if !ok {
			continue
		}
		out = append(out, timeMatch{start: start, end: end, clock: clock})
	}
	return out
}

// toClock applies a meridiem to a 12-hour reading. Hours already on the 24-hour
// clock (0 and 13 to 23) ignore a redundant meridiem such as "17:00 pm".
func toClock(hour, minute int, meridiem string) (model.ClockTime, bool) {
	if hour == 0 || hour > 12 {
		meridiem = ""
	}
	switch meridiem {
	case "a":
		if hour == 12 {
			hour = 0
		}
	case "p":
		if hour != 12 {
			hour += 12
		}
	}
	clock, err := model.NewClockTime(hour, minute)
	if err != nil {
		return 0, false
	}
	return clock, true
}

var compactClockRe = regexp.MustCompile(`^(\d{1,2})(\d{2})$`)
var bareHourRe = regexp.MustCompile(`(?i)^(\d{1,2})\s*([ap])\.?\s?m\.?$`)

// ParseClock parses a single time value such as "8:05", "08:05:00", "5:30 p. m.", "1730" or "5pm".
func ParseClock(s string) (model.ClockTime, error) {
	value := strings.TrimSpace(Fold(s))
	if value == "" {
		return 0, fmt.Errorf("empty time")
	}

	if matches := findTimes(value); len(matches) == 1 && matches[0].start == 0 && matches[0].end == len(value) {
		return matches[0].clock, nil
	}

	if m := compactClockRe.FindStringSubmatch(value); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if clock, ok := toClock(hour, minute, ""); ok {
			return clock, nil
		}
	}

	if m := bareHourRe.FindStringSubmatch(value); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if clock, ok := toClock(hour, 0, strings.ToLower(m[2])); ok {
			return clock, nil
		}
	}

	return 0, fmt.Errorf("unrecognised time %q", s)
}

// ParseDate parses a single date value in any of the supported layouts and returns YYYY-MM-DD.
func ParseDate(s string, order DateOrder) (string, error) {
	value := strings.TrimSpace(Fold(s))
	if value == "" {
		return "", fmt.Errorf("empty date")
	}
	for _, p := range defaultCompiled {
		if p.Kind == KindTimeOnly {
			continue
		}
		m := p.re.FindStringSubmatch(value)
		if m == nil {
			continue
		}
		if date, ok := p.extractDate(m, order); ok {
			return date, nil
		}
	}
	return "", fmt.Errorf("unrecognised date %q", s)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func expandYear(y int) int {
	if y >= 100 {
		return y
	}
	if y < 70 {
		return 2000 + y
	}
	return 1900 + y
}

// buildDate validates the calendar date and renders it canonically.
func buildDate(year, month, day int) (string, bool) {
	year = expandYear(year)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return t.Format(canonicalDate), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func isoDate(m []string, _ DateOrder) (string, bool) {
	return buildDate(atoi(m[0]), atoi(m[1]), atoi(m[2]))
}

func numericDate(m []string, order DateOrder) (string, bool) {
	a, b, year := atoi(m[0]), atoi(m[1]), atoi(m[2])
	day, month := a, b
	if order == MonthFirst {
		day, month = b, a
	}
	if date, ok := buildDate(year, month, day); ok {
		return date, true
	}
	// 13/01 read month-first (or 01/13 read day-first) only makes sense swapped.
	return buildDate(year, day, month)
}

func dayMonthNameDate(m []string, _ DateOrder) (string, bool) {
	month, ok := monthNumber(m[1])
	if !ok {
		return "", false
	}
	return buildDate(atoi(m[2]), month, atoi(m[0]))
}

func monthNameDayDate(m []string, _ DateOrder) (string, bool) {
	month, ok := monthNumber(m[0])
	if !ok {
		return "", false
	}
	return buildDate(atoi(m[2]), month, atoi(m[1]))
}
