package payroll

import (
	"maps"
	"slices"

	"github.com/Veraticus/punchclock/internal/model"
)

// HolidayCalendar is the set of dates paid at the holiday factor.
type HolidayCalendar struct {
	dates map[string]string
}

// NewHolidayCalendar builds a calendar from any number of holiday lists.
func NewHolidayCalendar(lists ...[]model.Holiday) *HolidayCalendar {
	c := &HolidayCalendar{dates: make(map[string]string)}
	for _, list := range lists {
		for _, h := range list {
			c.Add(h)
		}
	}
	return c
}

// Add registers a holiday. An existing name for the same date is kept.
func (c *HolidayCalendar) Add(h model.Holiday) {
	if existing, ok := c.dates[h.Date]; ok && existing != "" {
		return
	}
	c.dates[h.Date] = h.Name
}

// IsHoliday reports whether date (YYYY-MM-DD) is a holiday.
func (c *HolidayCalendar) IsHoliday(date string) bool {
	if c == nil {
		return false
	}
	_, ok := c.dates[date]
	return ok
}

// Holidays lists the calendar sorted by date.
func (c *HolidayCalendar) Holidays() []model.Holiday {
	if c == nil {
		return nil
	}
	dates := slices.Sorted(maps.Keys(c.dates))
	out := make([]model.Holiday, 0, len(dates))
	for _, d := range dates {
		out = append(out, model.Holiday{Date: d, Name: c.dates[d]})
	}
	return out
}
