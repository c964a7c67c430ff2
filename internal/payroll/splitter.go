// Package payroll converts finalized attendance records into paid hours and amounts.
package payroll

import (
	"fmt"

	"github.com/Veraticus/punchclock/internal/model"
)

// Default premium window, 20:00 to 22:00.
var (
	DefaultWindowStart = model.MustClockTime(20, 0)
	DefaultWindowEnd   = model.MustClockTime(22, 0)
)

// Split is a shift divided into normal and premium time. Minutes are exact;
// the hour fields are derived from them.
type Split struct {
	TotalMinutes   int
	PremiumMinutes int
	NormalMinutes  int
}

// TotalHours returns the elapsed shift length in hours.
func (s Split) TotalHours() float64 { return float64(s.TotalMinutes) / 60 }

// PremiumHours returns the hours inside the premium window.
func (s Split) PremiumHours() float64 { return float64(s.PremiumMinutes) / 60 }

// NormalHours returns the hours outside the premium window.
func (s Split) NormalHours() float64 { return float64(s.NormalMinutes) / 60 }

// Splitter divides shifts around a fixed daily premium window [WindowStart, WindowEnd).
type Splitter struct {
	WindowStart model.ClockTime
	WindowEnd   model.ClockTime
}

// NewSplitter validates the window. It must not wrap past midnight.
func NewSplitter(start, end model.ClockTime) (Splitter, error) {
	if end <= start {
		return Splitter{}, fmt.Errorf("premium window %s-%s must end after it starts", start, end)
	}
	return Splitter{WindowStart: start, WindowEnd: end}, nil
}

// DefaultSplitter uses the 20:00-22:00 window.
func DefaultSplitter() Splitter {
	return Splitter{WindowStart: DefaultWindowStart, WindowEnd: DefaultWindowEnd}
}

// Split measures the shift from in to out. A check-out earlier than the check-in
// crosses midnight. Premium time is the exact overlap with the window on every
// calendar day the shift touches.
func (s Splitter) Split(in, out model.ClockTime) Split {
	start := int(in)
	end := int(out)
	if end < start {
		end += model.MinutesPerDay
	}

	premium := 0
	for day := 0; day*model.MinutesPerDay < end; day++ {
		offset := day * model.MinutesPerDay
		premium += overlap(start, end, offset+int(s.WindowStart), offset+int(s.WindowEnd))
	}

	total := end - start
	return Split{
		TotalMinutes:   total,
		PremiumMinutes: premium,
		NormalMinutes:  total - premium,
	}
}

func overlap(aStart, aEnd, bStart, bEnd int) int {
	lo := max(aStart, bStart)
	hi := min(aEnd, bEnd)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
