package model

import (
	"encoding/json"
	"fmt"
)

// MinutesPerDay is the number of minutes in a calendar day.
const MinutesPerDay = 24 * 60

// ClockTime is a wall-clock time of day stored as minutes since midnight.
type ClockTime int

// NewClockTime builds a ClockTime from an hour and minute, rejecting out of range values.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute %d out of range", minute)
	}
	return ClockTime(hour*60 + minute), nil
}

// MustClockTime is NewClockTime for constants and tests.
func MustClockTime(hour, minute int) ClockTime {
	c, err := NewClockTime(hour, minute)
	if err != nil {
		panic(err)
	}
	return c
}

// Hour returns the hour component (0-23).
func (c ClockTime) Hour() int {
	return int(c) / 60
}

// Minute returns the minute component (0-59).
func (c ClockTime) Minute() int {
	return int(c) % 60
}

// Hours returns the time of day as fractional hours since midnight.
func (c ClockTime) Hours() float64 {
	return float64(c) / 60
}

// String renders the canonical HH:MM form.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalJSON stores clock times as "HH:MM" strings.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the canonical "HH:MM" form only.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hour, &minute); err != nil {
		return fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	parsed, err := NewClockTime(hour, minute)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ClockPtr returns a pointer to a copy of c.
func ClockPtr(c ClockTime) *ClockTime {
	return &c
}
