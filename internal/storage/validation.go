// Package storage provides the data persistence layer for punch.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/punchclock/internal/correction"
	"github.com/Veraticus/punchclock/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidRate      = errors.New("invalid employee rate")
	ErrInvalidBatch     = errors.New("invalid review batch")
	ErrNotFound         = errors.New("not found")
)

const dateLayout = "2006-01-02"

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateDate(s, paramName string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("%w: %s %q", ErrInvalidDate, paramName, s)
	}
	return nil
}

func validateDateRange(start, end string) error {
	if err := validateDate(start, "start"); err != nil {
		return err
	}
	if err := validateDate(end, "end"); err != nil {
		return err
	}
	if end < start {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidDateRange, end, start)
	}
	return nil
}

// validateHoliday validates a holiday.
func validateHoliday(h *model.Holiday) error {
	if h == nil {
		return fmt.Errorf("%w: holiday", ErrNilParameter)
	}
	return validateDate(h.Date, "holiday date")
}

// validateEmployeeRate validates an employee rate override.
func validateEmployeeRate(r *model.EmployeeRate) error {
	if r == nil {
		return fmt.Errorf("%w: rate", ErrNilParameter)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRate)
	}
	if r.NormalRate.IsNegative() || r.PremiumRate.IsNegative() {
		return fmt.Errorf("%w: rates must not be negative", ErrInvalidRate)
	}
	if r.NormalRate.IsZero() && r.PremiumRate.IsZero() {
		return fmt.Errorf("%w: at least one rate is required", ErrInvalidRate)
	}
	return nil
}

// validateBatch validates a batch snapshot.
func validateBatch(b *model.BatchSnapshot) error {
	if b == nil {
		return fmt.Errorf("%w: batch", ErrNilParameter)
	}
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidBatch)
	}
	if _, err := correction.ParseReleasePolicy(b.Policy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}
	switch b.Source {
	case model.SourceText, model.SourceSpreadsheet:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidBatch, b.Source)
	}
	return nil
}
