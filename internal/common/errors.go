// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Input errors.
	ErrExtractionEmpty = errors.New("no date or time tokens found in document")
	ErrSchemaInvalid   = errors.New("spreadsheet is missing required columns")
	ErrUndecodable     = errors.New("document cannot be decoded as text")
	ErrUnsupportedFile = errors.New("unsupported document type")

	// Review errors.
	ErrBatchIncomplete   = errors.New("corrections still outstanding")
	ErrInvalidCorrection = errors.New("invalid correction")
	ErrRecordNotFound    = errors.New("record not found in batch")
	ErrReviewAbandoned   = errors.New("review abandoned")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// SchemaError lists the required spreadsheet columns that were not found.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSchemaInvalid, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaInvalid
}

// BatchIncompleteError lists the record ids that still need a reviewer decision.
type BatchIncompleteError struct {
	Outstanding []string
}

func (e *BatchIncompleteError) Error() string {
	return fmt.Sprintf("%s: %d record(s) awaiting review", ErrBatchIncomplete, len(e.Outstanding))
}

func (e *BatchIncompleteError) Unwrap() error {
	return ErrBatchIncomplete
}

// IsRetryable determines if an error should trigger a retry.
// Only transport failures qualify; pipeline errors are always returned to the reviewer.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
