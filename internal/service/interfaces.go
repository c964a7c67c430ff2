// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/payroll"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Holiday operations
	SaveHoliday(ctx context.Context, holiday *model.Holiday) error
	GetHolidays(ctx context.Context) ([]model.Holiday, error)
	GetHolidaysBetween(ctx context.Context, start, end string) ([]model.Holiday, error)
	DeleteHoliday(ctx context.Context, date string) error

	// Employee rate operations
	SaveEmployeeRate(ctx context.Context, rate *model.EmployeeRate) error
	GetEmployeeRate(ctx context.Context, name string) (*model.EmployeeRate, error)
	GetEmployeeRates(ctx context.Context) ([]model.EmployeeRate, error)
	DeleteEmployeeRate(ctx context.Context, name string) error

	// Review batch operations
	SaveBatch(ctx context.Context, batch *model.BatchSnapshot) error
	GetBatch(ctx context.Context, id string) (*model.BatchSnapshot, error)
	ListBatches(ctx context.Context) ([]model.BatchSnapshot, error)
	DeleteBatch(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// ReportWriter publishes a payroll report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, title string, report *payroll.Report) error
}

// CompletionStats shows the results of a review session.
type CompletionStats struct {
	TotalRequests int
	Corrected     int
	Rejected      int
	Skipped       int
	Duration      time.Duration
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
