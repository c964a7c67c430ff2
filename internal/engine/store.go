package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/payroll"
	"github.com/Veraticus/punchclock/internal/service"
)

// Suspend stores a batch so review can continue in a later session.
func Suspend(ctx context.Context, store service.Storage, batch *Batch, now func() time.Time) error {
	snapshot, err := batch.Snapshot(now())
	if err != nil {
		return fmt.Errorf("failed to snapshot batch: %w", err)
	}
	if err := store.SaveBatch(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	common.Logger(ctx).Info("Batch suspended", "batch", batch.ID, "outstanding", snapshot.Outstanding())
	return nil
}

// Resume loads a suspended batch.
func Resume(ctx context.Context, store service.Storage, id string) (*Batch, error) {
	snapshot, err := store.GetBatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %s: %w", id, err)
	}
	return FromSnapshot(snapshot)
}

// Discard deletes a suspended batch. Nothing from it reaches payroll.
func Discard(ctx context.Context, store service.Storage, id string) error {
	if err := store.DeleteBatch(ctx, id); err != nil {
		return fmt.Errorf("failed to discard batch %s: %w", id, err)
	}
	return nil
}

// LoadCalculator builds a payroll calculator from configuration plus the stored
// holidays and employee rates.
func LoadCalculator(ctx context.Context, store service.Storage, cfg payroll.Config, splitter payroll.Splitter, configured []model.Holiday) (*payroll.Calculator, error) {
	stored, err := store.GetHolidays(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	rates, err := store.GetEmployeeRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee rates: %w", err)
	}

	calendar := payroll.NewHolidayCalendar(configured, stored)
	common.Logger(ctx).Debug("Loaded payroll data", "holidays", len(calendar.Holidays()), "employee_rates", len(rates))

	return payroll.NewCalculator(cfg,
		payroll.WithSplitter(splitter),
		payroll.WithHolidays(calendar),
		payroll.WithEmployeeRates(rates),
	)
}
