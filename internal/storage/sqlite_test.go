package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/punchclock/internal/model"
)

// createTestStorage opens a migrated database in a temporary directory.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func clockPtr(h, m int) *model.ClockTime {
	c := model.MustClockTime(h, m)
	return &c
}

func testSnapshot(id string) *model.BatchSnapshot {
	return &model.BatchSnapshot{
		ID:        id,
		Document:  "marcaciones.txt",
		Source:    model.SourceText,
		Policy:    "batch",
		CreatedAt: time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		Records: []model.AttendanceRecord{
			{
				ID:       model.RecordID("Ana", "2024-01-05"),
				Employee: "Ana",
				Date:     "2024-01-05",
				State:    model.StateWellFormed,
				Source:   model.SourceText,
				CheckIn:  clockPtr(8, 0),
				CheckOut: clockPtr(17, 0),
			},
			{
				ID:       model.RecordID("Luis", "2024-01-05"),
				Employee: "Luis",
				Date:     "2024-01-05",
				State:    model.StateIncomplete,
				Source:   model.SourceText,
				CheckIn:  clockPtr(8, 0),
			},
		},
	}
}

func TestNewSQLiteStorage_Memory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
	_, err = store.NewCheckpointManager()
	assert.Error(t, err)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestHolidays(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, h := range []model.Holiday{
		{Date: "2024-12-25", Name: "Navidad"},
		{Date: "2024-01-01", Name: "Año Nuevo"},
		{Date: "2024-05-01"},
	} {
		require.NoError(t, store.SaveHoliday(ctx, &h))
	}

	all, err := store.GetHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-01-01", all[0].Date)
	assert.Equal(t, "Año Nuevo", all[0].Name)
	assert.Empty(t, all[1].Name)

	// Saving again renames.
	require.NoError(t, store.SaveHoliday(ctx, &model.Holiday{Date: "2024-05-01", Name: "Día del Trabajo"}))

	between, err := store.GetHolidaysBetween(ctx, "2024-04-01", "2024-06-30")
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, "Día del Trabajo", between[0].Name)

	_, err = store.GetHolidaysBetween(ctx, "2024-06-30", "2024-04-01")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	require.NoError(t, store.DeleteHoliday(ctx, "2024-12-25"))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, "2024-12-25"), ErrNotFound)

	err = store.SaveHoliday(ctx, &model.Holiday{Date: "25/12/2024"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestEmployeeRates(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployeeRate(ctx, &model.EmployeeRate{
		Name:       "Ana Gomez",
		NormalRate: decimal.NewFromInt(18000),
	}))
	require.NoError(t, store.SaveEmployeeRate(ctx, &model.EmployeeRate{
		Name:        "Luis Mora",
		NormalRate:  decimal.NewFromInt(15000),
		PremiumRate: decimal.RequireFromString("19500.50"),
	}))

	rate, err := store.GetEmployeeRate(ctx, "ANA GOMEZ")
	require.NoError(t, err)
	assert.Equal(t, "Ana Gomez", rate.Name)
	assert.True(t, rate.NormalRate.Equal(decimal.NewFromInt(18000)))
	assert.True(t, rate.PremiumRate.IsZero())

	// Updating through a different spelling keeps one row.
	require.NoError(t, store.SaveEmployeeRate(ctx, &model.EmployeeRate{
		Name:       "ana gomez",
		NormalRate: decimal.NewFromInt(20000),
	}))

	rates, err := store.GetEmployeeRates(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "ana gomez", rates[0].Name)
	assert.Equal(t, "20000", rates[0].NormalRate.String())
	assert.Equal(t, "19500.5", rates[1].PremiumRate.String())

	require.NoError(t, store.DeleteEmployeeRate(ctx, "Ana Gomez"))
	_, err = store.GetEmployeeRate(ctx, "Ana Gomez")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmployeeRates_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		rate *model.EmployeeRate
		name string
	}{
		{name: "nil", rate: nil},
		{name: "no name", rate: &model.EmployeeRate{NormalRate: decimal.NewFromInt(1)}},
		{name: "negative", rate: &model.EmployeeRate{Name: "x", NormalRate: decimal.NewFromInt(-1)}},
		{name: "no rates", rate: &model.EmployeeRate{Name: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.SaveEmployeeRate(ctx, tt.rate))
		})
	}
}

func TestBatches(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := testSnapshot("batch-1")
	require.NoError(t, store.SaveBatch(ctx, first))

	got, err := store.GetBatch(ctx, "batch-1")
	require.NoError(t, err)
	assert.Equal(t, "marcaciones.txt", got.Document)
	assert.Equal(t, model.SourceText, got.Source)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Records, 2)
	assert.Equal(t, first.Records[0].ID, got.Records[0].ID)
	assert.Equal(t, model.StateWellFormed, got.Records[0].State)
	assert.Equal(t, *first.Records[0].CheckOut, *got.Records[0].CheckOut)
	assert.True(t, got.Records[0].Deductions.Total().IsZero())
	assert.Nil(t, got.Records[1].CheckOut)
	assert.Equal(t, 1, got.Outstanding())

	second := testSnapshot("batch-2")
	second.UpdatedAt = second.UpdatedAt.Add(time.Hour)
	second.Policy = "per-record"
	require.NoError(t, store.SaveBatch(ctx, second))

	list, err := store.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "batch-2", list[0].ID)

	// Saving again replaces the snapshot.
	first.Records = first.Records[:1]
	first.UpdatedAt = first.UpdatedAt.Add(2 * time.Hour)
	require.NoError(t, store.SaveBatch(ctx, first))
	got, err = store.GetBatch(ctx, "batch-1")
	require.NoError(t, err)
	assert.Len(t, got.Records, 1)

	var outstanding int
	require.NoError(t, store.db.QueryRow(`SELECT outstanding FROM review_batches WHERE id = ?`, "batch-2").Scan(&outstanding))
	assert.Equal(t, 1, outstanding)

	require.NoError(t, store.DeleteBatch(ctx, "batch-1"))
	_, err = store.GetBatch(ctx, "batch-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteBatch(ctx, "batch-1"), ErrNotFound)
}

func TestBatches_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	bad := testSnapshot("b")
	bad.Policy = "sometimes"
	assert.ErrorIs(t, store.SaveBatch(ctx, bad), ErrInvalidBatch)

	bad = testSnapshot("b")
	bad.Source = "fax"
	assert.ErrorIs(t, store.SaveBatch(ctx, bad), ErrInvalidBatch)

	assert.ErrorIs(t, store.SaveBatch(ctx, testSnapshot("")), ErrInvalidBatch)
	assert.ErrorIs(t, store.SaveBatch(ctx, nil), ErrNilParameter)
}

func TestTransaction(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SaveHoliday(ctx, &model.Holiday{Date: "2024-01-01", Name: "Año Nuevo"}))
	require.NoError(t, tx.SaveBatch(ctx, testSnapshot("tx-batch")))
	require.NoError(t, tx.Rollback())

	holidays, err := store.GetHolidays(ctx)
	require.NoError(t, err)
	assert.Empty(t, holidays)
	_, err = store.GetBatch(ctx, "tx-batch")
	assert.ErrorIs(t, err, ErrNotFound)

	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SaveHoliday(ctx, &model.Holiday{Date: "2024-01-01", Name: "Año Nuevo"}))
	inside, err := tx.GetHolidays(ctx)
	require.NoError(t, err)
	assert.Len(t, inside, 1)

	assert.Error(t, tx.Migrate(ctx))
	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
	assert.Error(t, tx.Close())
	require.NoError(t, tx.Commit())

	holidays, err = store.GetHolidays(ctx)
	require.NoError(t, err)
	assert.Len(t, holidays, 1)
}
