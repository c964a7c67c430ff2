// Package testutil provides shared test fixtures for punch: a migrated in-memory
// database and a fluent builder for attendance records.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/service"
	"github.com/Veraticus/punchclock/internal/storage"
)

// TestDB represents a test database with the data it was seeded with.
type TestDB struct {
	Storage  service.Storage
	t        *testing.T
	Holidays []model.Holiday
	Rates    []model.EmployeeRate
}

// Seed lists the rows written into a fresh test database.
type Seed struct {
	Holidays []model.Holiday
	Rates    []model.EmployeeRate
}

// SetupTestDB creates a migrated in-memory database seeded with seed.
// Cleanup is registered on t.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.Seed{
//		Holidays: []model.Holiday{{Date: "2024-01-01", Name: "Año Nuevo"}},
//	})
func SetupTestDB(t *testing.T, seed Seed) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for i := range seed.Holidays {
		if err := store.SaveHoliday(ctx, &seed.Holidays[i]); err != nil {
			t.Fatalf("failed to seed holiday %q: %v", seed.Holidays[i].Date, err)
		}
	}
	for i := range seed.Rates {
		if err := store.SaveEmployeeRate(ctx, &seed.Rates[i]); err != nil {
			t.Fatalf("failed to seed rate for %q: %v", seed.Rates[i].Name, err)
		}
	}

	return &TestDB{
		Storage:  store,
		Holidays: seed.Holidays,
		Rates:    seed.Rates,
		t:        t,
	}
}

// WithTransaction executes fn within a transaction that is always rolled back.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
