package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db        *sql.DB
	rateCache map[string]*model.EmployeeRate
	dbPath    string
	cacheMu   sync.RWMutex
}

var _ service.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLite storage instance.
// The special path ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	if dbPath == ":memory:" {
		dsn = "file::memory:?cache=private&_foreign_keys=on"
	} else {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and an in-memory
	// database only lives as long as its single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:        db,
		dbPath:    dbPath,
		rateCache: make(map[string]*model.EmployeeRate),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// NewCheckpointManager creates a new checkpoint manager for this storage instance.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	if s.dbPath == ":memory:" {
		return nil, fmt.Errorf("checkpoints require a database file")
	}
	return NewCheckpointManager(s.db, s.dbPath)
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

func rateKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *SQLiteStorage) cachedRate(name string) *model.EmployeeRate {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	if r, ok := s.rateCache[rateKey(name)]; ok {
		cp := *r
		return &cp
	}
	return nil
}

func (s *SQLiteStorage) cacheRate(r *model.EmployeeRate) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	cp := *r
	s.rateCache[rateKey(r.Name)] = &cp
}

func (s *SQLiteStorage) uncacheRate(name string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rateCache, rateKey(name))
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) SaveHoliday(ctx context.Context, holiday *model.Holiday) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateHoliday(holiday); err != nil {
		return err
	}
	return t.storage.saveHolidayTx(ctx, t.tx, holiday)
}

func (t *sqliteTransaction) GetHolidays(ctx context.Context) ([]model.Holiday, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getHolidaysTx(ctx, t.tx, "", "")
}

func (t *sqliteTransaction) GetHolidaysBetween(ctx context.Context, start, end string) ([]model.Holiday, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}
	return t.storage.getHolidaysTx(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) DeleteHoliday(ctx context.Context, date string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(date, "date"); err != nil {
		return err
	}
	return t.storage.deleteHolidayTx(ctx, t.tx, date)
}

func (t *sqliteTransaction) SaveEmployeeRate(ctx context.Context, rate *model.EmployeeRate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEmployeeRate(rate); err != nil {
		return err
	}
	return t.storage.saveEmployeeRateTx(ctx, t.tx, rate)
}

func (t *sqliteTransaction) GetEmployeeRate(ctx context.Context, name string) (*model.EmployeeRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.getEmployeeRateTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetEmployeeRates(ctx context.Context) ([]model.EmployeeRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getEmployeeRatesTx(ctx, t.tx)
}

func (t *sqliteTransaction) DeleteEmployeeRate(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	return t.storage.deleteEmployeeRateTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) SaveBatch(ctx context.Context, batch *model.BatchSnapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBatch(batch); err != nil {
		return err
	}
	return t.storage.saveBatchTx(ctx, t.tx, batch)
}

func (t *sqliteTransaction) GetBatch(ctx context.Context, id string) (*model.BatchSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getBatchTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListBatches(ctx context.Context) ([]model.BatchSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listBatchesTx(ctx, t.tx)
}

func (t *sqliteTransaction) DeleteBatch(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return t.storage.deleteBatchTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
