package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/punchclock/internal/model"
)

// SaveEmployeeRate saves or updates an employee's rate override.
func (s *SQLiteStorage) SaveEmployeeRate(ctx context.Context, rate *model.EmployeeRate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEmployeeRate(rate); err != nil {
		return err
	}
	return s.saveEmployeeRateTx(ctx, s.db, rate)
}

func (s *SQLiteStorage) saveEmployeeRateTx(ctx context.Context, q queryable, rate *model.EmployeeRate) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO employees (name, key, normal_rate, premium_rate)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			normal_rate = excluded.normal_rate,
			premium_rate = excluded.premium_rate,
			updated_at = CURRENT_TIMESTAMP
	`, rate.Name, rateKey(rate.Name), rate.NormalRate.String(), rate.PremiumRate.String())
	if err != nil {
		return fmt.Errorf("failed to save employee rate: %w", err)
	}

	s.cacheRate(rate)
	return nil
}

// GetEmployeeRate retrieves one employee's rates. Names match case-insensitively.
func (s *SQLiteStorage) GetEmployeeRate(ctx context.Context, name string) (*model.EmployeeRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	if rate := s.cachedRate(name); rate != nil {
		return rate, nil
	}
	return s.getEmployeeRateTx(ctx, s.db, name)
}

func (s *SQLiteStorage) getEmployeeRateTx(ctx context.Context, q queryable, name string) (*model.EmployeeRate, error) {
	row := q.QueryRowContext(ctx, `
		SELECT name, normal_rate, premium_rate
		FROM employees
		WHERE key = ?
	`, rateKey(name))

	rate, err := scanRate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("employee %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee rate: %w", err)
	}

	s.cacheRate(rate)
	return rate, nil
}

// GetEmployeeRates retrieves every rate override ordered by name.
func (s *SQLiteStorage) GetEmployeeRates(ctx context.Context) ([]model.EmployeeRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getEmployeeRatesTx(ctx, s.db)
}

func (s *SQLiteStorage) getEmployeeRatesTx(ctx context.Context, q queryable) ([]model.EmployeeRate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name, normal_rate, premium_rate
		FROM employees
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee rates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rates []model.EmployeeRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee rate: %w", err)
		}
		rates = append(rates, *rate)
	}
	return rates, rows.Err()
}

// DeleteEmployeeRate removes an employee's override.
func (s *SQLiteStorage) DeleteEmployeeRate(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	return s.deleteEmployeeRateTx(ctx, s.db, name)
}

func (s *SQLiteStorage) deleteEmployeeRateTx(ctx context.Context, q queryable, name string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM employees WHERE key = ?`, rateKey(name))
	if err != nil {
		return fmt.Errorf("failed to delete employee rate: %w", err)
	}
	s.uncacheRate(name)
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("employee %s: %w", name, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRate(row scanner) (*model.EmployeeRate, error) {
	var (
		rate            model.EmployeeRate
		normal, premium string
	)
	if err := row.Scan(&rate.Name, &normal, &premium); err != nil {
		return nil, err
	}

	var err error
	if rate.NormalRate, err = decimal.NewFromString(normal); err != nil {
		return nil, fmt.Errorf("normal rate %q: %w", normal, err)
	}
	if rate.PremiumRate, err = decimal.NewFromString(premium); err != nil {
		return nil, fmt.Errorf("premium rate %q: %w", premium, err)
	}
	return &rate, nil
}
