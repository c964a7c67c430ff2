package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/punchclock/internal/model"
)

// SaveHoliday saves or renames a holiday.
func (s *SQLiteStorage) SaveHoliday(ctx context.Context, holiday *model.Holiday) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateHoliday(holiday); err != nil {
		return err
	}
	return s.saveHolidayTx(ctx, s.db, holiday)
}

func (s *SQLiteStorage) saveHolidayTx(ctx context.Context, q queryable, holiday *model.Holiday) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO holidays (date, name)
		VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET
			name = excluded.name
	`, holiday.Date, holiday.Name)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// GetHolidays retrieves every stored holiday ordered by date.
func (s *SQLiteStorage) GetHolidays(ctx context.Context) ([]model.Holiday, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getHolidaysTx(ctx, s.db, "", "")
}

// GetHolidaysBetween retrieves holidays in the inclusive date range.
func (s *SQLiteStorage) GetHolidaysBetween(ctx context.Context, start, end string) ([]model.Holiday, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}
	return s.getHolidaysTx(ctx, s.db, start, end)
}

func (s *SQLiteStorage) getHolidaysTx(ctx context.Context, q queryable, start, end string) ([]model.Holiday, error) {
	query := `SELECT date, name FROM holidays`
	var args []any
	if start != "" {
		query += ` WHERE date >= ? AND date <= ?`
		args = append(args, start, end)
	}
	query += ` ORDER BY date`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var holidays []model.Holiday
	for rows.Next() {
		var (
			h    model.Holiday
			name sql.NullString
		)
		if err := rows.Scan(&h.Date, &name); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		h.Name = name.String
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// DeleteHoliday removes a holiday.
func (s *SQLiteStorage) DeleteHoliday(ctx context.Context, date string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(date, "date"); err != nil {
		return err
	}
	return s.deleteHolidayTx(ctx, s.db, date)
}

func (s *SQLiteStorage) deleteHolidayTx(ctx context.Context, q queryable, date string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM holidays WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("holiday %s: %w", date, ErrNotFound)
	}
	return nil
}
