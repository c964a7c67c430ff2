package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/punchclock/internal/model"
)

// SaveBatch stores a suspended review batch, replacing any earlier snapshot with the same id.
func (s *SQLiteStorage) SaveBatch(ctx context.Context, batch *model.BatchSnapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBatch(batch); err != nil {
		return err
	}
	return s.saveBatchTx(ctx, s.db, batch)
}

func (s *SQLiteStorage) saveBatchTx(ctx context.Context, q queryable, batch *model.BatchSnapshot) error {
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now()
	}
	if batch.UpdatedAt.IsZero() {
		batch.UpdatedAt = batch.CreatedAt
	}

	snapshot, err := json.Marshal(batch.Records)
	if err != nil {
		return fmt.Errorf("failed to encode batch records: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO review_batches (id, document, source, policy, outstanding, created_at, updated_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			source = excluded.source,
			policy = excluded.policy,
			outstanding = excluded.outstanding,
			updated_at = excluded.updated_at,
			snapshot = excluded.snapshot
	`, batch.ID, batch.Document, string(batch.Source), batch.Policy, batch.Outstanding(),
		batch.CreatedAt.UTC(), batch.UpdatedAt.UTC(), string(snapshot))
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

// GetBatch loads a suspended batch.
func (s *SQLiteStorage) GetBatch(ctx context.Context, id string) (*model.BatchSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getBatchTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getBatchTx(ctx context.Context, q queryable, id string) (*model.BatchSnapshot, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, document, source, policy, created_at, updated_at, snapshot
		FROM review_batches
		WHERE id = ?
	`, id)

	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return batch, nil
}

// ListBatches returns every suspended batch, most recently updated first.
func (s *SQLiteStorage) ListBatches(ctx context.Context) ([]model.BatchSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listBatchesTx(ctx, s.db)
}

func (s *SQLiteStorage) listBatchesTx(ctx context.Context, q queryable) ([]model.BatchSnapshot, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, document, source, policy, created_at, updated_at, snapshot
		FROM review_batches
		ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batches []model.BatchSnapshot
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, *batch)
	}
	return batches, rows.Err()
}

// DeleteBatch discards a suspended batch.
func (s *SQLiteStorage) DeleteBatch(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteBatchTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteBatchTx(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM review_batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanBatch(row scanner) (*model.BatchSnapshot, error) {
	var (
		batch    model.BatchSnapshot
		source   string
		snapshot string
	)
	if err := row.Scan(&batch.ID, &batch.Document, &source, &batch.Policy,
		&batch.CreatedAt, &batch.UpdatedAt, &snapshot); err != nil {
		return nil, err
	}
	batch.Source = model.SourceKind(source)

	if err := json.Unmarshal([]byte(snapshot), &batch.Records); err != nil {
		return nil, fmt.Errorf("failed to decode batch %s: %w", batch.ID, err)
	}
	return &batch, nil
}
