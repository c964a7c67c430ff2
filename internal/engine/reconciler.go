// Package engine runs attendance documents through normalization, grouping,
// classification, review and payroll.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/punchclock/internal/classification"
	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/correction"
	"github.com/Veraticus/punchclock/internal/grouper"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
	"github.com/Veraticus/punchclock/internal/payroll"
	"github.com/Veraticus/punchclock/internal/source"
)

// Config holds configuration options for the reconciler.
type Config struct {
	Now       func() time.Time
	Policy    correction.ReleasePolicy
	Normalize normalize.Config
	Grouper   grouper.Config
	MaxRounds int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Normalize: normalize.DefaultConfig(),
		Grouper:   grouper.DefaultConfig(),
		Policy:    correction.ReleaseBatch,
		MaxRounds: 20,
		Now:       time.Now,
	}
}

// Reconciler orchestrates one document at a time through the pipeline.
type Reconciler struct {
	detector   *classification.Detector
	calculator *payroll.Calculator
	newID      func() string
	cfg        Config
}

// New creates a reconciler with the given stages.
func New(detector *classification.Detector, calculator *payroll.Calculator, cfg Config) *Reconciler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Policy == "" {
		cfg.Policy = correction.ReleaseBatch
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultConfig().MaxRounds
	}
	if cfg.Normalize.Now == nil {
		cfg.Normalize.Now = cfg.Now
	}
	if cfg.Grouper.Now == nil {
		cfg.Grouper.Now = cfg.Now
	}
	return &Reconciler{
		detector:   detector,
		calculator: calculator,
		cfg:        cfg,
		newID:      func() string { return uuid.New().String() },
	}
}

// Ingest normalizes, groups and classifies a document into a new batch.
func (r *Reconciler) Ingest(ctx context.Context, doc source.Document) (*Batch, error) {
	var (
		records []model.AttendanceRecord
		stats   normalize.Stats
	)

	g := grouper.New(r.cfg.Grouper)
	switch doc.Kind {
	case model.SourceSpreadsheet:
		records = g.FromRows(doc.Rows)
	default:
		n, err := normalize.New(r.cfg.Normalize)
		if err != nil {
			return nil, fmt.Errorf("failed to build normalizer: %w", err)
		}
		records = g.Group(doc.Lines, n.Tokens(doc.Lines))
		stats = n.Stats()
		common.Logger(ctx).Info("Normalized document",
			"document", doc.Name,
			"lines", stats.Lines,
			"matched", stats.Matched,
			"unmatched", stats.Unmatched,
			"ignored", stats.Ignored,
			"tokens", stats.Tokens)
		if stats.DateFallbacks > 0 {
			common.Logger(ctx).Warn("Times found before any date; today's date was used", "count", stats.DateFallbacks)
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.Name, common.ErrExtractionEmpty)
	}

	classified, err := r.detector.Run(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to classify records: %w", err)
	}

	batch := &Batch{
		ID:        r.newID(),
		Document:  doc.Name,
		Source:    doc.Kind,
		Policy:    r.cfg.Policy,
		CreatedAt: r.cfg.Now(),
		Records:   classified,
		Pending:   correction.NewPending(classified),
		Stats:     stats,
	}

	counts := batch.Counts()
	common.Logger(ctx).Info("Batch classified",
		"batch", batch.ID,
		"records", len(classified),
		"well_formed", counts[model.StateWellFormed],
		"incomplete", counts[model.StateIncomplete],
		"ambiguous", counts[model.StateAmbiguous],
		"absent", counts[model.StateAbsent])
	return batch, nil
}

// Apply submits reviewer decisions and returns the updated batch with any rejections.
// The input batch is not modified.
func (r *Reconciler) Apply(batch *Batch, decisions []model.CorrectionDecision) (*Batch, []model.Rejection, error) {
	if batch == nil {
		return nil, nil, fmt.Errorf("apply decisions: nil batch")
	}
	pending, rejections := batch.Pending.SubmitAll(decisions)
	for _, rej := range rejections {
		slog.Info("Correction rejected", "record", rej.Decision.RecordID, "reason", rej.Reason)
	}

	next := *batch
	next.Pending = pending
	next.Records = slices.Clone(batch.Records)
	return &next, rejections, nil
}

// Finalize merges accepted corrections and computes payroll for released records.
// Under the batch policy it fails with a BatchIncompleteError while any request is outstanding.
func (r *Reconciler) Finalize(ctx context.Context, batch *Batch) (*payroll.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := correction.Merge(batch.Records, batch.Pending, batch.Policy)
	if err != nil {
		return nil, err
	}

	excluded := res.Excluded
	for _, held := range res.Held {
		excluded = append(excluded, model.Excluded{Record: held, Reason: "awaiting review"})
	}

	report := r.calculator.Run(res.Released, excluded)
	common.Logger(ctx).Info("Payroll computed",
		"batch", batch.ID,
		"paid", len(report.Breakdowns),
		"excluded", len(report.Excluded),
		"net_total", payroll.RoundCurrency(report.NetTotal()).String())
	return report, nil
}

// Review loops between the reviewer and the correction gate until nothing is outstanding,
// then finalizes. Rejected decisions are re-surfaced on the next round.
//
// If the reviewer defers (returns no decisions), the batch is returned with a
// BatchIncompleteError under the batch policy so the caller can suspend it; under the
// per-record policy the decided records are paid and the rest are excluded.
// If the reviewer abandons or ctx is cancelled, the batch is discarded.
func (r *Reconciler) Review(ctx context.Context, batch *Batch, reviewer Reviewer) (*Batch, *payroll.Report, error) {
	for round := 1; ; round++ {
		outstanding := batch.Outstanding()
		if len(outstanding) == 0 {
			break
		}
		if round > r.cfg.MaxRounds {
			return batch, nil, fmt.Errorf("giving up after %d review rounds: %w", r.cfg.MaxRounds,
				&common.BatchIncompleteError{Outstanding: batch.Pending.OutstandingIDs()})
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("batch %s discarded: %w", batch.ID, err)
		}

		common.Logger(ctx).Debug("Requesting review", "batch", batch.ID, "round", round, "requests", len(outstanding))
		decisions, err := reviewer.ReviewCorrections(ctx, outstanding)
		if err != nil {
			if errors.Is(err, common.ErrReviewAbandoned) || errors.Is(err, context.Canceled) {
				common.Logger(ctx).Info("Review abandoned, discarding batch", "batch", batch.ID)
				return nil, nil, fmt.Errorf("batch %s discarded: %w", batch.ID, err)
			}
			return batch, nil, fmt.Errorf("failed to review corrections: %w", err)
		}
		if len(decisions) == 0 {
			break
		}

		batch, _, err = r.Apply(batch, decisions)
		if err != nil {
			return nil, nil, err
		}
	}

	report, err := r.Finalize(ctx, batch)
	if err != nil {
		return batch, nil, err
	}
	return batch, report, nil
}

// Reconcile runs a document end to end with a reviewer.
func (r *Reconciler) Reconcile(ctx context.Context, doc source.Document, reviewer Reviewer) (*Batch, *payroll.Report, error) {
	batch, err := r.Ingest(ctx, doc)
	if err != nil {
		return nil, nil, err
	}
	return r.Review(ctx, batch, reviewer)
}
