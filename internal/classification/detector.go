package classification

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Veraticus/punchclock/internal/model"
)

// Rule is one plausibility heuristic applied to well-formed records.
type Rule struct {
	Check func(in, out model.ClockTime) bool
	// ExplainedBy lists reasons that, when also present, make this one redundant.
	ExplainedBy []model.AmbiguityReason
	Reason      model.AmbiguityReason
	Priority    int // Higher priority rules are evaluated first
}

// Detector flags well-formed records whose punches look wrong.
type Detector struct {
	rules []Rule
	mu    sync.RWMutex
}

// NewDetector creates a detector with the given rules.
func NewDetector(rules []Rule) (*Detector, error) {
	sorted, err := prepareRules(rules)
	if err != nil {
		return nil, err
	}
	return &Detector{rules: sorted}, nil
}

// NewDefaultDetector creates a detector with DefaultRules(DefaultThresholds()).
func NewDefaultDetector() *Detector {
	d, err := NewDetector(DefaultRules(DefaultThresholds()))
	if err != nil {
		panic(err)
	}
	return d
}

func prepareRules(rules []Rule) ([]Rule, error) {
	sorted := slices.Clone(rules)
	for _, r := range sorted {
		if r.Check == nil {
			return nil, fmt.Errorf("rule %s has no check", r.Reason)
		}
		if r.Reason == "" {
			return nil, fmt.Errorf("rule with priority %d has no reason", r.Priority)
		}
	}
	slices.SortStableFunc(sorted, func(a, b Rule) int {
		return b.Priority - a.Priority
	})
	return sorted, nil
}

// Reasons evaluates every rule against a check-in/check-out pair.
func (d *Detector) Reasons(in, out model.ClockTime) []model.AmbiguityReason {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var fired []Rule
	for _, r := range d.rules {
		if r.Check(in, out) {
			fired = append(fired, r)
		}
	}

	var reasons []model.AmbiguityReason
	for _, r := range fired {
		if explained(r, fired) {
			continue
		}
		reasons = append(reasons, r.Reason)
	}
	return reasons
}

func explained(r Rule, fired []Rule) bool {
	for _, other := range fired {
		if slices.Contains(r.ExplainedBy, other.Reason) {
			return true
		}
	}
	return false
}

// Detect flags a WellFormed record as Ambiguous when any rule fires.
// Records in every other state, including Corrected, are returned unchanged.
func (d *Detector) Detect(rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	if rec.State != model.StateWellFormed || rec.CheckIn == nil || rec.CheckOut == nil {
		return rec, nil
	}

	reasons := d.Reasons(*rec.CheckIn, *rec.CheckOut)
	if len(reasons) == 0 {
		return rec, nil
	}

	out := rec.Clone()
	if err := out.Transition(model.StateAmbiguous); err != nil {
		return rec, err
	}
	out.Reasons = reasons
	slog.Debug("Record flagged ambiguous",
		"employee", rec.Employee,
		"date", rec.Date,
		"check_in", rec.CheckIn.String(),
		"check_out", rec.CheckOut.String(),
		"reasons", reasons)
	return out, nil
}

// Run classifies and screens every record, returning new records in the same order.
func (d *Detector) Run(ctx context.Context, records []model.AttendanceRecord) ([]model.AttendanceRecord, error) {
	out := make([]model.AttendanceRecord, 0, len(records))
	for _, rec := range records {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		classified, err := Complete(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to classify record %s: %w", rec.ID, err)
		}
		screened, err := d.Detect(classified)
		if err != nil {
			return nil, fmt.Errorf("failed to screen record %s: %w", rec.ID, err)
		}
		out = append(out, screened)
	}
	return out, nil
}

// UpdateRules replaces the detector's rules.
func (d *Detector) UpdateRules(rules []Rule) error {
	sorted, err := prepareRules(rules)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.rules = sorted
	d.mu.Unlock()
	return nil
}

// RuleCount returns the number of loaded rules.
func (d *Detector) RuleCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rules)
}
