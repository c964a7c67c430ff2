package correction

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
)

// ReleasePolicy decides when corrected records may advance to payroll.
type ReleasePolicy string

// Release policies.
const (
	// ReleaseBatch holds every correction until all flagged records in the batch are decided.
	ReleaseBatch ReleasePolicy = "batch"
	// ReleasePerRecord releases each corrected record as soon as its decision is accepted.
	ReleasePerRecord ReleasePolicy = "per-record"
)

// ParseReleasePolicy validates a configured policy. Empty means ReleaseBatch.
func ParseReleasePolicy(s string) (ReleasePolicy, error) {
	switch ReleasePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case ReleaseBatch, "":
		return ReleaseBatch, nil
	case ReleasePerRecord, "per_record", "record":
		return ReleasePerRecord, nil
	default:
		return "", fmt.Errorf("%w: unknown release policy %q", common.ErrInvalidConfig, s)
	}
}

// Result partitions a batch after merging.
type Result struct {
	Released []model.AttendanceRecord // WellFormed or Corrected, ready for payroll
	Held     []model.AttendanceRecord // still awaiting a decision
	Excluded []model.Excluded         // never payable
}

// Merge applies accepted decisions to records. Each record is corrected atomically:
// an incomplete record gets the captured punch on the declared side and the supplied one
// on the other, an ambiguous record gets both punches overwritten.
//
// Under ReleaseBatch, any outstanding request returns a BatchIncompleteError and no
// correction is applied; well-formed records are still reported as released.
func Merge(records []model.AttendanceRecord, pending PendingCorrections, policy ReleasePolicy) (Result, error) {
	var gateErr error
	if policy != ReleasePerRecord {
		if outstanding := pending.OutstandingIDs(); len(outstanding) > 0 {
			gateErr = &common.BatchIncompleteError{Outstanding: outstanding}
		}
	}

	var res Result
	for _, rec := range records {
		switch {
		case rec.State.Payable():
			res.Released = append(res.Released, rec.Clone())

		case rec.State.NeedsReview():
			e, ok := pending.entries[rec.ID]
			if gateErr != nil || !ok || e.decision == nil {
				res.Held = append(res.Held, rec.Clone())
				continue
			}
			corrected, err := apply(rec, *e.decision)
			if err != nil {
				return Result{}, err
			}
			res.Released = append(res.Released, corrected)

		default:
			res.Excluded = append(res.Excluded, model.Excluded{
				Record: rec.Clone(),
				Reason: exclusionReason(rec),
			})
		}
	}

	if gateErr != nil {
		slog.Info("Batch held until every flagged record is reviewed",
			"outstanding", len(res.Held),
			"released", len(res.Released))
	}
	return res, gateErr
}

// apply produces the corrected copy of rec; rec itself is left untouched.
func apply(rec model.AttendanceRecord, a accepted) (model.AttendanceRecord, error) {
	out := rec.Clone()
	out.CheckIn = model.ClockPtr(a.checkIn)
	out.CheckOut = model.ClockPtr(a.checkOut)
	if err := out.Transition(model.StateCorrected); err != nil {
		return model.AttendanceRecord{}, fmt.Errorf("failed to correct record %s: %w", rec.ID, err)
	}
	slog.Debug("Correction applied",
		"employee", out.Employee,
		"date", out.Date,
		"check_in", out.CheckIn.String(),
		"check_out", out.CheckOut.String())
	return out, nil
}

func exclusionReason(rec model.AttendanceRecord) string {
	switch rec.State {
	case model.StateAbsent:
		return "absent: no punches recorded"
	case model.StateUnclassified:
		return "not classified"
	default:
		return fmt.Sprintf("not payable in state %s", rec.State)
	}
}
