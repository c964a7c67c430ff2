// Package classification decides whether attendance records are complete and plausible.
package classification

import (
	"github.com/Veraticus/punchclock/internal/model"
)

// Classify reports the completeness of a record from its punches alone.
// It is total and deterministic: no punches is Absent, one is Incomplete, two is WellFormed.
func Classify(rec model.AttendanceRecord) model.ClassificationState {
	switch rec.PunchCount() {
	case 0:
		return model.StateAbsent
	case 1:
		return model.StateIncomplete
	default:
		return model.StateWellFormed
	}
}

// Complete tags an unclassified record with its completeness state.
// Records that already carry a state are returned unchanged.
func Complete(rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	if rec.State != model.StateUnclassified {
		return rec, nil
	}
	out := rec.Clone()
	if err := out.Transition(Classify(rec)); err != nil {
		return rec, err
	}
	return out, nil
}
