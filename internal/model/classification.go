// Package model defines the core domain models used throughout the application.
package model

import (
	"errors"
	"fmt"
)

// ClassificationState tags an attendance record with how far it got through reconciliation.
type ClassificationState string

// Classification state constants.
const (
	StateUnclassified ClassificationState = ""
	StateWellFormed   ClassificationState = "WELL_FORMED"
	StateIncomplete   ClassificationState = "INCOMPLETE"
	StateAbsent       ClassificationState = "ABSENT"
	StateAmbiguous    ClassificationState = "AMBIGUOUS"
	StateCorrected    ClassificationState = "CORRECTED"
)

// ErrInvalidTransition is returned when a record would move backwards or skip a stage.
var ErrInvalidTransition = errors.New("invalid classification transition")

var allowedTransitions = map[ClassificationState][]ClassificationState{
	StateUnclassified: {StateWellFormed, StateIncomplete, StateAbsent},
	StateWellFormed:   {StateAmbiguous},
	StateIncomplete:   {StateCorrected},
	StateAmbiguous:    {StateCorrected},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s ClassificationState) CanTransitionTo(next ClassificationState) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NeedsReview reports whether records in this state wait on a reviewer decision.
func (s ClassificationState) NeedsReview() bool {
	return s == StateIncomplete || s == StateAmbiguous
}

// Payable reports whether records in this state may reach payroll.
func (s ClassificationState) Payable() bool {
	return s == StateWellFormed || s == StateCorrected
}

// String returns a readable label.
func (s ClassificationState) String() string {
	if s == StateUnclassified {
		return "UNCLASSIFIED"
	}
	return string(s)
}

// AmbiguityReason names a plausibility rule that flagged a record.
type AmbiguityReason string

// Ambiguity reasons produced by the default detector rules.
const (
	ReasonInvertedOrder   AmbiguityReason = "inverted-order"
	ReasonNightShiftSplit AmbiguityReason = "night-shift-split"
	ReasonEarlyStart      AmbiguityReason = "early-start"
)

// Transition moves the record to next, enforcing the forward-only state machine.
func (r *AttendanceRecord) Transition(next ClassificationState) error {
	if !r.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s (record %s)", ErrInvalidTransition, r.State, next, r.ID)
	}
	r.State = next
	return nil
}
