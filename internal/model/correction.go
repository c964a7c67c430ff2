package model

import "fmt"

// PunchType says which side of the workday a punch belongs to.
type PunchType string

// Punch types.
const (
	PunchCheckIn  PunchType = "check_in"
	PunchCheckOut PunchType = "check_out"
)

// ParsePunchType accepts the reviewer spellings for check-in and check-out.
func ParsePunchType(s string) (PunchType, error) {
	switch s {
	case "in", "i", "check_in", "checkin", "entrada", "e":
		return PunchCheckIn, nil
	case "out", "o", "check_out", "checkout", "salida", "s":
		return PunchCheckOut, nil
	default:
		return "", fmt.Errorf("unknown punch type %q", s)
	}
}

// ReviewKind says which correction shape a review request expects.
type ReviewKind string

// Review kinds.
const (
	ReviewIncomplete ReviewKind = "incomplete"
	ReviewAmbiguous  ReviewKind = "ambiguous"
)

// ReviewRequest asks a reviewer for exactly one decision about a flagged record.
type ReviewRequest struct {
	LastError string
	Kind      ReviewKind
	Record    AttendanceRecord
	Attempts  int
}

// CorrectionDecision is reviewer input for one flagged record.
// Incomplete records use DeclaredType and SuppliedTime; ambiguous records use CheckIn and CheckOut.
// Decisions are consumed once by the merge step and never stored.
type CorrectionDecision struct {
	RecordID     string
	DeclaredType PunchType
	SuppliedTime string
	CheckIn      string
	CheckOut     string
}

// Rejection describes a decision that could not be applied.
type Rejection struct {
	Decision CorrectionDecision
	Reason   string
}
