// Package correction holds reviewer decisions for flagged records and merges them back.
package correction

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
)

// accepted is a validated decision with its punches already parsed.
type accepted struct {
	decision model.CorrectionDecision
	checkIn  model.ClockTime
	checkOut model.ClockTime
}

type entry struct {
	decision *accepted
	request  model.ReviewRequest
}

// PendingCorrections maps record ids to the review request for each flagged record
// and at most one accepted decision. Values are immutable: Submit returns a new snapshot.
type PendingCorrections struct {
	entries map[string]entry
	order   []string
}

// NewPending opens one review request per Incomplete or Ambiguous record.
func NewPending(records []model.AttendanceRecord) PendingCorrections {
	p := PendingCorrections{entries: make(map[string]entry)}
	for _, rec := range records {
		var kind model.ReviewKind
		switch rec.State {
		case model.StateIncomplete:
			kind = model.ReviewIncomplete
		case model.StateAmbiguous:
			kind = model.ReviewAmbiguous
		default:
			continue
		}
		if _, dup := p.entries[rec.ID]; dup {
			continue
		}
		p.entries[rec.ID] = entry{request: model.ReviewRequest{Kind: kind, Record: rec.Clone()}}
		p.order = append(p.order, rec.ID)
	}
	return p
}

func (p PendingCorrections) with(id string, e entry) PendingCorrections {
	next := PendingCorrections{
		entries: maps.Clone(p.entries),
		order:   p.order,
	}
	if next.entries == nil {
		next.entries = make(map[string]entry)
	}
	next.entries[id] = e
	return next
}

// Len returns the number of review requests.
func (p PendingCorrections) Len() int {
	return len(p.order)
}

// Requests returns every review request in record order.
func (p PendingCorrections) Requests() []model.ReviewRequest {
	out := make([]model.ReviewRequest, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id].request)
	}
	return out
}

// Outstanding returns the requests that still lack an accepted decision.
func (p PendingCorrections) Outstanding() []model.ReviewRequest {
	var out []model.ReviewRequest
	for _, id := range p.order {
		if e := p.entries[id]; e.decision == nil {
			out = append(out, e.request)
		}
	}
	return out
}

// OutstandingIDs returns the ids of records still awaiting a decision.
func (p PendingCorrections) OutstandingIDs() []string {
	var ids []string
	for _, id := range p.order {
		if p.entries[id].decision == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Decided returns how many requests have an accepted decision.
func (p PendingCorrections) Decided() int {
	return p.Len() - len(p.OutstandingIDs())
}

// Request looks up the review request for a record.
func (p PendingCorrections) Request(id string) (model.ReviewRequest, bool) {
	e, ok := p.entries[id]
	return e.request, ok
}

// Decision returns the accepted decision for a record, if any.
func (p PendingCorrections) Decision(id string) (model.CorrectionDecision, bool) {
	e, ok := p.entries[id]
	if !ok || e.decision == nil {
		return model.CorrectionDecision{}, false
	}
	return e.decision.decision, true
}

// Submit validates a decision against its request. On success the returned snapshot holds
// the decision, replacing any earlier one for the same record. On rejection the returned
// snapshot carries the re-surfaced request with its attempt count and error; p itself is never changed.
func (p PendingCorrections) Submit(d model.CorrectionDecision) (PendingCorrections, error) {
	e, ok := p.entries[d.RecordID]
	if !ok {
		return p, fmt.Errorf("%w: %s", common.ErrRecordNotFound, d.RecordID)
	}

	resolved, err := validate(e.request, d)
	if err != nil {
		rejected := e
		rejected.request.Attempts++
		rejected.request.LastError = err.Error()
		return p.with(d.RecordID, rejected), err
	}

	e.decision = &resolved
	e.request.LastError = ""
	return p.with(d.RecordID, e), nil
}

// SubmitAll submits each decision in turn and collects the rejected ones.
func (p PendingCorrections) SubmitAll(decisions []model.CorrectionDecision) (PendingCorrections, []model.Rejection) {
	var rejections []model.Rejection
	for _, d := range decisions {
		next, err := p.Submit(d)
		if err != nil {
			rejections = append(rejections, model.Rejection{Decision: d, Reason: err.Error()})
		}
		p = next
	}
	return p, rejections
}

// validate parses the supplied values with the same parser used for documents.
func validate(req model.ReviewRequest, d model.CorrectionDecision) (accepted, error) {
	rec := req.Record
	switch req.Kind {
	case model.ReviewIncomplete:
		captured, ok := rec.Captured()
		if !ok {
			return accepted{}, invalid("record %s has no single captured punch", rec.ID)
		}
		if strings.TrimSpace(d.SuppliedTime) == "" {
			return accepted{}, invalid("missing supplied time")
		}
		supplied, err := normalize.ParseClock(d.SuppliedTime)
		if err != nil {
			return accepted{}, invalid("supplied time: %v", err)
		}
		if supplied == captured {
			return accepted{}, invalid("supplied time %s equals the captured punch", supplied)
		}
		switch d.DeclaredType {
		case model.PunchCheckIn:
			return accepted{decision: d, checkIn: captured, checkOut: supplied}, nil
		case model.PunchCheckOut:
			return accepted{decision: d, checkIn: supplied, checkOut: captured}, nil
		default:
			return accepted{}, invalid("declare whether %s was a check-in or a check-out", captured)
		}

	case model.ReviewAmbiguous:
		if strings.TrimSpace(d.CheckIn) == "" || strings.TrimSpace(d.CheckOut) == "" {
			return accepted{}, invalid("both check-in and check-out are required")
		}
		in, err := normalize.ParseClock(d.CheckIn)
		if err != nil {
			return accepted{}, invalid("check-in: %v", err)
		}
		out, err := normalize.ParseClock(d.CheckOut)
		if err != nil {
			return accepted{}, invalid("check-out: %v", err)
		}
		if in == out {
			return accepted{}, invalid("check-in and check-out are both %s", in)
		}
		return accepted{decision: d, checkIn: in, checkOut: out}, nil

	default:
		return accepted{}, invalid("unknown review kind %q", req.Kind)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidCorrection, fmt.Sprintf(format, args...))
}

// IsRejection reports whether err came from a decision failing validation.
func IsRejection(err error) bool {
	return errors.Is(err, common.ErrInvalidCorrection)
}
