package engine

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/service"
)

// Responder produces a decision for one request. Returning false skips the request.
type Responder func(req model.ReviewRequest) (model.CorrectionDecision, bool)

// MockReviewer is a test implementation of the Reviewer interface.
// It answers each request with its Responder and records every call.
type MockReviewer struct {
	startTime time.Time
	err       error
	respond   Responder
	calls     []MockReviewCall
	corrected int
	skipped   int
	mu        sync.Mutex
}

// MockReviewCall records one round of review.
type MockReviewCall struct {
	Requests  []model.ReviewRequest
	Decisions []model.CorrectionDecision
}

// NewMockReviewer creates a mock reviewer.
func NewMockReviewer(respond Responder) *MockReviewer {
	return &MockReviewer{
		respond:   respond,
		startTime: time.Now(),
	}
}

// WithError makes every call fail with err.
func (m *MockReviewer) WithError(err error) *MockReviewer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// ReviewCorrections answers the requests.
func (m *MockReviewer) ReviewCorrections(ctx context.Context, requests []model.ReviewRequest) ([]model.CorrectionDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		m.calls = append(m.calls, MockReviewCall{Requests: requests})
		return nil, m.err
	}

	var decisions []model.CorrectionDecision
	for _, req := range requests {
		if m.respond == nil {
			m.skipped++
			continue
		}
		d, ok := m.respond(req)
		if !ok {
			m.skipped++
			continue
		}
		decisions = append(decisions, d)
		m.corrected++
	}

	m.calls = append(m.calls, MockReviewCall{Requests: requests, Decisions: decisions})
	return decisions, nil
}

// Calls returns every recorded round.
func (m *MockReviewer) Calls() []MockReviewCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockReviewCall(nil), m.calls...)
}

// GetCompletionStats returns statistics about the mock session.
func (m *MockReviewer) GetCompletionStats() service.CompletionStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, c := range m.calls {
		total += len(c.Requests)
	}
	return service.CompletionStats{
		TotalRequests: total,
		Corrected:     m.corrected,
		Skipped:       m.skipped,
		Duration:      time.Since(m.startTime),
	}
}

// ConfirmResponder treats an incomplete record's captured punch as the check-in and supplies
// checkOut, and confirms ambiguous records exactly as captured.
func ConfirmResponder(checkOut string) Responder {
	return func(req model.ReviewRequest) (model.CorrectionDecision, bool) {
		rec := req.Record
		switch req.Kind {
		case model.ReviewIncomplete:
			return model.CorrectionDecision{
				RecordID:     rec.ID,
				DeclaredType: model.PunchCheckIn,
				SuppliedTime: checkOut,
			}, true
		case model.ReviewAmbiguous:
			return model.CorrectionDecision{
				RecordID: rec.ID,
				CheckIn:  model.FormatPunch(rec.CheckIn),
				CheckOut: model.FormatPunch(rec.CheckOut),
			}, true
		default:
			return model.CorrectionDecision{}, false
		}
	}
}
