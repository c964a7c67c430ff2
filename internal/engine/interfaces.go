package engine

import (
	"context"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/service"
)

// Reviewer defines the contract for the human decisions the pipeline waits on.
// Returning no decisions defers the outstanding requests; returning
// common.ErrReviewAbandoned discards the batch.
type Reviewer interface {
	ReviewCorrections(ctx context.Context, requests []model.ReviewRequest) ([]model.CorrectionDecision, error)
	GetCompletionStats() service.CompletionStats
}
