package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/testutil"
)

func incompleteRequest() model.ReviewRequest {
	rec := testutil.NewRecord("Luis Mora", "2024-01-05").In(8, 0).State(model.StateIncomplete).Build()
	return model.ReviewRequest{Kind: model.ReviewIncomplete, Record: rec}
}

func ambiguousRequest() model.ReviewRequest {
	rec := testutil.NewRecord("Marta Diaz", "2024-01-05").In(23, 0).Out(2, 0).State(model.StateAmbiguous).Build()
	rec.Reasons = []model.AmbiguityReason{model.ReasonNightShiftSplit}
	return model.ReviewRequest{Kind: model.ReviewAmbiguous, Record: rec}
}

func TestPrompter_ReviewCorrections(t *testing.T) {
	inc := incompleteRequest()
	amb := ambiguousRequest()

	tests := []struct {
		name     string
		input    string
		requests []model.ReviewRequest
		want     []model.CorrectionDecision
		skipped  int
	}{
		{
			name:     "captured punch is check-in",
			input:    "i\n17:00\n",
			requests: []model.ReviewRequest{inc},
			want:     []model.CorrectionDecision{{RecordID: inc.Record.ID, DeclaredType: model.PunchCheckIn, SuppliedTime: "17:00"}},
		},
		{
			name:     "captured punch is check-out with re-prompt",
			input:    "x\no\ntarde\n6:30 am\n",
			requests: []model.ReviewRequest{inc},
			want:     []model.CorrectionDecision{{RecordID: inc.Record.ID, DeclaredType: model.PunchCheckOut, SuppliedTime: "06:30"}},
		},
		{
			name:     "confirm ambiguous as captured",
			input:    "c\n",
			requests: []model.ReviewRequest{amb},
			want:     []model.CorrectionDecision{{RecordID: amb.Record.ID, CheckIn: "23:00", CheckOut: "02:00"}},
		},
		{
			name:     "enter ambiguous times",
			input:    "E\n14:00\n22:00\n",
			requests: []model.ReviewRequest{amb},
			want:     []model.CorrectionDecision{{RecordID: amb.Record.ID, CheckIn: "14:00", CheckOut: "22:00"}},
		},
		{
			name:     "skip one answer other",
			input:    "s\nc\n",
			requests: []model.ReviewRequest{inc, amb},
			want:     []model.CorrectionDecision{{RecordID: amb.Record.ID, CheckIn: "23:00", CheckOut: "02:00"}},
			skipped:  1,
		},
		{
			name:     "defer remaining",
			input:    "d\n",
			requests: []model.ReviewRequest{inc, amb},
			want:     []model.CorrectionDecision{},
			skipped:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewCLIPrompter(strings.NewReader(tt.input), &out)

			got, err := p.ReviewCorrections(context.Background(), tt.requests)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			stats := p.GetCompletionStats()
			assert.Equal(t, len(tt.requests), stats.TotalRequests)
			assert.Equal(t, tt.skipped, stats.Skipped)
			assert.Equal(t, len(tt.want), stats.Corrected)
		})
	}
}

func TestPrompter_Quit(t *testing.T) {
	p := NewCLIPrompter(strings.NewReader("q\n"), &bytes.Buffer{})
	_, err := p.ReviewCorrections(context.Background(), []model.ReviewRequest{incompleteRequest()})
	assert.ErrorIs(t, err, common.ErrReviewAbandoned)
}

func TestPrompter_InputEndsAbandons(t *testing.T) {
	p := NewCLIPrompter(strings.NewReader("i\n"), &bytes.Buffer{})
	_, err := p.ReviewCorrections(context.Background(), []model.ReviewRequest{incompleteRequest()})
	assert.ErrorIs(t, err, common.ErrReviewAbandoned)
}

func TestPrompter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewCLIPrompter(strings.NewReader("i\n17:00\n"), &bytes.Buffer{})
	_, err := p.ReviewCorrections(ctx, []model.ReviewRequest{incompleteRequest()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrompter_NoRequests(t *testing.T) {
	var out bytes.Buffer
	p := NewCLIPrompter(strings.NewReader(""), &out)
	got, err := p.ReviewCorrections(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, out.String())
}

func TestPrompter_ShowsRejection(t *testing.T) {
	req := incompleteRequest()
	req.Attempts = 1
	req.LastError = "supplied time equals the captured punch"

	var out bytes.Buffer
	p := NewCLIPrompter(strings.NewReader("i\n17:00\n"), &out)
	_, err := p.ReviewCorrections(context.Background(), []model.ReviewRequest{req})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Attempt 1 rejected")
	assert.Equal(t, 1, p.GetCompletionStats().Rejected)

	p.ShowCompletion()
	assert.Contains(t, out.String(), "Review Complete")
}

func TestFormatRequest(t *testing.T) {
	req := ambiguousRequest()
	req.Record.SourceLines = []int{2, 3}
	req.Record.ExtraPunches = []model.ClockTime{model.MustClockTime(12, 0)}

	text := FormatRequest(req)
	for _, want := range []string{"Marta Diaz", "2024-01-05", "23:00", "02:00", "night-shift-split", "12:00", "3, 4"} {
		assert.Contains(t, text, want)
	}
}
