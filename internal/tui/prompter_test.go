package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/tui/tuitest"
)

// scripted replaces the bubbletea program with a fixed input sequence.
func scripted(p *Prompter, seq tuitest.Script) {
	p.run = func(_ context.Context, m Model) (Model, error) {
		return seq.Play(m).(Model), nil
	}
}

func TestPrompter_ReviewCorrections(t *testing.T) {
	retry := ambiguous()
	retry.Attempts = 1
	requests := []model.ReviewRequest{incomplete(), retry}

	p := New(WithAltScreen(false))
	scripted(p, tuitest.Keys("s", "c"))

	decisions, err := p.ReviewCorrections(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, retry.Record.ID, decisions[0].RecordID)

	stats := p.GetCompletionStats()
	assert.Equal(t, 2, stats.TotalRequests)
	assert.Equal(t, 1, stats.Corrected)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Rejected)
}

func TestPrompter_Abandon(t *testing.T) {
	p := New()
	scripted(p, tuitest.Keys("q"))

	_, err := p.ReviewCorrections(context.Background(), []model.ReviewRequest{incomplete()})
	assert.ErrorIs(t, err, common.ErrReviewAbandoned)
}

func TestPrompter_ProgramError(t *testing.T) {
	p := New()
	p.run = func(_ context.Context, m Model) (Model, error) {
		return m, errors.New("no tty")
	}

	_, err := p.ReviewCorrections(context.Background(), []model.ReviewRequest{incomplete()})
	assert.EqualError(t, err, "no tty")
}

func TestPrompter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New()
	_, err := p.ReviewCorrections(ctx, []model.ReviewRequest{incomplete()})
	assert.ErrorIs(t, err, context.Canceled)

	decisions, err := p.ReviewCorrections(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, decisions)
}
