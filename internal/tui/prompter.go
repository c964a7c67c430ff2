// Package tui provides a full-screen correction reviewer built on bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/engine"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/service"
)

// Prompter implements engine.Reviewer with a rich TUI. Each review round runs its own program.
type Prompter struct {
	startTime time.Time
	run       func(ctx context.Context, m Model) (Model, error)
	cfg       Config
	stats     service.CompletionStats
	mu        sync.Mutex
}

// Ensure we implement the interface.
var _ engine.Reviewer = (*Prompter)(nil)

// New creates a TUI reviewer that can replace the CLI prompter.
func New(opts ...Option) *Prompter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Prompter{cfg: cfg, startTime: time.Now()}
	p.run = p.runProgram
	return p
}

func (p *Prompter) runProgram(ctx context.Context, m Model) (Model, error) {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if p.cfg.Input != nil {
		programOpts = append(programOpts, tea.WithInput(p.cfg.Input))
	}
	if p.cfg.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(p.cfg.Output))
	}

	final, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil {
		return m, fmt.Errorf("failed to run TUI: %w", err)
	}
	result, ok := final.(Model)
	if !ok {
		return m, fmt.Errorf("unexpected TUI model %T", final)
	}
	return result, nil
}

// ReviewCorrections implements engine.Reviewer.
func (p *Prompter) ReviewCorrections(ctx context.Context, requests []model.ReviewRequest) ([]model.CorrectionDecision, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.run(ctx, NewModel(requests, p.cfg))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, tea.ErrProgramKilled) {
			return nil, errors.Join(ctxErr, err)
		}
		return nil, err
	}

	decisions := result.Decisions()
	p.record(requests, decisions, result.Skipped())

	if result.Outcome() == OutcomeAbandoned {
		return nil, common.ErrReviewAbandoned
	}
	return decisions, nil
}

func (p *Prompter) record(requests []model.ReviewRequest, decisions []model.CorrectionDecision, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	retried := make(map[string]bool, len(requests))
	for _, r := range requests {
		if r.Attempts > 0 {
			retried[r.Record.ID] = true
		}
	}

	p.stats.TotalRequests += len(decisions) + skipped
	p.stats.Corrected += len(decisions)
	p.stats.Skipped += skipped
	for _, d := range decisions {
		if retried[d.RecordID] {
			p.stats.Rejected++
		}
	}
}

// GetCompletionStats implements engine.Reviewer.
func (p *Prompter) GetCompletionStats() service.CompletionStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := p.stats
	stats.Duration = time.Since(p.startTime)
	return stats
}
