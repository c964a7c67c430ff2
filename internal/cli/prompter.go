package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/engine"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
	"github.com/Veraticus/punchclock/internal/service"
)

// errDeferRest stops the current round; remaining requests stay outstanding.
var errDeferRest = errors.New("defer remaining")

// Prompter implements engine.Reviewer on a line-oriented terminal.
type Prompter struct {
	startTime   time.Time
	writer      io.Writer
	reader      *LineReader
	progressBar *progressbar.ProgressBar
	stats       service.CompletionStats
	statsMutex  sync.RWMutex
}

// NewCLIPrompter creates a new CLI prompter with the given reader and writer.
func NewCLIPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader:    NewLineReader(reader),
		writer:    writer,
		startTime: time.Now(),
	}
}

// ReviewCorrections asks for one decision per request. Skipped requests get no decision and
// stay outstanding; quitting returns common.ErrReviewAbandoned.
func (p *Prompter) ReviewCorrections(ctx context.Context, requests []model.ReviewRequest) ([]model.CorrectionDecision, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	if _, err := fmt.Fprintln(p.writer, FormatTitle(fmt.Sprintf("%d record(s) need review", len(requests)))); err != nil {
		return nil, fmt.Errorf("failed to write review header: %w", err)
	}
	if len(requests) > 1 {
		p.initProgressBar(len(requests))
	}

	decisions := make([]model.CorrectionDecision, 0, len(requests))
	for i, req := range requests {
		if _, err := fmt.Fprintf(p.writer, "\n[%d/%d]\n", i+1, len(requests)); err != nil {
			slog.Warn("Failed to write progress", "error", err)
		}

		decision, ok, err := p.reviewOne(ctx, req)
		if errors.Is(err, errDeferRest) {
			p.addSkipped(len(requests) - i)
			break
		}
		if err != nil {
			return nil, err
		}
		p.updateProgress()
		if !ok {
			p.addSkipped(1)
			continue
		}
		p.addCorrected(req)
		decisions = append(decisions, decision)
	}

	p.finishProgress()
	return decisions, nil
}

func (p *Prompter) reviewOne(ctx context.Context, req model.ReviewRequest) (model.CorrectionDecision, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.CorrectionDecision{}, false, err
	}

	title := "Incomplete Record"
	if req.Kind == model.ReviewAmbiguous {
		title = "Ambiguous Record"
	}
	if _, err := fmt.Fprintln(p.writer, RenderBox(title, FormatRequest(req))); err != nil {
		return model.CorrectionDecision{}, false, fmt.Errorf("failed to write record box: %w", err)
	}

	if req.Kind == model.ReviewAmbiguous {
		return p.reviewAmbiguous(ctx, req)
	}
	return p.reviewIncomplete(ctx, req)
}

func (p *Prompter) reviewIncomplete(ctx context.Context, req model.ReviewRequest) (model.CorrectionDecision, bool, error) {
	captured, _ := req.Record.Captured()
	options := []string{
		fmt.Sprintf("  [I] %s was the check-in; enter the check-out", captured),
		fmt.Sprintf("  [O] %s was the check-out; enter the check-in", captured),
		"  [S] Skip this record",
		"  [D] Defer all remaining records",
		"  [Q] Quit and discard the batch",
	}
	if err := p.writeOptions(options); err != nil {
		return model.CorrectionDecision{}, false, err
	}

	choice, err := p.promptChoice(ctx, "Choice", []string{"i", "o", "s", "d", "q"})
	if err != nil {
		return model.CorrectionDecision{}, false, err
	}

	decision := model.CorrectionDecision{RecordID: req.Record.ID}
	switch choice {
	case "i":
		decision.DeclaredType = model.PunchCheckIn
		decision.SuppliedTime, err = p.promptTime(ctx, "Check-out time")
	case "o":
		decision.DeclaredType = model.PunchCheckOut
		decision.SuppliedTime, err = p.promptTime(ctx, "Check-in time")
	default:
		return p.control(choice)
	}
	if err != nil {
		return model.CorrectionDecision{}, false, err
	}
	return decision, true, nil
}

func (p *Prompter) reviewAmbiguous(ctx context.Context, req model.ReviewRequest) (model.CorrectionDecision, bool, error) {
	rec := req.Record
	options := []string{
		fmt.Sprintf("  [C] Confirm as captured (%s - %s)", model.FormatPunch(rec.CheckIn), model.FormatPunch(rec.CheckOut)),
		"  [E] Enter corrected times",
		"  [S] Skip this record",
		"  [D] Defer all remaining records",
		"  [Q] Quit and discard the batch",
	}
	if err := p.writeOptions(options); err != nil {
		return model.CorrectionDecision{}, false, err
	}

	choice, err := p.promptChoice(ctx, "Choice", []string{"c", "e", "s", "d", "q"})
	if err != nil {
		return model.CorrectionDecision{}, false, err
	}

	decision := model.CorrectionDecision{RecordID: rec.ID}
	switch choice {
	case "c":
		decision.CheckIn = model.FormatPunch(rec.CheckIn)
		decision.CheckOut = model.FormatPunch(rec.CheckOut)
	case "e":
		if decision.CheckIn, err = p.promptTime(ctx, "Check-in time"); err != nil {
			return model.CorrectionDecision{}, false, err
		}
		if decision.CheckOut, err = p.promptTime(ctx, "Check-out time"); err != nil {
			return model.CorrectionDecision{}, false, err
		}
	default:
		return p.control(choice)
	}
	return decision, true, nil
}

// control handles the choices shared by both request kinds.
func (p *Prompter) control(choice string) (model.CorrectionDecision, bool, error) {
	switch choice {
	case "d":
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Remaining records deferred")); err != nil {
			slog.Warn("Failed to write defer message", "error", err)
		}
		return model.CorrectionDecision{}, false, errDeferRest
	case "q":
		return model.CorrectionDecision{}, false, common.ErrReviewAbandoned
	default:
		return model.CorrectionDecision{}, false, nil
	}
}

// FormatRequest renders the record details shown to the reviewer.
func FormatRequest(req model.ReviewRequest) string {
	rec := req.Record
	var b strings.Builder
	fmt.Fprintf(&b, "Employee:  %s\n", BoldStyle.Render(rec.Employee))
	fmt.Fprintf(&b, "Date:      %s", rec.Date)
	if rec.DateFallback {
		b.WriteString(SubtleStyle.Render(" (no date found; batch date assumed)"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Check-in:  %s\n", model.FormatPunch(rec.CheckIn))
	fmt.Fprintf(&b, "Check-out: %s", model.FormatPunch(rec.CheckOut))

	if len(rec.ExtraPunches) > 0 {
		extra := make([]string, len(rec.ExtraPunches))
		for i, c := range rec.ExtraPunches {
			extra[i] = c.String()
		}
		fmt.Fprintf(&b, "\nExtra:     %s", SubtleStyle.Render(strings.Join(extra, ", ")))
	}
	if len(rec.Reasons) > 0 {
		fmt.Fprintf(&b, "\nFlagged:   %s", FormatReasons(rec.Reasons))
	}
	if len(rec.SourceLines) > 0 {
		lines := make([]string, len(rec.SourceLines))
		for i, n := range rec.SourceLines {
			lines[i] = fmt.Sprint(n + 1)
		}
		fmt.Fprintf(&b, "\nLines:     %s", SubtleStyle.Render(strings.Join(lines, ", ")))
	}
	if req.LastError != "" {
		fmt.Fprintf(&b, "\n\n%s", FormatError(fmt.Sprintf("Attempt %d rejected: %s", req.Attempts, req.LastError)))
	}
	return b.String()
}

func (p *Prompter) writeOptions(options []string) error {
	if _, err := fmt.Fprintln(p.writer, FormatPrompt("Options:")); err != nil {
		return fmt.Errorf("failed to write options header: %w", err)
	}
	for _, opt := range options {
		if _, err := fmt.Fprintln(p.writer, opt); err != nil {
			return fmt.Errorf("failed to write option: %w", err)
		}
	}
	return nil
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	line, err := p.reader.ReadLine(ctx)
	switch {
	case errors.Is(err, ErrInputCancelled):
		return "", ctx.Err()
	case errors.Is(err, io.EOF):
		return "", fmt.Errorf("input terminated: %w", common.ErrReviewAbandoned)
	case err != nil:
		return "", err
	}
	return line, nil
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(input)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

// promptTime re-prompts until the input parses as a clock time.
func (p *Prompter) promptTime(ctx context.Context, prompt string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt+" (HH:MM)")); err != nil {
			return "", fmt.Errorf("failed to write time prompt: %w", err)
		}

		input, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}

		clock, err := normalize.ParseClock(input)
		if err != nil {
			if _, werr := fmt.Fprintln(p.writer, FormatError(fmt.Sprintf("%v. Please try again.", err))); werr != nil {
				slog.Warn("Failed to write time error", "error", werr)
			}
			continue
		}
		return clock.String(), nil
	}
}

// GetCompletionStats returns statistics about the review session.
func (p *Prompter) GetCompletionStats() service.CompletionStats {
	p.statsMutex.RLock()
	defer p.statsMutex.RUnlock()

	stats := p.stats
	stats.Duration = time.Since(p.startTime)
	return stats
}

// ShowCompletion displays the review summary.
func (p *Prompter) ShowCompletion() {
	stats := p.GetCompletionStats()

	summary := fmt.Sprintf("%s Review Complete!\n\n", ClockIcon) +
		ChartIcon + " Statistics:\n" +
		fmt.Sprintf("  • Requests shown: %d\n", stats.TotalRequests) +
		fmt.Sprintf("  • Corrections entered: %d\n", stats.Corrected) +
		fmt.Sprintf("  • Re-prompted after rejection: %d\n", stats.Rejected) +
		fmt.Sprintf("  • Skipped or deferred: %d\n", stats.Skipped) +
		fmt.Sprintf("  • Time taken: %s\n", stats.Duration.Round(time.Second))

	if _, err := fmt.Fprintln(p.writer, RenderBox("Review Complete", summary)); err != nil {
		slog.Warn("Failed to write completion box", "error", err)
	}
}

func (p *Prompter) initProgressBar(total int) {
	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reviewing records...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *Prompter) updateProgress() {
	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Add(1); err != nil {
		slog.Debug("Failed to update progress bar", "error", err)
	}
}

func (p *Prompter) finishProgress() {
	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		slog.Warn("Failed to write newline", "error", err)
	}
	p.progressBar = nil
}

func (p *Prompter) addCorrected(req model.ReviewRequest) {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()

	p.stats.TotalRequests++
	p.stats.Corrected++
	if req.Attempts > 0 {
		p.stats.Rejected++
	}
}

func (p *Prompter) addSkipped(count int) {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()

	p.stats.TotalRequests += count
	p.stats.Skipped += count
}

// Ensure Prompter implements the engine.Reviewer interface.
var _ engine.Reviewer = (*Prompter)(nil)
