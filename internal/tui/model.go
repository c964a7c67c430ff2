package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
	"github.com/Veraticus/punchclock/internal/tui/themes"
)

// State is the current screen of the review model.
type State int

// Review screens.
const (
	StateChoosing State = iota
	StateEntering
	StateDone
)

// Outcome says how a review round ended.
type Outcome int

// Round outcomes.
const (
	OutcomeAnswered Outcome = iota
	OutcomeDeferred
	OutcomeAbandoned
)

// Model is the bubbletea model for one review round.
type Model struct {
	theme     themes.Theme
	keys      KeyMap
	help      help.Model
	err       string
	requests  []model.ReviewRequest
	decisions []model.CorrectionDecision
	inputs    []textinput.Model
	pending   model.CorrectionDecision
	index     int
	focus     int
	skipped   int
	width     int
	state     State
	outcome   Outcome
	showHelp  bool
}

// NewModel creates a review model for the given requests.
func NewModel(requests []model.ReviewRequest, cfg Config) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		theme:    cfg.Theme,
		keys:     DefaultKeyMap(),
		help:     h,
		requests: requests,
		width:    cfg.Width,
		showHelp: cfg.ShowHelp,
	}
	if len(requests) == 0 {
		m.state = StateDone
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.state == StateDone {
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m.finish(OutcomeAbandoned)
		}
		switch m.state {
		case StateChoosing:
			return m.updateChoosing(msg)
		case StateEntering:
			return m.updateEntering(msg)
		}
	}
	return m, nil
}

func (m Model) current() model.ReviewRequest {
	return m.requests[m.index]
}

func (m Model) updateChoosing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	req := m.current()
	m.pending = model.CorrectionDecision{RecordID: req.Record.ID}
	m.err = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.finish(OutcomeAbandoned)
	case key.Matches(msg, m.keys.Defer):
		m.skipped += len(m.requests) - m.index
		return m.finish(OutcomeDeferred)
	case key.Matches(msg, m.keys.Skip):
		m.skipped++
		return m.advance()
	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if req.Kind == model.ReviewAmbiguous {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.pending.CheckIn = model.FormatPunch(req.Record.CheckIn)
			m.pending.CheckOut = model.FormatPunch(req.Record.CheckOut)
			m.decisions = append(m.decisions, m.pending)
			return m.advance()
		case key.Matches(msg, m.keys.Edit):
			return m.startEntering("Check-in", "Check-out")
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.CheckIn):
		m.pending.DeclaredType = model.PunchCheckIn
		return m.startEntering("Check-out")
	case key.Matches(msg, m.keys.CheckOut):
		m.pending.DeclaredType = model.PunchCheckOut
		return m.startEntering("Check-in")
	}
	return m, nil
}

func (m Model) startEntering(labels ...string) (tea.Model, tea.Cmd) {
	m.inputs = make([]textinput.Model, len(labels))
	for i, label := range labels {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-10s ", label+":")
		ti.Placeholder = "HH:MM"
		ti.CharLimit = 12
		ti.Width = 12
		m.inputs[i] = ti
	}
	m.focus = 0
	m.state = StateEntering
	return m, m.inputs[0].Focus()
}

func (m Model) updateEntering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.state = StateChoosing
		m.inputs = nil
		m.err = ""
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		return m.focusField((m.focus + 1) % len(m.inputs))
	case key.Matches(msg, m.keys.Submit):
		if _, err := normalize.ParseClock(m.inputs[m.focus].Value()); err != nil {
			m.err = err.Error()
			return m, nil
		}
		if m.focus < len(m.inputs)-1 {
			m.err = ""
			return m.focusField(m.focus + 1)
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) focusField(i int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m, m.inputs[m.focus].Focus()
}

// submit validates every field and records the decision.
func (m Model) submit() (tea.Model, tea.Cmd) {
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		clock, err := normalize.ParseClock(in.Value())
		if err != nil {
			m.err = err.Error()
			return m.focusField(i)
		}
		values[i] = clock.String()
	}

	if m.current().Kind == model.ReviewAmbiguous {
		m.pending.CheckIn, m.pending.CheckOut = values[0], values[1]
	} else {
		m.pending.SuppliedTime = values[0]
	}
	m.decisions = append(m.decisions, m.pending)
	m.inputs = nil
	m.err = ""
	return m.advance()
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	m.index++
	m.state = StateChoosing
	if m.index >= len(m.requests) {
		return m.finish(OutcomeAnswered)
	}
	return m, nil
}

func (m Model) finish(outcome Outcome) (tea.Model, tea.Cmd) {
	m.state = StateDone
	m.outcome = outcome
	return m, tea.Quit
}

// Decisions returns the decisions entered so far.
func (m Model) Decisions() []model.CorrectionDecision {
	return m.decisions
}

// Outcome reports how the round ended.
func (m Model) Outcome() Outcome {
	return m.outcome
}

// State returns the current screen.
func (m Model) State() State {
	return m.state
}

// Skipped returns how many requests got no decision.
func (m Model) Skipped() int {
	return m.skipped
}

// View implements tea.Model.
func (m Model) View() string {
	if m.state == StateDone {
		return ""
	}

	req := m.current()
	var b strings.Builder

	title := "Incomplete record"
	if req.Kind == model.ReviewAmbiguous {
		title = "Ambiguous record"
	}
	b.WriteString(m.theme.Title.Render(fmt.Sprintf("Review %d of %d: %s", m.index+1, len(m.requests), title)))
	b.WriteString("\n")

	box := m.theme.RoundedBox
	if m.width > 4 {
		box = box.Width(min(m.width-4, 72))
	}
	b.WriteString(box.Render(m.renderRecord(req)))
	b.WriteString("\n\n")

	if m.state == StateEntering {
		for _, in := range m.inputs {
			b.WriteString(in.View())
			b.WriteString("\n")
		}
	} else {
		b.WriteString(m.renderChoices(req))
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.StatusError.Render("✗ " + m.err))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString("\n")
		if m.state == StateEntering {
			b.WriteString(m.help.View(inputKeys{keys: m.keys}))
		} else {
			b.WriteString(m.help.View(choiceKeys{keys: m.keys, ambiguous: req.Kind == model.ReviewAmbiguous}))
		}
	}
	return b.String()
}

func (m Model) renderRecord(req model.ReviewRequest) string {
	rec := req.Record
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.theme.Muted.Render(fmt.Sprintf("%-11s", label)),
			m.theme.Normal.Render(value))
	}

	rows := []string{
		row("Employee", m.theme.Bold.Render(rec.Employee)),
		row("Date", rec.Date),
		row("Check-in", model.FormatPunch(rec.CheckIn)),
		row("Check-out", model.FormatPunch(rec.CheckOut)),
	}
	if len(rec.ExtraPunches) > 0 {
		extra := make([]string, len(rec.ExtraPunches))
		for i, c := range rec.ExtraPunches {
			extra[i] = c.String()
		}
		rows = append(rows, row("Extra", strings.Join(extra, ", ")))
	}
	if len(rec.Reasons) > 0 {
		reasons := make([]string, len(rec.Reasons))
		for i, r := range rec.Reasons {
			reasons[i] = string(r)
		}
		rows = append(rows, row("Flagged", m.theme.StatusWarning.Render(strings.Join(reasons, ", "))))
	}
	if req.LastError != "" {
		rows = append(rows, "", m.theme.StatusError.Render(fmt.Sprintf("Attempt %d rejected: %s", req.Attempts, req.LastError)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderChoices(req model.ReviewRequest) string {
	var options []string
	if req.Kind == model.ReviewAmbiguous {
		options = []string{
			fmt.Sprintf("[c] confirm %s - %s", model.FormatPunch(req.Record.CheckIn), model.FormatPunch(req.Record.CheckOut)),
			"[e] enter corrected times",
		}
	} else {
		captured, _ := req.Record.Captured()
		options = []string{
			fmt.Sprintf("[i] %s was the check-in", captured),
			fmt.Sprintf("[o] %s was the check-out", captured),
		}
	}
	options = append(options, "[s] skip", "[d] defer remaining", "[q] quit and discard")

	var b strings.Builder
	for _, opt := range options {
		b.WriteString("  " + opt + "\n")
	}
	return b.String()
}
