// Package cli provides the line-oriented review terminal and its lipgloss styles.
package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/punchclock/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#5B8DEF")
	// SuccessColor marks paid and corrected records.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor marks records that need a reviewer.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor marks rejected input and records kept out of payroll.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// InfoColor is used for ids and neutral notices.
	InfoColor = lipgloss.Color("#95E1D3")
	// SubtleColor is used for audit detail.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)
	// SubtitleStyle is used for empty-state and secondary lines.
	SubtitleStyle = lipgloss.NewStyle().Foreground(SubtleColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// BoxStyle frames the review summary.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle underlines table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// PromptStyle is used for reviewer prompts.
	PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ClockIcon   = "⏱"
	ChartIcon   = "📊"
)

// stateStyles colours each classification state the same way everywhere.
var stateStyles = map[model.ClassificationState]lipgloss.Style{
	model.StateWellFormed: SuccessStyle,
	model.StateCorrected:  SuccessStyle,
	model.StateIncomplete: WarningStyle,
	model.StateAmbiguous:  WarningStyle,
	model.StateAbsent:     ErrorStyle,
}

// FormatState renders a classification state as a lowercase coloured label.
func FormatState(state model.ClassificationState) string {
	label := strings.ReplaceAll(strings.ToLower(string(state)), "_", "-")
	if label == "" {
		label = "unclassified"
	}
	if style, ok := stateStyles[state]; ok {
		return style.Render(label)
	}
	return SubtleStyle.Render(label)
}

// FormatReasons joins ambiguity reasons for display.
func FormatReasons(reasons []model.AmbiguityReason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return WarningStyle.Render(strings.Join(parts, ", "))
}

// FormatMoney renders an amount in whole currency units.
func FormatMoney(d decimal.Decimal) string {
	return d.Round(0).StringFixed(0)
}

func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle prefixes a title with the clock icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ClockIcon + " " + title)
}

func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content under a title in a rounded box.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.UnsetMargins().Render(title), content))
}
