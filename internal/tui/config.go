package tui

import (
	"io"

	"github.com/Veraticus/punchclock/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Input     io.Reader
	Output    io.Writer
	Theme     themes.Theme
	Width     int
	AltScreen bool
	ShowHelp  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Width:     80,
		AltScreen: true,
		ShowHelp:  true,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithIO replaces the terminal with the given reader and writer.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

// WithHelp toggles the help footer.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
