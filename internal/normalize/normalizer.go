package normalize

import (
	"fmt"
	"iter"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
)

// DefaultIgnoreWords mark summary lines whose durations must not be read as punches.
var DefaultIgnoreWords = []string{"total", "totales", "subtotal", "horas trabajadas"}

// Config controls how raw lines are interpreted.
type Config struct {
	Now         func() time.Time
	DateOrder   DateOrder
	IgnoreWords []string
	Patterns    []Pattern
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DateOrder:   DayFirst,
		IgnoreWords: DefaultIgnoreWords,
		Now:         time.Now,
	}
}

// Stats counts what happened to each line during one pass.
type Stats struct {
	Lines         int
	Matched       int
	Unmatched     int
	Ignored       int
	DateOnly      int
	Tokens        int
	DateFallbacks int
}

// Normalizer turns lines of time-clock text into RawTokens.
type Normalizer struct {
	ignore   *regexp.Regexp
	now      func() time.Time
	order    DateOrder
	patterns []compiledPattern
	stats    Stats
}

// New creates a normalizer. An empty pattern list uses DefaultPatterns.
func New(cfg Config) (*Normalizer, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return nil, err
	}

	var ignore *regexp.Regexp
	if len(cfg.IgnoreWords) > 0 {
		words := make([]string, 0, len(cfg.IgnoreWords))
		for _, w := range cfg.IgnoreWords {
			words = append(words, regexp.QuoteMeta(Fold(w)))
		}
		ignore, err = regexp.Compile(`\b(?:` + strings.Join(words, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile ignore words: %w", err)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	order := cfg.DateOrder
	if order == "" {
		order = DayFirst
	}

	return &Normalizer{
		patterns: compiled,
		ignore:   ignore,
		now:      now,
		order:    order,
	}, nil
}

// Stats returns the counters of the most recent pass.
func (n *Normalizer) Stats() Stats {
	return n.stats
}

// lineMatch is what the winning pattern extracted from one line.
type lineMatch struct {
	pattern string
	date    string
	times   []model.ClockTime
}

// Tokens returns a lazy, single-pass sequence of tokens for lines.
// Ranging over the sequence a second time yields nothing; call Tokens again to reprocess.
func (n *Normalizer) Tokens(lines []string) iter.Seq[model.RawToken] {
	consumed := false
	return func(yield func(model.RawToken) bool) {
		if consumed {
			slog.Warn("Token sequence already consumed; re-run the normalizer to reprocess")
			return
		}
		consumed = true
		n.stats = Stats{}

		lastDate := ""
		for i, line := range lines {
			n.stats.Lines++

			folded := Fold(line)
			if strings.TrimSpace(folded) == "" {
				continue
			}
			if n.ignore != nil && n.ignore.MatchString(folded) {
				n.stats.Ignored++
				continue
			}

			m, ok := n.matchLine(folded)
			if !ok {
				n.stats.Unmatched++
				common.LogDebug("Unmatched line", common.Fields{"line": i + 1, "text": line})
				continue
			}
			n.stats.Matched++

			source := model.DateFromLine
			if m.date != "" {
				lastDate = m.date
			}
			if len(m.times) == 0 {
				n.stats.DateOnly++
				continue
			}

			date := m.date
			if date == "" {
				if lastDate != "" {
					date = lastDate
					source = model.DateInherited
				} else {
					date = n.now().Format(canonicalDate)
					source = model.DateFallback
					n.stats.DateFallbacks++
					slog.Warn("No date found before line, using today", "line", i+1, "date", date)
				}
			}

			for _, t := range m.times {
				n.stats.Tokens++
				token := model.RawToken{
					LineIndex:  i,
					Line:       line,
					Date:       date,
					Time:       t,
					Pattern:    m.pattern,
					DateSource: source,
				}
				if !yield(token) {
					return
				}
			}
		}
	}
}

// Collect drains Tokens and reports ErrExtractionEmpty when nothing was recognised.
func (n *Normalizer) Collect(lines []string) ([]model.RawToken, error) {
	var tokens []model.RawToken
	for token := range n.Tokens(lines) {
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w (%d lines, %d unmatched)", common.ErrExtractionEmpty, n.stats.Lines, n.stats.Unmatched)
	}
	return tokens, nil
}

// matchLine evaluates the ordered pattern list against one folded line.
// The first pattern that matches (and whose date is valid) wins and fixes the line's date.
func (n *Normalizer) matchLine(folded string) (lineMatch, bool) {
	for _, p := range n.patterns {
		loc := p.re.FindStringSubmatchIndex(folded)
		if loc == nil {
			continue
		}

		if p.Kind == KindTimeOnly {
			times := clocks(findTimes(folded))
			if len(times) == 0 {
				continue
			}
			return lineMatch{pattern: p.Name, times: times}, true
		}

		m := submatches(folded, loc)
		date, ok := p.extractDate(m, n.order)
		if !ok {
			continue
		}

		// Blank the date so its digits are never read as a time.
		rest := folded[:loc[2]] + strings.Repeat(" ", loc[3]-loc[2]) + folded[loc[3]:]
		return lineMatch{
			pattern: p.Name,
			date:    date,
			times:   clocks(findTimes(rest)),
		}, true
	}
	return lineMatch{}, false
}

// Tokens is a convenience wrapper for one-off extraction with a fresh default normalizer.
func Tokens(lines []string) ([]model.RawToken, error) {
	n, err := New(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return n.Collect(lines)
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

func clocks(matches []timeMatch) []model.ClockTime {
	if len(matches) == 0 {
		return nil
	}
	out := make([]model.ClockTime, len(matches))
	for i, m := range matches {
		out[i] = m.clock
	}
	return out
}
