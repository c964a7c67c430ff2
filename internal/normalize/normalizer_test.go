package normalize

import (
	"testing"
	"time"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Now = fixedNow
	n, err := New(cfg)
	require.NoError(t, err)
	return n
}

type tokenSummary struct {
	Date   string
	Time   string
	Source model.DateSource
	Line   int
}

func summarize(tokens []model.RawToken) []tokenSummary {
	out := make([]tokenSummary, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tokenSummary{
			Date:   tok.Date,
			Time:   tok.Time.String(),
			Source: tok.DateSource,
			Line:   tok.LineIndex,
		})
	}
	return out
}

func TestNormalizer_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []tokenSummary
	}{
		{
			name:  "numeric date with two times on one line",
			lines: []string{"05/01/2024 08:00 17:30"},
			want: []tokenSummary{
				{Date: "2024-01-05", Time: "08:00", Source: model.DateFromLine, Line: 0},
				{Date: "2024-01-05", Time: "17:30", Source: model.DateFromLine, Line: 0},
			},
		},
		{
			name: "date-only line feeds the following time-only line",
			lines: []string{
				"Lunes 5 de enero de 2024",
				"08:02 17:15",
			},
			want: []tokenSummary{
				{Date: "2024-01-05", Time: "08:02", Source: model.DateInherited, Line: 1},
				{Date: "2024-01-05", Time: "17:15", Source: model.DateInherited, Line: 1},
			},
		},
		{
			name:  "english month name with meridiem",
			lines: []string{"Jan 5, 2024 8:00 am 5:30 pm"},
			want: []tokenSummary{
				{Date: "2024-01-05", Time: "08:00", Source: model.DateFromLine, Line: 0},
				{Date: "2024-01-05", Time: "17:30", Source: model.DateFromLine, Line: 0},
			},
		},
		{
			name:  "spanish meridiem with dots",
			lines: []string{"2024-01-05 8:00 a. m. 5:15 p. m."},
			want: []tokenSummary{
				{Date: "2024-01-05", Time: "08:00", Source: model.DateFromLine, Line: 0},
				{Date: "2024-01-05", Time: "17:15", Source: model.DateFromLine, Line: 0},
			},
		},
		{
			name:  "accented weekday and month",
			lines: []string{"Miércoles 7 de Febrero del 2024 07:45 16:00"},
			want: []tokenSummary{
				{Date: "2024-02-07", Time: "07:45", Source: model.DateFromLine, Line: 0},
				{Date: "2024-02-07", Time: "16:00", Source: model.DateFromLine, Line: 0},
			},
		},
		{
			name:  "time before any date falls back to today",
			lines: []string{"09:00"},
			want: []tokenSummary{
				{Date: "2024-03-10", Time: "09:00", Source: model.DateFallback, Line: 0},
			},
		},
		{
			name: "totals and names are skipped",
			lines: []string{
				"Juan Pérez",
				"05/01/2024 08:00",
				"Total horas 9:00",
			},
			want: []tokenSummary{
				{Date: "2024-01-05", Time: "08:00", Source: model.DateFromLine, Line: 1},
			},
		},
		{
			name: "lone a before a name is not a meridiem and redundant pm is ignored",
			lines: []string{
				"05/01/2024",
				"Juan 14:00 a Mario 17:00",
				"Ana 17:00 pm",
			},
			want: []tokenSummary{
				{Date: "2024-01-05", Time: "14:00", Source: model.DateInherited, Line: 1},
				{Date: "2024-01-05", Time: "17:00", Source: model.DateInherited, Line: 1},
				{Date: "2024-01-05", Time: "17:00", Source: model.DateInherited, Line: 2},
			},
		},
		{
			name:  "seconds are dropped",
			lines: []string{"2024-01-05 08:00:59"},
			want: []tokenSummary{
				{Date: "2024-01-05", Time: "08:00", Source: model.DateFromLine, Line: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNormalizer(t)
			var tokens []model.RawToken
			for tok := range n.Tokens(tt.lines) {
				tokens = append(tokens, tok)
			}
			assert.Equal(t, tt.want, summarize(tokens))
		})
	}
}

func TestNormalizer_TokensSinglePass(t *testing.T) {
	n := newTestNormalizer(t)
	seq := n.Tokens([]string{"05/01/2024 08:00 17:00"})

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}

	assert.Equal(t, 2, first)
	assert.Zero(t, second)
}

func TestNormalizer_TokensStopsEarly(t *testing.T) {
	n := newTestNormalizer(t)
	count := 0
	for range n.Tokens([]string{"05/01/2024 08:00 12:00 13:00 17:00"}) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestNormalizer_Stats(t *testing.T) {
	n := newTestNormalizer(t)
	_, err := n.Collect([]string{
		"Juan Perez",
		"05/01/2024 08:00 17:30",
		"Subtotal 9:30",
		"",
		"06/01/2024",
		"08:10",
	})
	require.NoError(t, err)

	assert.Equal(t, Stats{
		Lines:     6,
		Matched:   3,
		Unmatched: 1,
		Ignored:   1,
		DateOnly:  1,
		Tokens:    3,
	}, n.Stats())
}

func TestNormalizer_StatsRedundantMeridiem(t *testing.T) {
	n := newTestNormalizer(t)
	tokens, err := n.Collect([]string{"05/01/2024 Ana 08:00", "Ana 17:00 pm"})
	require.NoError(t, err)

	assert.Len(t, tokens, 2)
	assert.Zero(t, n.Stats().Unmatched)
}

func TestNormalizer_CollectEmpty(t *testing.T) {
	n := newTestNormalizer(t)
	tokens, err := n.Collect([]string{"Reporte de asistencia", "Juan Perez", "Total 45:00"})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionEmpty)
	assert.Nil(t, tokens)
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(Config{Patterns: []Pattern{{Name: "broken", Kind: KindTimeOnly, Regex: `[`}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile pattern")

	_, err = New(Config{Patterns: []Pattern{{Name: "no extractor", Kind: KindDateOnly, Regex: `\d+`}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date extractor")
}

func TestNormalizer_MonthFirst(t *testing.T) {
	n, err := New(Config{DateOrder: MonthFirst, Now: fixedNow})
	require.NoError(t, err)

	tokens, err := n.Collect([]string{"01/05/2024 08:00"})
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "2024-01-05", tokens[0].Date)
}
