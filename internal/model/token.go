package model

// DateSource records where a token's date came from.
type DateSource string

// Date source constants.
const (
	// DateFromLine means the date was written on the same line as the time.
	DateFromLine DateSource = "line"
	// DateInherited means the line had no date and used the last date seen.
	DateInherited DateSource = "inherited"
	// DateFallback means no date had been seen yet and today's date was used.
	DateFallback DateSource = "fallback"
)

// RawToken is a single recognised (date, time) pair extracted from one line of source text.
// Tokens are produced once by the normalizer and never mutated.
type RawToken struct {
	Line       string
	Date       string // YYYY-MM-DD
	Pattern    string // name of the pattern that matched the line
	DateSource DateSource
	LineIndex  int
	Time       ClockTime
}
