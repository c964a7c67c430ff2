package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics so "Miércoles" and "miercoles" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

var monthNames = map[string]int{
	// Spanish
	"enero": 1, "ene": 1,
	"febrero": 2,
	"marzo":   3,
	"abril":   4, "abr": 4,
	"mayo":  5,
	"junio": 6,
	"julio": 7,
	"agosto": 8, "ago": 8,
	"septiembre": 9, "setiembre": 9, "set": 9,
	"octubre":   10,
	"noviembre": 11,
	"diciembre": 12, "dic": 12,

	// English
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may":  5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sept": 9, "sep": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// monthNumber resolves a folded month name or abbreviation.
func monthNumber(name string) (int, bool) {
	m, ok := monthNames[strings.TrimSuffix(name, ".")]
	return m, ok
}

// IsMonthName reports whether word (in any case or accenting) names a month.
func IsMonthName(word string) bool {
	_, ok := monthNumber(Fold(word))
	return ok
}
