package grouper

import (
	"strings"
	"unicode"

	"github.com/Veraticus/punchclock/internal/normalize"
)

// DefaultStopwords are words that appear on header, weekday and label lines and never in names.
var DefaultStopwords = []string{
	// weekdays
	"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo",
	"lun", "mie", "jue", "vie", "sab", "dom",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"mon", "tue", "wed", "thu", "fri", "sat", "sun",
	// column headers and report boilerplate
	"fecha", "date", "dia", "day", "hora", "horas", "hours", "time",
	"entrada", "salida", "check", "in", "out", "checkin", "checkout",
	"empleado", "employee", "nombre", "name", "id", "codigo", "code",
	"reporte", "report", "asistencia", "attendance", "registro", "registros",
	"marcacion", "marcaciones", "turno", "shift", "semana", "week",
	"departamento", "department", "pagina", "page", "periodo", "period",
	"desde", "hasta", "from", "to", "total", "totales", "subtotal",
	// connectives left over once dates and times are removed
	"de", "del", "la", "las", "a", "y", "and", "the", "am", "pm", "m",
}

// nameResolver decides whether a line carries an employee name.
type nameResolver struct {
	stopwords  map[string]bool
	cache      map[int]string
	lines      []string
	minLetters int
}

func newNameResolver(lines []string, stopwords []string, minLetters int) *nameResolver {
	set := make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		set[normalize.Fold(w)] = true
	}
	return &nameResolver{
		lines:      lines,
		stopwords:  set,
		cache:      make(map[int]string),
		minLetters: minLetters,
	}
}

// nameOn returns the name-like remainder of line i, or "" if the line has none.
func (r *nameResolver) nameOn(i int) string {
	if i < 0 || i >= len(r.lines) {
		return ""
	}
	if name, ok := r.cache[i]; ok {
		return name
	}

	var kept []string
	letters := 0
	for _, field := range strings.FieldsFunc(r.lines[i], isSeparator) {
		word := strings.Trim(field, ".,;:()[]'\"-_/|*#")
		if word == "" || strings.IndexFunc(word, unicode.IsDigit) >= 0 {
			continue
		}
		folded := normalize.Fold(word)
		if r.stopwords[folded] || normalize.IsMonthName(folded) {
			continue
		}
		if strings.IndexFunc(word, func(c rune) bool { return !unicode.IsLetter(c) && c != '\'' && c != '-' }) >= 0 {
			continue
		}
		kept = append(kept, word)
		letters += len([]rune(word))
	}

	name := ""
	if letters >= r.minLetters {
		name = strings.Join(kept, " ")
	}
	r.cache[i] = name
	return name
}

// nearest finds the employee for a token on line i: the line itself, then the
// closest name-like line within window lines, preferring earlier lines on ties.
func (r *nameResolver) nearest(i, window int) (string, bool) {
	if name := r.nameOn(i); name != "" {
		return name, true
	}
	for d := 1; d <= window; d++ {
		if name := r.nameOn(i - d); name != "" {
			return name, true
		}
		if name := r.nameOn(i + d); name != "" {
			return name, true
		}
	}
	return "", false
}

func isSeparator(c rune) bool {
	return unicode.IsSpace(c) || c == ',' || c == ';' || c == '|' || c == '\t'
}
