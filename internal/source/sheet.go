package source

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type column string

const (
	colEmployee  column = "Employee"
	colDate      column = "Fecha"
	colCheckIn   column = "Entrada"
	colCheckOut  column = "Salida"
	colInventory column = "Descuento Inventario"
	colCash      column = "Descuento Caja"
	colAdvance   column = "Retiro"
	colHoliday   column = "Festivo"
)

// RequiredColumns must be present in every attendance sheet.
var RequiredColumns = []string{string(colEmployee), string(colDate), string(colCheckIn), string(colCheckOut)}

// headerAliases maps folded header text to the column it names.
var headerAliases = map[string]column{
	"employee": colEmployee, "empleado": colEmployee, "nombre": colEmployee, "name": colEmployee, "trabajador": colEmployee,
	"fecha": colDate, "date": colDate, "dia": colDate,
	"entrada": colCheckIn, "checkin": colCheckIn, "check-in": colCheckIn, "check in": colCheckIn, "hora entrada": colCheckIn, "ingreso": colCheckIn,
	"salida": colCheckOut, "checkout": colCheckOut, "check-out": colCheckOut, "check out": colCheckOut, "hora salida": colCheckOut,
	"descuento inventario": colInventory, "inventario": colInventory,
	"descuento caja": colCash, "caja": colCash,
	"retiro": colAdvance, "anticipo": colAdvance, "adelanto": colAdvance, "advance": colAdvance,
	"festivo": colHoliday, "feriado": colHoliday, "holiday": colHoliday,
}

// headerScanRows bounds how far down a sheet the header row may appear.
const headerScanRows = 10

func normalizeHeader(header string) string {
	return strings.Join(strings.Fields(normalize.Fold(header)), " ")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// findHeader picks the row among the first few that names the most known columns.
func findHeader(rows [][]string) (int, map[column]int) {
	bestRow, best := -1, map[column]int{}
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		found := map[column]int{}
		for j, cell := range rows[i] {
			if col, ok := headerAliases[normalizeHeader(cell)]; ok {
				if _, dup := found[col]; !dup {
					found[col] = j
				}
			}
		}
		if len(found) > len(best) {
			bestRow, best = i, found
		}
	}
	return bestRow, best
}

// MapRows converts raw sheet cells into SheetRows using the header row.
// Missing required columns produce a SchemaError naming them.
func MapRows(rows [][]string) ([]model.SheetRow, error) {
	headerRow, idx := findHeader(rows)

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := idx[column(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &common.SchemaError{Missing: missing}
	}

	get := func(row []string, col column) string {
		i, ok := idx[col]
		if !ok {
			return ""
		}
		return cellValue(row, i)
	}

	var out []model.SheetRow
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		sheetRow := model.SheetRow{
			Row:      i + 1,
			Employee: get(row, colEmployee),
			Date:     excelDate(get(row, colDate)),
			CheckIn:  excelTime(get(row, colCheckIn)),
			CheckOut: excelTime(get(row, colCheckOut)),
			Holiday:  get(row, colHoliday),
			Deductions: model.Deductions{
				Inventory:  parseAmount(i+1, string(colInventory), get(row, colInventory)),
				CashDrawer: parseAmount(i+1, string(colCash), get(row, colCash)),
				Advance:    parseAmount(i+1, string(colAdvance), get(row, colAdvance)),
			},
		}
		if sheetRow.Employee == "" && sheetRow.Date == "" && sheetRow.CheckIn == "" && sheetRow.CheckOut == "" {
			continue
		}
		out = append(out, sheetRow)
	}
	return out, nil
}

// excelDate converts a raw date serial into YYYY-MM-DD and leaves anything else as written.
func excelDate(value string) string {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 20000 || serial > 80000 {
		return value
	}
	parsed, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return parsed.Format("2006-01-02")
}

// excelTime converts a day fraction (or a full date-time serial) into HH:MM.
func excelTime(value string) string {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 0 {
		return value
	}
	if serial >= 1 {
		if serial < 20000 {
			// Plain numbers such as 800 or 1730 are read by the clock parser.
			return value
		}
		parsed, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return value
		}
		return parsed.Format("15:04")
	}
	minutes := int(math.Round(serial * model.MinutesPerDay))
	if minutes >= model.MinutesPerDay {
		minutes = model.MinutesPerDay - 1
	}
	return model.ClockTime(minutes).String()
}

// thousandsGroup reports whether the lone separator at sep groups thousands:
// exactly three digits follow it and a non-zero integer part of at most three
// digits precedes it. "1.500" is fifteen hundred; "0.125" stays a fraction.
func thousandsGroup(s string, sep int) bool {
	if len(s)-sep-1 != 3 {
		return false
	}
	whole := strings.TrimLeft(s[:sep], "+-")
	return whole != "" && len(whole) <= 3 && strings.TrimLeft(whole, "0") != ""
}

// parseAmount reads a money cell, accepting currency symbols and either decimal separator.
func parseAmount(row int, col, value string) decimal.Decimal {
	cleaned := strings.NewReplacer("$", "", " ", "", "\u00a0", "").Replace(value)
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") > 1 || thousandsGroup(cleaned, lastComma) {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(cleaned, ".") > 1 || thousandsGroup(cleaned, lastDot) {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		slog.Warn("Unparseable amount, using 0", "row", row, "column", col, "value", value)
		return decimal.Zero
	}
	return amount
}
