package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
)

// readHTML handles timesheet pages saved from web time clocks. A table with a
// recognisable attendance header becomes spreadsheet rows; otherwise every table
// row (or the page text) becomes a line for the normalizer.
func readHTML(name, markup string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", common.ErrUndecodable, err)
	}
	doc.Find("script, style").Remove()

	var cells [][]string
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var values []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			values = append(values, strings.Join(strings.Fields(cell.Text()), " "))
		})
		if len(values) > 0 {
			cells = append(cells, values)
		}
	})

	if len(cells) > 0 {
		rows, err := MapRows(cells)
		if err == nil {
			return Document{Name: name, Kind: model.SourceSpreadsheet, Rows: rows}, nil
		}
		var schemaErr *common.SchemaError
		if !errors.As(err, &schemaErr) {
			return Document{}, err
		}

		lines := make([]string, 0, len(cells))
		for _, values := range cells {
			lines = append(lines, strings.Join(values, " "))
		}
		return Document{Name: name, Kind: model.SourceText, Lines: lines}, nil
	}

	var lines []string
	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		for _, line := range SplitLines(body.Text()) {
			if trimmed := strings.Join(strings.Fields(line), " "); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
	})
	return Document{Name: name, Kind: model.SourceText, Lines: lines}, nil
}
