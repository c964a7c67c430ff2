// Package source reads attendance documents into lines of text or spreadsheet rows.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
)

// Document is one source document ready for the pipeline.
// Text documents carry Lines; spreadsheets carry Rows.
type Document struct {
	Name  string
	Kind  model.SourceKind
	Lines []string
	Rows  []model.SheetRow
}

// Options controls decoding.
type Options struct {
	// Encoding of text documents: "utf-8" (default), "windows-1252" or "latin1".
	Encoding string
}

// Open reads the document at path.
func Open(path string, opts Options) (Document, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return Document{}, fmt.Errorf("failed to open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f, filepath.Base(path), opts)
}

// Read parses a document, choosing the reader from the file name's extension.
func Read(r io.Reader, name string, opts Options) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document: %w", err)
	}

	inner := name
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".xz" {
		data, err = decompressXZ(data)
		if err != nil {
			return Document{}, err
		}
		inner = strings.TrimSuffix(name, filepath.Ext(name))
		ext = strings.ToLower(filepath.Ext(inner))
	}

	doc := Document{Name: name}
	switch ext {
	case ".txt", ".text", ".log", "":
		lines, err := decodeLines(data, opts.Encoding)
		if err != nil {
			return Document{}, err
		}
		doc.Kind = model.SourceText
		doc.Lines = lines

	case ".html", ".htm":
		text, err := decodeText(data, opts.Encoding)
		if err != nil {
			return Document{}, err
		}
		return readHTML(name, text)

	case ".csv":
		text, err := decodeText(data, opts.Encoding)
		if err != nil {
			return Document{}, err
		}
		rows, err := readCSV(text)
		if err != nil {
			return Document{}, err
		}
		doc.Kind = model.SourceSpreadsheet
		doc.Rows, err = MapRows(rows)
		if err != nil {
			return Document{}, err
		}

	case ".xlsx", ".xlsm":
		rows, err := readXLSX(bytes.NewReader(data))
		if err != nil {
			return Document{}, err
		}
		doc.Kind = model.SourceSpreadsheet
		doc.Rows, err = MapRows(rows)
		if err != nil {
			return Document{}, err
		}

	case ".xls":
		rows, err := readXLS(bytes.NewReader(data))
		if err != nil {
			return Document{}, err
		}
		doc.Kind = model.SourceSpreadsheet
		doc.Rows, err = MapRows(rows)
		if err != nil {
			return Document{}, err
		}

	default:
		return Document{}, fmt.Errorf("%w: %s", common.ErrUnsupportedFile, ext)
	}

	return doc, nil
}

// FromLines wraps already extracted text lines, such as PDF extraction output.
func FromLines(name string, lines []string) Document {
	return Document{Name: name, Kind: model.SourceText, Lines: lines}
}
