// Package fileio reads vendor spreadsheet files into raw rows for the
// import pipeline. CSV and XLSX are supported; XLSX numeric cells stay
// typed as numbers instead of collapsing to display strings.
package fileio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/summitfloors/pricebook/internal/model"
)

// Options configures spreadsheet reading.
type Options struct {
	SheetIndex int    // XLSX only; default 0
	SheetName  string // XLSX only; overrides SheetIndex
	SkipRows   int    // header rows to drop
}

// ReadFile dispatches on the file extension.
func ReadFile(path string, opts Options) ([]model.RawRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path, opts)
	case ".xlsx":
		return ReadXLSX(path, opts)
	}
	return nil, eris.Errorf("fileio: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
}

// ReadCSV reads a CSV file. Vendor exports are sloppy, so ragged rows and
// loosely quoted fields are accepted rather than rejected.
func ReadCSV(path string, opts Options) ([]model.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "fileio: open csv")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "fileio: read csv")
	}

	var rows []model.RawRow
	for i, rec := range records {
		if i < opts.SkipRows {
			continue
		}
		row := make(model.RawRow, len(rec))
		for j, field := range rec {
			row[j] = model.StringCell(field)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadXLSX reads one sheet of an XLSX file.
func ReadXLSX(path string, opts Options) ([]model.RawRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fileio: open xlsx")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows []model.RawRow
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}
		out := make(model.RawRow, len(row.Cells))
		for j, cell := range row.Cells {
			out[j] = convertCell(cell)
		}
		rows = append(rows, out)
	}
	return rows, nil
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("fileio: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("fileio: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func convertCell(cell *xlsx.Cell) model.Cell {
	if cell.Type() == xlsx.CellTypeNumeric {
		if f, err := cell.Float(); err == nil {
			return model.NumberCell(f)
		}
	}
	if s := cell.String(); s != "" {
		return model.StringCell(s)
	}
	return model.Cell{}
}
