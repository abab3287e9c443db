package model

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// CellKind discriminates the raw cell union. Spreadsheet parsers produce
// strings, numbers, or nothing; no other type crosses this boundary.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is one untyped spreadsheet cell as received from the parser or the
// upload payload. The zero value is the empty cell.
type Cell struct {
	kind CellKind
	str  string
	num  float64
}

// StringCell wraps a raw string value.
func StringCell(s string) Cell {
	return Cell{kind: CellString, str: s}
}

// NumberCell wraps a numeric value the parser already typed.
func NumberCell(f float64) Cell {
	return Cell{kind: CellNumber, num: f}
}

// Kind reports which member of the union is populated.
func (c Cell) Kind() CellKind { return c.kind }

// IsEmpty reports whether the cell carries no value at all.
func (c Cell) IsEmpty() bool { return c.kind == CellEmpty }

// Raw returns the string form of the cell. Numbers are formatted with the
// shortest representation that round-trips.
func (c Cell) Raw() string {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Number returns the numeric value and whether the cell was parser-typed
// as a number.
func (c Cell) Number() (float64, bool) {
	if c.kind != CellNumber {
		return 0, false
	}
	return c.num, true
}

// UnmarshalJSON accepts string, number, or null. Booleans and nested
// structures are rejected so untyped junk cannot cross into the mapper.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = StringCell(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*c = NumberCell(f)
		return nil
	}
	return eris.Errorf("model: cell must be string, number, or null, got %s", string(data))
}

// MarshalJSON emits the cell back as its union member.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case CellString:
		return json.Marshal(c.str)
	case CellNumber:
		return json.Marshal(c.num)
	default:
		return []byte("null"), nil
	}
}

// RawRow is one spreadsheet row. Rows in vendor files are ragged; a column
// index valid for one row may be out of range for another.
type RawRow []Cell

// SheetWidth returns the widest row in the sheet. Column count is taken from
// the whole sheet, not just the header row.
func SheetWidth(rows []RawRow) int {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	return width
}
