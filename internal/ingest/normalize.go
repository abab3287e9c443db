// Package ingest turns raw spreadsheet rows into normalized import
// candidates: cell cleaning, currency coercion, and column mapping.
package ingest

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/summitfloors/pricebook/internal/model"
)

// controlStripper removes C0 and C1 control characters (U+0000-U+001F,
// U+007F-U+009F). Vendor exports routinely embed these.
var controlStripper = runes.Remove(runes.In(unicode.Cc))

// CleanString strips control characters and surrounding whitespace. An
// all-whitespace value cleans to the empty string.
func CleanString(s string) string {
	cleaned, _, err := transform.String(controlStripper, s)
	if err != nil {
		// runes.Remove cannot fail on valid UTF-8; fall back to the input.
		cleaned = s
	}
	return strings.TrimSpace(cleaned)
}

// ParseNumber coerces a currency-like string to a number. Every character
// that is not a digit or a decimal point is dropped, except a minus sign in
// leading position, which removes currency symbols and thousands separators.
// A failed or empty parse yields nil, never NaN and never zero unless the
// source literally encoded zero.
func ParseNumber(s string) *float64 {
	s = CleanString(s)
	if s == "" {
		return nil
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}

	stripped := b.String()
	if stripped == "" || stripped == "-" {
		return nil
	}

	f, err := strconv.ParseFloat(stripped, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// stringField normalizes a cell for a text field. Parser-typed numbers keep
// their shortest decimal form (numeric SKU columns are common).
func stringField(c model.Cell) string {
	return CleanString(c.Raw())
}

// numberField normalizes a cell for a numeric field.
func numberField(c model.Cell) *float64 {
	if f, ok := c.Number(); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		v := f
		return &v
	}
	return ParseNumber(c.Raw())
}
