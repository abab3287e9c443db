package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanString_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "Oak Plank", CleanString("  Oak Plank  "))
}

func TestCleanString_AllWhitespaceBecomesEmpty(t *testing.T) {
	assert.Equal(t, "", CleanString("   \t  "))
	assert.Equal(t, "", CleanString(""))
}

func TestCleanString_StripsControlCharacters(t *testing.T) {
	assert.Equal(t, "Oak Plank", CleanString("Oak\x00 Pla\x1fnk\x7f"))
	// C1 range too (U+0080-U+009F).
	assert.Equal(t, "Weathered", CleanString("Weathered\u0085\u009F"))
}

func TestCleanString_KeepsInteriorSpacesAndUnicode(t *testing.T) {
	assert.Equal(t, "Café Série 5\" Plank", CleanString(" Café Série 5\" Plank "))
}

func TestParseNumber_Currency(t *testing.T) {
	got := ParseNumber("$1,234.56")
	require.NotNil(t, got)
	assert.Equal(t, 1234.56, *got)
}

func TestParseNumber_PlainDecimal(t *testing.T) {
	got := ParseNumber("3.20")
	require.NotNil(t, got)
	assert.Equal(t, 3.20, *got)
}

func TestParseNumber_NegativePreserved(t *testing.T) {
	got := ParseNumber("-5.00")
	require.NotNil(t, got)
	assert.Equal(t, -5.00, *got)
}

func TestParseNumber_InteriorMinusDropped(t *testing.T) {
	// "5-00" is not a negative number; only a leading minus survives.
	got := ParseNumber("5-00")
	require.NotNil(t, got)
	assert.Equal(t, 500.0, *got)
}

func TestParseNumber_Unparseable(t *testing.T) {
	assert.Nil(t, ParseNumber("N/A"))
	assert.Nil(t, ParseNumber(""))
	assert.Nil(t, ParseNumber("   "))
	assert.Nil(t, ParseNumber("-"))
	assert.Nil(t, ParseNumber("call for pricing"))
}

func TestParseNumber_ZeroIsZeroNotNil(t *testing.T) {
	got := ParseNumber("$0.00")
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}

func TestParseNumber_MultipleDotsFailParse(t *testing.T) {
	// Thousands separators written as dots produce an invalid float; the
	// contract is nil, not a partial parse.
	assert.Nil(t, ParseNumber("1.234.56"))
}

func TestParseNumber_PerUnitSuffix(t *testing.T) {
	got := ParseNumber("3.45/sqft")
	require.NotNil(t, got)
	assert.Equal(t, 3.45, *got)
}
