package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellUnmarshalUnion(t *testing.T) {
	var row RawRow
	require.NoError(t, json.Unmarshal([]byte(`["Coastal Oak", 3.2, null, ""]`), &row))
	require.Len(t, row, 4)

	assert.Equal(t, CellString, row[0].Kind())
	assert.Equal(t, "Coastal Oak", row[0].Raw())

	n, ok := row[1].Number()
	require.True(t, ok)
	assert.Equal(t, 3.2, n)

	assert.True(t, row[2].IsEmpty())
	assert.Equal(t, "", row[2].Raw())

	// Empty string is a string cell, not an empty cell.
	assert.Equal(t, CellString, row[3].Kind())
}

func TestCellUnmarshalRejectsOtherTypes(t *testing.T) {
	var c Cell
	assert.Error(t, json.Unmarshal([]byte(`true`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"v":1}`), &c))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &c))
}

func TestCellNumberRawShortestForm(t *testing.T) {
	assert.Equal(t, "3.2", NumberCell(3.2).Raw())
	assert.Equal(t, "1200", NumberCell(1200).Raw())
	assert.Equal(t, "0", NumberCell(0).Raw())
}

func TestCellMarshalRoundTrip(t *testing.T) {
	in := RawRow{StringCell("x"), NumberCell(2.5), {}}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `["x", 2.5, null]`, string(data))
}
