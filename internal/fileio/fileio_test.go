package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/summitfloors/pricebook/internal/model"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricelist.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeTempCSV(t, "Product,Color,Cost\nCoastal Oak,Natural,\"$3.20\"\nCoastal Oak,Smoked,$3.45\n")

	rows, err := ReadCSV(path, Options{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Coastal Oak", rows[0][0].Raw())
	assert.Equal(t, "$3.20", rows[0][2].Raw())
	assert.Equal(t, model.CellString, rows[0][2].Kind())
}

// Vendor CSVs are ragged; short rows come through as-is.
func TestReadCSVRaggedRows(t *testing.T) {
	path := writeTempCSV(t, "a,b,c\nonly-one\nx,y\n")

	rows, err := ReadCSV(path, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 3)
	assert.Len(t, rows[1], 1)
	assert.Len(t, rows[2], 2)
	assert.Equal(t, 3, model.SheetWidth(rows))
}

func createTestXLSX(t *testing.T, build func(sheet *xlsx.Sheet)) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Pricing")
	require.NoError(t, err)
	build(sheet)
	path := filepath.Join(t.TempDir(), "pricelist.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSXKeepsNumericCellsTyped(t *testing.T) {
	path := createTestXLSX(t, func(sheet *xlsx.Sheet) {
		header := sheet.AddRow()
		header.AddCell().SetString("Product")
		header.AddCell().SetString("Cost")

		row := sheet.AddRow()
		row.AddCell().SetString("Coastal Oak")
		row.AddCell().SetFloat(3.2)
	})

	rows, err := ReadXLSX(path, Options{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.CellString, rows[0][0].Kind())

	n, ok := rows[0][1].Number()
	require.True(t, ok)
	assert.Equal(t, 3.2, n)
}

func TestReadXLSXSheetSelection(t *testing.T) {
	f := xlsx.NewFile()
	first, err := f.AddSheet("First")
	require.NoError(t, err)
	first.AddRow().AddCell().SetString("a")
	second, err := f.AddSheet("Second")
	require.NoError(t, err)
	second.AddRow().AddCell().SetString("b")

	path := filepath.Join(t.TempDir(), "multi.xlsx")
	require.NoError(t, f.Save(path))

	rows, err := ReadXLSX(path, Options{SheetName: "Second"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0][0].Raw())

	_, err = ReadXLSX(path, Options{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = ReadXLSX(path, Options{SheetIndex: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadFileDispatch(t *testing.T) {
	path := writeTempCSV(t, "a,b\n")
	rows, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = ReadFile("pricelist.pdf", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
