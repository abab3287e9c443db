package ingest

import "github.com/summitfloors/pricebook/internal/model"

// MapRows applies a column mapping to raw rows and returns the normalized
// candidates. Rows whose mapped product name cleans to empty are dropped
// entirely; that single rule removes blank lines, section headers, and junk
// rows without a separate heuristic.
//
// Import defaults are deliberately not merged here. They ride along to the
// matcher, which applies them only when creating new catalog entries, so a
// default can never overwrite an existing catalog value during an update.
//
// The function is pure: calling it twice on the same inputs yields identical
// output, and the source row order is preserved.
func MapRows(rows []model.RawRow, mapping model.ColumnMapping) []model.Candidate {
	candidates := make([]model.Candidate, 0, len(rows))

	for i, row := range rows {
		c := model.Candidate{RowIndex: i}

		for key, col := range mapping {
			if col < 0 || col >= len(row) {
				// Ragged row; this column simply does not exist here.
				continue
			}
			assign(&c, key, row[col])
		}

		if c.ProductName == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates
}

func assign(c *model.Candidate, key model.FieldKey, cell model.Cell) {
	switch key {
	case model.FieldManufacturer:
		c.Manufacturer = stringField(cell)
	case model.FieldProductName:
		c.ProductName = stringField(cell)
	case model.FieldVariantName:
		c.VariantName = stringField(cell)
	case model.FieldSKU:
		c.SKU = stringField(cell)
	case model.FieldSize:
		c.Size = stringField(cell)
	case model.FieldCartonSize:
		c.CartonSize = numberField(cell)
	case model.FieldUnitCost:
		c.UnitCost = numberField(cell)
	case model.FieldRetailPrice:
		c.RetailPrice = numberField(cell)
	}
}
