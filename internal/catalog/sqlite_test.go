package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summitfloors/pricebook/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "pricebook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestSQLiteProfiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetProfile(ctx, "nope")
	assert.True(t, eris.Is(err, ErrProfileNotFound))

	rules := model.MappingRules{
		Version: 2,
		Mapping: model.ColumnMapping{
			model.FieldProductName: 0,
			model.FieldVariantName: 1,
			model.FieldUnitCost:    3,
		},
		Defaults: model.ImportDefaults{ManufacturerID: 5, ProductType: "hardwood"},
	}
	saved, err := store.SaveProfile(ctx, "shaw-2026", rules)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, rules.Mapping, saved.Rules.Mapping)
	assert.Equal(t, rules.Defaults, saved.Rules.Defaults)

	// Saving under the same name overwrites, keeping the id.
	rules.Mapping[model.FieldSKU] = 2
	again, err := store.SaveProfile(ctx, "shaw-2026", rules)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, 2, again.Rules.Mapping[model.FieldSKU])

	_, err = store.SaveProfile(ctx, "mohawk", model.MappingRules{Version: 2, Mapping: model.ColumnMapping{model.FieldProductName: 0}})
	require.NoError(t, err)

	list, err := store.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "mohawk", list[0].Name)
	assert.Equal(t, "shaw-2026", list[1].Name)
}

func TestSQLiteManufacturers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetManufacturer(ctx, 99)
	assert.True(t, eris.Is(err, ErrManufacturerNotFound))

	m, err := store.AddManufacturer(ctx, "Shaw", "hardwood")
	require.NoError(t, err)
	require.NotZero(t, m.ID)

	got, err := store.GetManufacturer(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shaw", got.Name)
	assert.Equal(t, "hardwood", got.DefaultProductType)

	_, err = store.AddManufacturer(ctx, "Mohawk", "lvp")
	require.NoError(t, err)

	list, err := store.ListManufacturers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Mohawk", list[0].Name)
}

func TestSQLiteApplyAndSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m, err := store.AddManufacturer(ctx, "Shaw", "hardwood")
	require.NoError(t, err)

	carton := 23.5
	retail := 6.99
	plan := &Plan{
		RunID:    "run-1",
		Strategy: model.StrategyVariant,
		Ops: []PlanOp{
			CreateProduct{Key: "coastal oak", Name: "Coastal Oak", ManufacturerID: m.ID, ProductType: "hardwood"},
			CreateVariant{ProductKey: "coastal oak", Name: "Natural", SKU: "CO-100", Size: `7.5"`, CartonSize: &carton, UnitCost: 3.20, RetailPrice: &retail},
			CreateVariant{ProductKey: "coastal oak", Name: "Smoked", UnitCost: 3.45},
		},
	}
	summary, err := store.Apply(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, model.ExecuteSummary{Created: 2}, summary)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	products := snap.FindProductsByName("coastal oak")
	require.Len(t, products, 1)
	variants := snap.Variants(products[0].ID)
	require.Len(t, variants, 2)
	assert.Equal(t, "Natural", variants[0].Name)
	require.NotNil(t, variants[0].CartonSize)
	assert.Equal(t, 23.5, *variants[0].CartonSize)
	require.NotNil(t, variants[0].RetailPrice)
	assert.Nil(t, variants[1].CartonSize)
	assert.Nil(t, variants[1].RetailPrice)
}

func TestSQLiteApplyUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Apply(ctx, &Plan{
		RunID:    "seed",
		Strategy: model.StrategyVariant,
		Ops: []PlanOp{
			CreateProduct{Key: "harbor mist", Name: "Harbor Mist", ProductType: "lvp"},
			CreateVariant{ProductKey: "harbor mist", Name: "Gray", UnitCost: 2.10},
		},
	})
	require.NoError(t, err)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	vid := snap.Variants(snap.FindProductsByName("Harbor Mist")[0].ID)[0].ID

	cost := 2.35
	size := `9"`
	summary, err := store.Apply(ctx, &Plan{
		RunID:    "run-2",
		Strategy: model.StrategyVariant,
		Ops:      []PlanOp{UpdateVariant{VariantID: vid, UnitCost: &cost, Size: &size}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ExecuteSummary{Updates: 1}, summary)

	snap, err = store.Snapshot(ctx)
	require.NoError(t, err)
	v := snap.Variants(snap.FindProductsByName("Harbor Mist")[0].ID)[0]
	assert.Equal(t, 2.35, v.UnitCost)
	assert.Equal(t, `9"`, v.Size)
}

// Duplicate ops for the same variant apply in order; the last one wins.
func TestSQLiteApplyLastWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Apply(ctx, &Plan{
		RunID:    "seed",
		Strategy: model.StrategyVariant,
		Ops: []PlanOp{
			CreateProduct{Key: "p", Name: "Coastal Oak"},
			CreateVariant{ProductKey: "p", Name: "Natural", UnitCost: 3.00},
		},
	})
	require.NoError(t, err)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	vid := snap.Variants(snap.FindProductsByName("Coastal Oak")[0].ID)[0].ID

	first, second := 3.20, 3.45
	_, err = store.Apply(ctx, &Plan{
		RunID:    "run-dup",
		Strategy: model.StrategyVariant,
		Ops: []PlanOp{
			UpdateVariant{VariantID: vid, UnitCost: &first},
			UpdateVariant{VariantID: vid, UnitCost: &second},
		},
	})
	require.NoError(t, err)

	snap, err = store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.45, snap.Variants(snap.FindProductsByName("Coastal Oak")[0].ID)[0].UnitCost)
}

// A failing op anywhere in the plan leaves the catalog untouched.
func TestSQLiteApplyRollsBackWholeBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Apply(ctx, &Plan{
		RunID:    "seed",
		Strategy: model.StrategyVariant,
		Ops: []PlanOp{
			CreateProduct{Key: "p", Name: "Coastal Oak"},
			CreateVariant{ProductKey: "p", Name: "Natural", UnitCost: 3.00},
		},
	})
	require.NoError(t, err)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	pid := snap.FindProductsByName("Coastal Oak")[0].ID
	vid := snap.Variants(pid)[0].ID

	cost := 9.99
	_, err = store.Apply(ctx, &Plan{
		RunID:    "run-bad",
		Strategy: model.StrategyVariant,
		Ops: []PlanOp{
			UpdateVariant{VariantID: vid, UnitCost: &cost},
			CreateVariant{ProductID: pid, Name: "Smoked", UnitCost: 3.45},
			// No such variant; forces the rollback.
			UpdateVariant{VariantID: vid + 1000, UnitCost: &cost},
		},
	})
	require.Error(t, err)

	snap, err = store.Snapshot(ctx)
	require.NoError(t, err)
	variants := snap.Variants(pid)
	require.Len(t, variants, 1)
	assert.Equal(t, 3.00, variants[0].UnitCost)
}

// The manufacturer on a created product resolves by spreadsheet name
// case-insensitively, creating a new vendor only when no match exists.
func TestSQLiteApplyManufacturerResolution(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m, err := store.AddManufacturer(ctx, "Shaw", "hardwood")
	require.NoError(t, err)

	_, err = store.Apply(ctx, &Plan{
		RunID:    "run-1",
		Strategy: model.StrategyVariant,
		Ops: []PlanOp{
			CreateProduct{Key: "a", Name: "Coastal Oak", ManufacturerName: "SHAW"},
			CreateProduct{Key: "b", Name: "Harbor Mist", ManufacturerName: "Karndean"},
		},
	})
	require.NoError(t, err)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.ID, snap.FindProductsByName("Coastal Oak")[0].ManufacturerID)

	list, err := store.ListManufacturers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Karndean", list[0].Name)
	assert.Equal(t, list[0].ID, snap.FindProductsByName("Harbor Mist")[0].ManufacturerID)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}
