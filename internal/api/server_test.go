package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summitfloors/pricebook/internal/catalog"
	"github.com/summitfloors/pricebook/internal/importer"
	"github.com/summitfloors/pricebook/internal/model"
)

func newTestRouter(t *testing.T) (http.Handler, catalog.Store) {
	t.Helper()
	store, err := catalog.NewSQLite(filepath.Join(t.TempDir(), "pricebook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return NewRouter(store, importer.NewService(store), []string{"*"}), store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)
	w := doJSON(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, w))
}

func TestProfilesCRUD(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.MappingProfile](t, w))

	w = doJSON(t, h, http.MethodGet, "/profiles/shaw", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodPost, "/profiles", map[string]any{
		"name": "shaw",
		"rules": map[string]any{
			"version": 2,
			"mapping": map[string]int{"productName": 0, "variantName": 1, "unitCost": 3},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	saved := decode[model.MappingProfile](t, w)
	assert.Equal(t, "shaw", saved.Name)
	assert.Equal(t, 0, saved.Rules.Mapping[model.FieldProductName])

	w = doJSON(t, h, http.MethodGet, "/profiles/shaw", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, "/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.MappingProfile](t, w), 1)
}

func TestSaveProfileValidation(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/profiles", map[string]any{
		"rules": map[string]any{"mapping": map[string]int{"productName": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/profiles", map[string]any{
		"name":  "bad",
		"rules": map[string]any{"mapping": map[string]int{"price": 3}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "unknown field key")
}

func TestManufacturers(t *testing.T) {
	h, store := newTestRouter(t)
	m, err := store.AddManufacturer(context.Background(), "Shaw", "hardwood")
	require.NoError(t, err)

	w := doJSON(t, h, http.MethodGet, "/manufacturers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Manufacturer](t, w), 1)

	w = doJSON(t, h, http.MethodGet, "/manufacturers/"+strconv.FormatInt(m.ID, 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Shaw", decode[model.Manufacturer](t, w).Name)

	w = doJSON(t, h, http.MethodGet, "/manufacturers/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodGet, "/manufacturers/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportMap(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/import/map", map[string]any{
		"rows": [][]any{
			{"Coastal Oak", "Natural", "$3.20"},
			{"", "", ""},
			{"Coastal Oak", "Smoked", 3.45},
		},
		"mapping": map[string]int{"productName": 0, "variantName": 1, "unitCost": 2},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Candidates []model.Candidate `json:"candidates"`
		Columns    int               `json:"columns"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, 3, res.Columns)
	assert.Equal(t, 0, res.Candidates[0].RowIndex)
	assert.Equal(t, 2, res.Candidates[1].RowIndex)
	require.NotNil(t, res.Candidates[0].UnitCost)
	assert.Equal(t, 3.20, *res.Candidates[0].UnitCost)
	require.NotNil(t, res.Candidates[1].UnitCost)
	assert.Equal(t, 3.45, *res.Candidates[1].UnitCost)
}

func TestImportMapBadMapping(t *testing.T) {
	h, _ := newTestRouter(t)
	w := doJSON(t, h, http.MethodPost, "/import/map", map[string]any{
		"rows":    [][]any{{"a"}},
		"mapping": map[string]int{"productName": -1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportPreviewAndExecute(t *testing.T) {
	h, store := newTestRouter(t)

	preview := func() *importer.PreviewResult {
		w := doJSON(t, h, http.MethodPost, "/import/preview", map[string]any{
			"candidates": []model.Candidate{
				{RowIndex: 0, ProductName: "Coastal Oak", VariantName: "Natural", UnitCost: f(3.20)},
			},
			"strategy": "variant_match",
		})
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[importer.PreviewResult](t, w)
		return &res
	}

	res := preview()
	require.Len(t, res.Rows, 1)
	assert.Equal(t, model.StatusNew, res.Rows[0].Status)

	// Preview alone writes nothing.
	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Products())

	// Execute without confirmation is rejected.
	w := doJSON(t, h, http.MethodPost, "/import/execute", map[string]any{
		"rows":     res.Rows,
		"strategy": "variant_match",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/import/execute", map[string]any{
		"rows":     res.Rows,
		"strategy": "variant_match",
		"confirm":  true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[model.ExecuteSummary](t, w)
	assert.Equal(t, model.ExecuteSummary{Created: 1}, summary)

	snap, err = store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.FindProductsByName("Coastal Oak"), 1)

	// The same file now previews as a pure match; executing it is a 422.
	res = preview()
	assert.Equal(t, model.StatusMatch, res.Rows[0].Status)

	w = doJSON(t, h, http.MethodPost, "/import/execute", map[string]any{
		"rows":     res.Rows,
		"strategy": "variant_match",
		"confirm":  true,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestImportPreviewBadStrategy(t *testing.T) {
	h, _ := newTestRouter(t)
	w := doJSON(t, h, http.MethodPost, "/import/preview", map[string]any{
		"candidates": []model.Candidate{},
		"strategy":   "fuzzy",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func f(v float64) *float64 { return &v }
