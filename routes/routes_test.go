package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leohmarruda/health-food-score/database"
	"github.com/leohmarruda/health-food-score/forms"
	"github.com/leohmarruda/health-food-score/models"
)

const testAPIKey = "test-key"

func setupAPI(t *testing.T) *chi.Mux {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "test.db"))
	t.Setenv("STORAGE_DIR", filepath.Join(dir, "images"))
	t.Setenv("API_KEY", testAPIKey)
	database.InitDB()
	return SetupRouter()
}

func do(t *testing.T, router *chi.Mux, method, path string, body any, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if withKey {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	router := setupAPI(t)
	rec := do(t, router, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMutationsRequireAPIKey(t *testing.T) {
	router := setupAPI(t)

	rec := do(t, router, http.MethodPost, "/foods", map[string]any{"name": "Granola"}, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodGet, "/foods", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay open")
}

func TestCreateFoodRequiresName(t *testing.T) {
	router := setupAPI(t)
	rec := do(t, router, http.MethodPost, "/foods", map[string]any{"brand": "Acme"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFoodLifecycle(t *testing.T) {
	router := setupAPI(t)

	// Create: the datastore assigns identity and the score starts at the
	// sentinel.
	rec := do(t, router, http.MethodPost, "/foods", map[string]any{
		"name":  "Granola",
		"brand": "Acme",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Food](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.ScoreNotComputed, created.HFS)
	assert.Equal(t, "v2", created.HFSVersion)

	rec = do(t, router, http.MethodGet, "/foods/"+created.ID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	// Save an eligible draft: the stub provider keeps the sentinel but the
	// record passes every check, so no warnings come back.
	rec = do(t, router, http.MethodPatch, "/foods/"+created.ID+"/update", map[string]any{
		"name":            "Granola",
		"brand":           "Acme",
		"nova":            3,
		"energy_kcal":     "420",
		"protein_g":       12.5,
		"fiber_g":         "",
		"ingredients_raw": "Oats, Honey,  Salt ,",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[map[string]any](t, rec)
	assert.Equal(t, true, saved["success"])
	assert.Equal(t, float64(models.ScoreNotComputed), saved["hfs"])
	assert.Empty(t, saved["warnings"])

	rec = do(t, router, http.MethodGet, "/foods/"+created.ID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decode[models.Food](t, rec)
	assert.Equal(t, 420.0, stored.EnergyKcal, "sanitized string input persists as a number")
	assert.Equal(t, 12.5, stored.ProteinG)
	require.NotNil(t, stored.FiberG)
	assert.Equal(t, 0.0, *stored.FiberG, "a cleared numeric field persists as 0")
	require.NotNil(t, stored.Nova)
	assert.Equal(t, 3, *stored.Nova)
	assert.Equal(t, []string{"Oats", "Honey", "Salt"}, []string(stored.IngredientsList))
	assert.Nil(t, stored.Price, "optional numerics keep their null-ness")

	// Delete, then the record is gone.
	rec = do(t, router, http.MethodDelete, "/foods/"+created.ID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/foods/"+created.ID, nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateIneligibleFoodSavesWithWarnings(t *testing.T) {
	router := setupAPI(t)

	rec := do(t, router, http.MethodPost, "/foods", map[string]any{"name": "Mystery Bar", "brand": "Acme"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Food](t, rec)

	// Ingredients only: energy and NOVA are still missing, so the save goes
	// through with the sentinel and both warnings.
	rec = do(t, router, http.MethodPatch, "/foods/"+created.ID+"/update", map[string]any{
		"name":            "Mystery Bar",
		"brand":           "Acme",
		"ingredients_raw": "Cocoa, Sugar",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[map[string]any](t, rec)
	assert.Equal(t, true, saved["success"])
	assert.Equal(t, float64(models.ScoreNotComputed), saved["hfs"])
	warnings, ok := saved["warnings"].([]any)
	require.True(t, ok)
	assert.Len(t, warnings, 2)
}

func TestUpdateWithoutBrandSkipsScoring(t *testing.T) {
	router := setupAPI(t)

	rec := do(t, router, http.MethodPost, "/foods", map[string]any{"name": "Granola"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Food](t, rec)

	// Nutritionally complete but brand-less: the score input gate keeps the
	// calculator out of the save and the record keeps the sentinel.
	rec = do(t, router, http.MethodPatch, "/foods/"+created.ID+"/update", map[string]any{
		"name":            "Granola",
		"nova":            3,
		"energy_kcal":     420,
		"ingredients_raw": "Oats, Honey",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[map[string]any](t, rec)
	assert.Equal(t, true, saved["success"])
	assert.Equal(t, float64(models.ScoreNotComputed), saved["hfs"])
	warnings, ok := saved["warnings"].([]any)
	require.True(t, ok)
	require.Len(t, warnings, 1)
	assert.Equal(t, forms.ScoreInputWarning, warnings[0])
}

func TestUpdateUnknownFood(t *testing.T) {
	router := setupAPI(t)
	rec := do(t, router, http.MethodPatch, "/foods/no-such-id/update", map[string]any{"name": "X"}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRejectsMissingName(t *testing.T) {
	router := setupAPI(t)

	rec := do(t, router, http.MethodPost, "/foods", map[string]any{"name": "Granola"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Food](t, rec)

	rec = do(t, router, http.MethodPatch, "/foods/"+created.ID+"/update", map[string]any{"name": "  "}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFoodsOrdering(t *testing.T) {
	router := setupAPI(t)

	for _, name := range []string{"Beta Bar", "Alpha Bar"} {
		rec := do(t, router, http.MethodPost, "/foods", map[string]any{"name": name}, true)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, router, http.MethodGet, "/foods?orderBy=name&direction=asc", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	foods := decode[[]models.Food](t, rec)
	require.Len(t, foods, 2)
	assert.Equal(t, "Alpha Bar", foods[0].Name)
	assert.Equal(t, "Beta Bar", foods[1].Name)

	// An unknown column falls back to the default sort instead of erroring.
	rec = do(t, router, http.MethodGet, "/foods?orderBy=evil_column", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdditiveLifecycle(t *testing.T) {
	router := setupAPI(t)

	rec := do(t, router, http.MethodPost, "/additives", map[string]any{
		"name":     "Aspartame",
		"category": "sweetener",
		"regex":    "e951|aspartame",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.FoodAdditive](t, rec)
	assert.Equal(t, 1.0, created.Weight, "weight defaults to 1")

	rec = do(t, router, http.MethodPost, "/additives", map[string]any{
		"name":  "Broken",
		"regex": "([",
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "invalid regex is rejected at the boundary")

	rec = do(t, router, http.MethodPut, "/additives/Aspartame", map[string]any{
		"category": "sweetener",
		"weight":   2,
		"regex":    "e951",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.FoodAdditive](t, rec)
	assert.Equal(t, 2.0, updated.Weight)

	rec = do(t, router, http.MethodGet, "/additives", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.FoodAdditive](t, rec)
	require.Len(t, list, 1)

	rec = do(t, router, http.MethodDelete, "/additives/Aspartame", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/additives", nil, false)
	list = decode[[]models.FoodAdditive](t, rec)
	assert.Empty(t, list)
}
