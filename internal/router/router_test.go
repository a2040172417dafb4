package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/config"
	"github.com/kentonium3/bake-tracker-sub002/internal/infra"
	"github.com/kentonium3/bake-tracker-sub002/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))

	return router.New(&config.Config{Env: "test"}, db, nil, infra.NewMemoryCache(32, time.Minute))
}

func call(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createID(t *testing.T, r http.Handler, path string, body any) uint {
	t.Helper()
	w := call(t, r, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(t, w)["id"].(float64))
}

func decimalField(t *testing.T, m map[string]any, key string) decimal.Decimal {
	t.Helper()
	raw, ok := m[key].(string)
	require.True(t, ok, "%s is not a decimal string: %v", key, m[key])
	return decimal.RequireFromString(raw)
}

// sampler sets up Cookie (2.00) and Box (3.50) and a Sampler [Cookie×4, Box×1]
// written with the legacy per-type keys.
func sampler(t *testing.T, r http.Handler) (cookie, box, asm uint) {
	t.Helper()
	cookie = createID(t, r, "/v1/finished-units", map[string]any{"display_name": "Cookie", "unit_cost": "2.00", "inventory_count": 10})
	box = createID(t, r, "/v1/material-units", map[string]any{"display_name": "Box", "unit_cost": "3.50", "inventory_count": "5"})
	asm = createID(t, r, "/v1/assemblies", map[string]any{
		"display_name": "Sampler",
		"components": []map[string]any{
			{"finished_unit_id": cookie, "component_quantity": 4},
			{"material_unit_id": box},
		},
	})
	return cookie, box, asm
}

func TestHealth(t *testing.T) {
	r := newEngine(t)
	w := call(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAssemblyLifecycle(t *testing.T) {
	r := newEngine(t)
	cookie, _, asm := sampler(t, r)

	w := call(t, r, http.MethodGet, fmt.Sprintf("/v1/assemblies/%d/costs", asm), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decimalField(t, decode(t, w), "total_assembly_cost").Equal(decimal.RequireFromString("11.50")))

	w = call(t, r, http.MethodGet, "/v1/assemblies/slug/sampler", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["components"], 2)

	w = call(t, r, http.MethodPatch, fmt.Sprintf("/v1/assemblies/%d/components/finished_unit/%d", asm, cookie),
		map[string]any{"quantity": "2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, http.MethodGet, fmt.Sprintf("/v1/assemblies/%d/requirements?quantity=3", asm), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "available", decode(t, w)["availability_status"])

	w = call(t, r, http.MethodPost, fmt.Sprintf("/v1/assemblies/%d/produce", asm), map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode(t, w)["inventory_count"])

	w = call(t, r, http.MethodPost, fmt.Sprintf("/v1/assemblies/%d/produce", asm), map[string]any{"quantity": 50})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient_inventory", decode(t, w)["code"])

	w = call(t, r, http.MethodGet, fmt.Sprintf("/v1/assemblies/%d/hierarchy?max_depth=2", asm), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["level"])

	w = call(t, r, http.MethodGet, fmt.Sprintf("/v1/assemblies/%d/bom.pdf?quantity=2", asm), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = call(t, r, http.MethodGet, "/v1/movements?kind=assembly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["total"])
}

func TestErrorMapping(t *testing.T) {
	r := newEngine(t)
	cookie, _, asm := sampler(t, r)
	outer := createID(t, r, "/v1/assemblies", map[string]any{
		"display_name": "Outer",
		"components":   []map[string]any{{"component_type": "finished_good", "component_id": asm, "quantity": 2}},
	})

	t.Run("not found", func(t *testing.T) {
		w := call(t, r, http.MethodGet, "/v1/assemblies/999", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, decode(t, w)["detail"], "not found")
	})

	t.Run("bad id", func(t *testing.T) {
		w := call(t, r, http.MethodGet, "/v1/assemblies/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cycle", func(t *testing.T) {
		w := call(t, r, http.MethodPost, fmt.Sprintf("/v1/assemblies/%d/components", asm),
			map[string]any{"finished_good_id": outer})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "circular_reference", decode(t, w)["code"])

		w = call(t, r, http.MethodPost, "/v1/compositions/cycle-check", map[string]any{"parent_id": asm, "child_id": outer})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decode(t, w)["safe"])
	})

	t.Run("mixed component keys", func(t *testing.T) {
		w := call(t, r, http.MethodPost, fmt.Sprintf("/v1/assemblies/%d/components", outer),
			map[string]any{"component_type": "finished_unit", "component_id": cookie, "finished_unit_id": cookie})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode(t, w)["fields"], "component")
	})

	t.Run("conflicting quantities", func(t *testing.T) {
		w := call(t, r, http.MethodPost, fmt.Sprintf("/v1/assemblies/%d/components", outer),
			map[string]any{"finished_unit_id": cookie, "quantity": 1, "component_quantity": 2})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("missing display name", func(t *testing.T) {
		w := call(t, r, http.MethodPost, "/v1/assemblies", map[string]any{"assembly_type": "GIFT_BOX"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode(t, w)["fields"], "DisplayName")
	})

	t.Run("referenced delete", func(t *testing.T) {
		w := call(t, r, http.MethodDelete, fmt.Sprintf("/v1/assemblies/%d", asm), nil)
		require.Equal(t, http.StatusConflict, w.Code)
		body := decode(t, w)
		assert.Equal(t, "referenced_entity", body["code"])
		assert.Equal(t, []any{"Outer"}, body["assemblies"])
		assert.EqualValues(t, 1, body["assembly_count"])
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/assemblies", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecordProductionCreatesBare(t *testing.T) {
	r := newEngine(t)
	cookie := createID(t, r, "/v1/finished-units", map[string]any{"display_name": "Shortbread", "unit_cost": "0.35"})

	w := call(t, r, http.MethodPost, fmt.Sprintf("/v1/finished-units/%d/production", cookie), map[string]any{"quantity": 12})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	require.NotNil(t, body["bare_assembly_id"])

	w = call(t, r, http.MethodGet, "/v1/assemblies?assembly_type=BARE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])
}
