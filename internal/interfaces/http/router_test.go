package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ledger"
	"github.com/jhoicas/taller-api/internal/infrastructure/pdf"
	"github.com/jhoicas/taller-api/internal/infrastructure/spreadsheet"
	apphttp "github.com/jhoicas/taller-api/internal/interfaces/http"
	"github.com/jhoicas/taller-api/internal/testutil/memstore"
	pkgjwt "github.com/jhoicas/taller-api/pkg/jwt"
	"github.com/jhoicas/taller-api/pkg/logger"
)

type testEnv struct {
	app   *fiber.App
	store *memstore.Store
}

// newTestEnv arma la API completa sobre el store en memoria. secret vacío = sin auth.
func newTestEnv(t *testing.T, secret string) *testEnv {
	t.Helper()
	store := memstore.New()
	materials := catalog.NewMaterialUseCase(store, store.Materials(), store.Adjustments(), spreadsheet.NewExcelMaterialExporter())
	projects := ledger.NewProjectUseCase(store, materials, store.Projects(), store.Lines(), pdf.NewMarotoReportGenerator(), time.Second)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Materials: materials,
		Projects:  projects,
		JWTSecret: secret,
		Logger:    logger.Nop(),
	})
	return &testEnv{app: app, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authHeader string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) createMaterial(t *testing.T, name, price string, stock, minStock int) dto.MaterialResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/materials", map[string]any{
		"name":            name,
		"category":        "wood",
		"unit":            "piece",
		"price_per_unit":  price,
		"stock_quantity":  stock,
		"min_stock_level": minStock,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[dto.MaterialResponse](t, resp)
}

func TestMaterials_CrearObtenerEHistorial(t *testing.T) {
	env := newTestEnv(t, "")
	m := env.createMaterial(t, "Tabla de pino", "12.99", 10, 3)
	assert.True(t, decimal.RequireFromString("12.99").Equal(m.PricePerUnit))

	resp := env.do(t, http.MethodGet, "/api/materials/"+m.ID, nil, "")
	got := decodeBody[dto.MaterialResponse](t, resp)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, 10, got.StockQuantity)

	resp = env.do(t, http.MethodGet, "/api/materials/"+m.ID+"/stock/history", nil, "")
	history := decodeBody[[]dto.StockAdjustmentResponse](t, resp)
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].QuantityBefore)
	assert.Equal(t, 10, history[0].QuantityAfter)
}

func TestMaterials_NoEncontrado(t *testing.T) {
	env := newTestEnv(t, "")
	resp := env.do(t, http.MethodGet, "/api/materials/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestMaterials_ValidacionYNoFields(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/materials", map[string]any{"name": "X", "category": "madera", "unit": "piece"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeBody[dto.ErrorResponse](t, resp).Code)

	m := env.createMaterial(t, "Clavos", "0.05", 500, 100)
	resp = env.do(t, http.MethodPut, "/api/materials/"+m.ID, map[string]any{}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NO_FIELDS", decodeBody[dto.ErrorResponse](t, resp).Code)

	resp = env.do(t, http.MethodGet, "/api/materials?min_price=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeBody[dto.ErrorResponse](t, resp).Code)
}

func TestMaterials_ImportesFueraDeRango(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/materials",
		map[string]any{"name": "Barniz", "category": "paint", "unit": "liter", "price_per_unit": "8.999"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeBody[dto.ErrorResponse](t, resp).Code)

	resp = env.do(t, http.MethodPost, "/api/materials",
		map[string]any{"name": "Clavos", "category": "hardware", "unit": "box", "price_per_unit": "1", "stock_quantity": 3000000000}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeBody[dto.ErrorResponse](t, resp).Code)
}

func TestMaterials_AjusteInsuficienteIncluyeMaterialID(t *testing.T) {
	env := newTestEnv(t, "")
	m := env.createMaterial(t, "Barniz", "8.50", 2, 1)

	resp := env.do(t, http.MethodPost, "/api/materials/"+m.ID+"/stock", dto.AdjustStockRequest{QuantityChange: -5, Reason: "uso"}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, m.ID, body.MaterialID)

	resp = env.do(t, http.MethodPost, "/api/materials/"+m.ID+"/stock", dto.AdjustStockRequest{QuantityChange: 3, Reason: "compra"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody[dto.AdjustStockResponse](t, resp)
	assert.Equal(t, 5, out.Material.StockQuantity)
	assert.Equal(t, "compra", out.Adjustment.Reason)
}

func TestMaterials_RutasFijasAntesDeID(t *testing.T) {
	env := newTestEnv(t, "")
	env.createMaterial(t, "Lija", "1.20", 2, 5)
	env.createMaterial(t, "Tornillos", "0.10", 0, 50)

	resp := env.do(t, http.MethodGet, "/api/materials/stats", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody[dto.MaterialStatsResponse](t, resp)
	assert.Equal(t, 2, stats.TotalMaterials)
	assert.Equal(t, 1, stats.OutOfStockCount)

	resp = env.do(t, http.MethodGet, "/api/materials/low-stock", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	low := decodeBody[[]dto.MaterialResponse](t, resp)
	require.Len(t, low, 1)
	assert.Equal(t, "Lija", low[0].Name)

	resp = env.do(t, http.MethodGet, "/api/materials/category/wood?limit=1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[dto.MaterialListResponse](t, resp)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 2, list.Page.Total)

	resp = env.do(t, http.MethodGet, "/api/materials/export", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	resp.Body.Close()
}

func TestMaterials_CalcularCosto(t *testing.T) {
	env := newTestEnv(t, "")
	m := env.createMaterial(t, "Tabla", "12.99", 1, 0)

	resp := env.do(t, http.MethodPost, "/api/materials/calculate-cost", dto.CalculateCostRequest{
		Materials: []dto.CostItemRequest{{MaterialID: m.ID, Quantity: 2}},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody[dto.CalculateCostResponse](t, resp)
	assert.True(t, decimal.RequireFromString("25.98").Equal(out.TotalCost))
	assert.False(t, out.AllAvailable)

	missing := uuid.NewString()
	resp = env.do(t, http.MethodPost, "/api/materials/calculate-cost", dto.CalculateCostRequest{
		Materials: []dto.CostItemRequest{{MaterialID: missing, Quantity: 1}},
	}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, "MATERIAL_NOT_FOUND", body.Code)
	assert.Equal(t, missing, body.MaterialID)
}

func TestProjects_CrearIniciarYReportar(t *testing.T) {
	env := newTestEnv(t, "")
	wood := env.createMaterial(t, "Tabla", "12.99", 10, 2)
	glue := env.createMaterial(t, "Cola", "17.00", 1, 0)

	resp := env.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title":           "Repisa",
		"difficulty":      "beginner",
		"category":        "woodworking",
		"estimated_hours": "3",
		"materials": []map[string]any{
			{"material_id": wood.ID, "quantity": 2},
			{"material_id": glue.ID, "quantity": 1},
		},
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	project := decodeBody[dto.ProjectDetailResponse](t, resp)
	assert.True(t, decimal.RequireFromString("42.98").Equal(project.EstimatedCost))
	assert.Equal(t, "planning", project.Status)
	require.Len(t, project.Materials, 2)

	resp = env.do(t, http.MethodGet, "/api/projects/startable", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	startable := decodeBody[[]dto.ProjectDetailResponse](t, resp)
	require.Len(t, startable, 1)
	assert.Equal(t, project.ID, startable[0].ID)

	resp = env.do(t, http.MethodPost, "/api/projects/"+project.ID+"/start", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	started := decodeBody[dto.ProjectDetailResponse](t, resp)
	assert.Equal(t, "in_progress", started.Status)

	resp = env.do(t, http.MethodPost, "/api/projects/"+project.ID+"/start", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeBody[dto.ErrorResponse](t, resp).Code)

	resp = env.do(t, http.MethodGet, "/api/materials/"+wood.ID, nil, "")
	assert.Equal(t, 8, decodeBody[dto.MaterialResponse](t, resp).StockQuantity)

	resp = env.do(t, http.MethodGet, "/api/projects/"+project.ID+"/report", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdfBytes, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))

	resp = env.do(t, http.MethodGet, "/api/projects/stats", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody[dto.ProjectStatsResponse](t, resp)
	assert.Equal(t, 1, stats.TotalProjects)
	assert.Equal(t, 1, stats.ByStatus["in_progress"])
}

func TestProjects_ErroresDelLibro(t *testing.T) {
	env := newTestEnv(t, "")

	missing := uuid.NewString()
	resp := env.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title":      "Lámpara",
		"difficulty": "intermediate",
		"category":   "electronics",
		"materials":  []map[string]any{{"material_id": missing, "quantity": 1}},
	}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "MATERIAL_NOT_FOUND", decodeBody[dto.ErrorResponse](t, resp).Code)

	resp = env.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title":      "Sin materiales",
		"difficulty": "beginner",
		"category":   "crafts",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	empty := decodeBody[dto.ProjectDetailResponse](t, resp)

	resp = env.do(t, http.MethodPost, "/api/projects/"+empty.ID+"/start", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "NO_MATERIALS", decodeBody[dto.ErrorResponse](t, resp).Code)

	resp = env.do(t, http.MethodDelete, "/api/projects/"+empty.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/projects/"+empty.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_EscriturasProtegidasConSecret(t *testing.T) {
	env := newTestEnv(t, testJWTSecret)
	material := map[string]any{"name": "Tabla", "category": "wood", "unit": "piece", "price_per_unit": "5"}

	resp := env.do(t, http.MethodPost, "/api/materials", material, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/materials", material, tokenForRole(t, pkgjwt.RoleMaker))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/materials", material, tokenForRole(t, pkgjwt.RoleAdmin))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/materials", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title": "Caja", "difficulty": "beginner", "category": "crafts",
	}, tokenForRole(t, pkgjwt.RoleMaker))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}
