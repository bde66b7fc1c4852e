package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/analytics"
	"github.com/your-org/inventory-backend/internal/domain/forecast"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/domain/reorder"
	"github.com/your-org/inventory-backend/internal/domain/sales"
	"github.com/your-org/inventory-backend/internal/pkg/auth"
	"github.com/your-org/inventory-backend/internal/pkg/lock"
	"github.com/your-org/inventory-backend/internal/pkg/logger"
	"github.com/your-org/inventory-backend/internal/pkg/pdf"
	"github.com/your-org/inventory-backend/internal/pkg/report"
	"github.com/your-org/inventory-backend/internal/pkg/testdb"
)

type apiFixture struct {
	router *gin.Engine
	svc    Services
	admin  string
	clerk  string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:      config.AppConfig{Name: "test"},
		JWT:      config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
		Forecast: config.ForecastConfig{LookbackDays: 90, MaxHorizonDays: 365, DefaultHorizon: "4w", SummaryProducts: 20},
		Company:  config.CompanyConfig{Name: "Garb & Glitz"},
	}

	db := testdb.New(t, &product.Product{}, &inventory.LedgerEntry{}, &sales.Sale{})
	log := logger.Discard()
	products := product.NewService(db)
	inv := inventory.NewService(db, lock.NewLocalLocker(), log, nil)
	salesSvc := sales.NewService(db, inv, log, nil)
	forecastSvc := forecast.NewService(salesSvc, products, nil, cfg.Forecast, log, nil)
	inv.InvalidateOnChange(forecastSvc)
	svc := Services{
		Products:  products,
		Inventory: inv,
		Sales:     salesSvc,
		Forecast:  forecastSvc,
		Analytics: analytics.NewService(db, inv, log),
		Reorder:   reorder.NewService(inv, salesSvc, products, cfg.Reorder, log),
		PDF:       pdf.NewService(cfg),
	}

	router := gin.New()
	SetupRoutes(router.Group("/api/v1"), svc, cfg, log)

	jwt := auth.NewJWTManager(cfg)
	admin, err := jwt.GenerateAccessToken("owner", true)
	require.NoError(t, err)
	clerk, err := jwt.GenerateAccessToken("counter-1", false)
	require.NoError(t, err)

	return &apiFixture{router: router, svc: svc, admin: admin, clerk: clerk}
}

func (f *apiFixture) stock(t *testing.T, sku string, qty int) {
	t.Helper()
	_, err := f.svc.Products.Create(context.Background(), &product.CreateProductRequest{
		SKU:       sku,
		Name:      "Banarasi Silk " + sku,
		Category:  "saree",
		CostPrice: decimal.NewFromInt(800),
		SellPrice: decimal.NewFromInt(1500),
	})
	require.NoError(t, err)
	if qty > 0 {
		_, err = f.svc.Inventory.Adjust(context.Background(), &inventory.AdjustRequest{
			SKU: sku, ChangeQty: qty, Reason: "Opening stock", ReasonCode: inventory.ReasonPurchase,
		})
		require.NoError(t, err)
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRequiresToken(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodGet, "/api/v1/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/inventory", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordSaleEndpoint(t *testing.T) {
	f := newAPI(t)
	f.stock(t, "SAR-001", 10)

	w := f.do(t, http.MethodPost, "/api/v1/sales", f.clerk, gin.H{
		"sku": "SAR-001", "quantity": 3, "unit_price": "1499.99", "payment_mode": "upi",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "SAR-001", data["sku"])
	assert.Equal(t, "4499.97", data["total_amount"])
	assert.Equal(t, "UPI", data["payment_mode"])
	assert.True(t, strings.HasPrefix(data["invoice_number"].(string), "INV-"))

	balance, err := f.svc.Inventory.CurrentBalance(context.Background(), "SAR-001")
	require.NoError(t, err)
	assert.Equal(t, 7, balance)

	id := data["id"].(string)
	w = f.do(t, http.MethodGet, "/api/v1/sales/"+id, f.clerk, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/sales/"+id+"/invoice", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), data["invoice_number"].(string))

	w = f.do(t, http.MethodGet, "/api/v1/sales?sku=SAR-001", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 1, list["total"])
}

func TestRecordSaleErrors(t *testing.T) {
	f := newAPI(t)
	f.stock(t, "SAR-001", 10)

	tests := []struct {
		name   string
		body   gin.H
		status int
		code   string
	}{
		{
			name:   "insufficient stock",
			body:   gin.H{"sku": "SAR-001", "quantity": 15, "unit_price": 100, "payment_mode": "CARD"},
			status: http.StatusConflict,
			code:   "INSUFFICIENT_STOCK",
		},
		{
			name:   "unknown product",
			body:   gin.H{"sku": "NOPE-1", "quantity": 1, "unit_price": 100, "payment_mode": "Cash"},
			status: http.StatusNotFound,
			code:   "RESOURCE_NOT_FOUND",
		},
		{
			name:   "unknown payment mode",
			body:   gin.H{"sku": "SAR-001", "quantity": 1, "unit_price": 100, "payment_mode": "Barter"},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "missing quantity",
			body:   gin.H{"sku": "SAR-001", "unit_price": 100, "payment_mode": "Cash"},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/v1/sales", f.clerk, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode(t, w)["code"])
		})
	}

	w := f.do(t, http.MethodPost, "/api/v1/sales", f.clerk, tests[0].body)
	body := decode(t, w)
	assert.EqualValues(t, 10, body["available"])
	assert.EqualValues(t, 15, body["requested"])

	balance, err := f.svc.Inventory.CurrentBalance(context.Background(), "SAR-001")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}

func TestGetSaleBadID(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodGet, "/api/v1/sales/42", f.clerk, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/sales/5b0c7e33-5d8e-4f57-9d0c-0b6f1c1d2e3f", f.clerk, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdjustRequiresAdmin(t *testing.T) {
	f := newAPI(t)
	f.stock(t, "KUR-001", 2)

	body := gin.H{"sku": "KUR-001", "change_qty": 5, "reason": "PO-77 received", "reason_code": "purchase"}

	w := f.do(t, http.MethodPost, "/api/v1/inventory/adjust", f.clerk, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/inventory/adjust", f.admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 7, decode(t, w)["data"].(map[string]any)["balance_qty"])

	w = f.do(t, http.MethodPost, "/api/v1/inventory/adjust", f.admin, gin.H{
		"sku": "KUR-001", "change_qty": -8, "reason": "Damaged",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "NEGATIVE_BALANCE", resp["code"])
	assert.EqualValues(t, 7, resp["current"])
}

func TestInventoryEndpoints(t *testing.T) {
	f := newAPI(t)
	f.stock(t, "SAR-001", 3)
	f.stock(t, "SAR-002", 40)

	w := f.do(t, http.MethodGet, "/api/v1/inventory/low-stock", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	low := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 1, low["count"])

	w = f.do(t, http.MethodGet, "/api/v1/inventory/low-stock?threshold=-1", f.clerk, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/inventory/value", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "34400.00", decode(t, w)["data"].(map[string]any)["total_value"])

	w = f.do(t, http.MethodGet, "/api/v1/inventory/ledger/SAR-002", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 40, ledger["current_balance"])
	assert.EqualValues(t, 1, ledger["total"])

	w = f.do(t, http.MethodGet, "/api/v1/inventory/ledger/NOPE", f.clerk, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderEndpoints(t *testing.T) {
	f := newAPI(t)
	f.stock(t, "SAR-001", 3)
	f.stock(t, "SAR-002", 40)

	w := f.do(t, http.MethodGet, "/api/v1/inventory/reorder-suggestions", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	require.EqualValues(t, 1, data["count"])

	// no sales yet: default safety stock of 10, so 2 × 10 − 3 = 17 beats the default order of 10
	s := data["suggestions"].([]any)[0].(map[string]any)
	assert.Equal(t, "SAR-001", s["sku"])
	assert.EqualValues(t, 3, s["current_stock"])
	assert.EqualValues(t, 10, s["optimal_reorder_point"])
	assert.EqualValues(t, 17, s["suggested_qty"])

	w = f.do(t, http.MethodGet, "/api/v1/inventory/reorder/SAR-002", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	plan := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 7, plan["lead_time_days"])
	assert.EqualValues(t, 10, plan["economic_order_qty"])

	w = f.do(t, http.MethodGet, "/api/v1/inventory/reorder/NOPE", f.clerk, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportLedger(t *testing.T) {
	f := newAPI(t)
	f.stock(t, "SAR-001", 10)

	w := f.do(t, http.MethodPost, "/api/v1/sales", f.clerk, gin.H{
		"sku": "SAR-001", "quantity": 4, "unit_price": 1500, "payment_mode": "Cash",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/inventory/ledger/SAR-001/export.xlsx", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, report.ContentTypeXLSX, w.Header().Get("Content-Type"))

	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("SAR-001")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "10", rows[1][4])
	assert.Equal(t, "-4", rows[2][3])
	assert.Equal(t, "6", rows[2][4])

	w = f.do(t, http.MethodGet, "/api/v1/inventory/ledger/NOPE/export.xlsx", f.clerk, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForecastEndpoints(t *testing.T) {
	f := newAPI(t)
	f.stock(t, "SAR-001", 50)

	w := f.do(t, http.MethodPost, "/api/v1/sales", f.clerk, gin.H{
		"sku": "SAR-001", "quantity": 5, "unit_price": 1500, "payment_mode": "Card",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/forecast?sku=SAR-001&horizon=2w", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 14, data["forecast_horizon_days"])
	assert.Len(t, data["forecast"], 14)
	assert.EqualValues(t, 0.95, data["confidence_level"])

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/forecast?sku=SAR-001&horizon=53w", http.StatusBadRequest},
		{"/api/v1/forecast?sku=SAR-001&horizon=0d", http.StatusBadRequest},
		{"/api/v1/forecast?sku=SAR-001&horizon=4m", http.StatusBadRequest},
		{"/api/v1/forecast?horizon=4w", http.StatusBadRequest},
		{"/api/v1/forecast?sku=NOPE", http.StatusNotFound},
		{"/api/v1/forecast/summary?category=saree", http.StatusOK},
	}
	for _, tt := range tests {
		w := f.do(t, http.MethodGet, tt.path, f.clerk, nil)
		assert.Equal(t, tt.status, w.Code, tt.path)
	}
}

func TestProductEndpoints(t *testing.T) {
	f := newAPI(t)

	body := gin.H{"sku": "LEH-001", "name": "Bridal Lehenga", "category": "lehenga", "cost_price": "9000", "sell_price": "18000"}

	w := f.do(t, http.MethodPost, "/api/v1/products", f.clerk, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/products", f.admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/products", f.admin, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/products/LEH-001", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bridal Lehenga", decode(t, w)["data"].(map[string]any)["name"])

	w = f.do(t, http.MethodGet, "/api/v1/products?category=lehenga", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"].(map[string]any)["products"], 1)

	w = f.do(t, http.MethodDelete, "/api/v1/products/LEH-001", f.clerk, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodDelete, "/api/v1/products/LEH-001", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/v1/products?category=lehenga", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"].(map[string]any)["products"])

	w = f.do(t, http.MethodDelete, "/api/v1/products/NOPE", f.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	f := newAPI(t)
	f.stock(t, "SAR-001", 20)

	w := f.do(t, http.MethodPost, "/api/v1/sales", f.clerk, gin.H{
		"sku": "SAR-001", "quantity": 2, "unit_price": "1500", "payment_mode": "Cash",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/analytics/summary?days=7", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sum := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 1, sum["total_transactions"])
	assert.Equal(t, "3000", sum["total_revenue"])

	w = f.do(t, http.MethodGet, "/api/v1/analytics/revenue-trend?days=7", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 8)

	w = f.do(t, http.MethodGet, "/api/v1/analytics/revenue-trend?days=3", f.clerk, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/analytics/velocity/SAR-001?days=abc", f.clerk, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/analytics/velocity/SAR-001?days=10", f.clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 0.2, decode(t, w)["data"].(map[string]any)["units_per_day"], 1e-9)
}
