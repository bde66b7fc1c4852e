package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/inventory-backend/internal/domain/analytics"
	"github.com/your-org/inventory-backend/internal/domain/forecast"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/domain/sales"
	"github.com/your-org/inventory-backend/internal/pkg/apperr"
	"github.com/your-org/inventory-backend/internal/pkg/lock"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient stock", fmt.Errorf("record: %w", &sales.InsufficientStockError{SKU: "A", Available: 2, Requested: 5}), http.StatusConflict, apperr.CodeInsufficientStock},
		{"negative balance", &inventory.NegativeBalanceError{SKU: "A", Current: 1, Change: -3}, http.StatusConflict, apperr.CodeNegativeBalance},
		{"duplicate invoice", sales.ErrDuplicateInvoice, http.StatusConflict, apperr.CodeDuplicateInvoice},
		{"product exists", product.ErrProductExists, http.StatusConflict, apperr.CodeConflict},
		{"product not found", fmt.Errorf("%w: X", product.ErrProductNotFound), http.StatusNotFound, apperr.CodeNotFound},
		{"sale not found", sales.ErrSaleNotFound, http.StatusNotFound, apperr.CodeNotFound},
		{"invalid horizon", forecast.ErrInvalidHorizon, http.StatusBadRequest, apperr.CodeInvalidHorizon},
		{"invalid sale", sales.ErrInvalidSale, http.StatusBadRequest, apperr.CodeValidation},
		{"invalid adjustment", inventory.ErrInvalidAdjustment, http.StatusBadRequest, apperr.CodeValidation},
		{"invalid period", analytics.ErrInvalidPeriod, http.StatusBadRequest, apperr.CodeValidation},
		{"storage", apperr.Storage("insert sale", errors.New("connection reset")), http.StatusServiceUnavailable, apperr.CodeServiceUnavailable},
		{"lock", lock.ErrNotObtained, http.StatusServiceUnavailable, apperr.CodeServiceUnavailable},
		{"deadline", apperr.Storage("commit", context.DeadlineExceeded), http.StatusGatewayTimeout, apperr.CodeServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestRespondErrorInsufficientStockBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, &sales.InsufficientStockError{SKU: "SAR-001", Available: 10, Requested: 15})

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 10, body["available"])
	assert.EqualValues(t, 15, body["requested"])
	assert.Equal(t, "SAR-001", body["sku"])
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query               string
		page, limit, offset int
	}{
		{"", 1, 20, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=-1&limit=1000", 1, 20, 0},
		{"?page=x&limit=y", 1, 20, 0},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)

		page, limit, offset := pagination(c)
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.limit, limit, tt.query)
		assert.Equal(t, tt.offset, offset, tt.query)
	}
}
