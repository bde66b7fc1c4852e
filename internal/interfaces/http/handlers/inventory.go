// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/interfaces/http/middleware"
	"github.com/your-org/inventory-backend/internal/pkg/report"
)

// InventoryHandler handles inventory endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	productService   *product.Service
	logger           logrus.FieldLogger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service, productService *product.Service, logger logrus.FieldLogger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		productService:   productService,
		logger:           logger,
	}
}

// GetStockLevels handles GET /inventory
func (h *InventoryHandler) GetStockLevels(c *gin.Context) {
	page, limit, offset := pagination(c)

	levels, err := h.inventoryService.StockLevels(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock levels retrieved successfully",
		"data": gin.H{
			"items": levels,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetLowStock handles GET /inventory/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	threshold := 0
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "Invalid threshold", nil)
			return
		}
		threshold = n
	}

	levels, err := h.inventoryService.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock items retrieved successfully",
		"data": gin.H{
			"items": levels,
			"count": len(levels),
		},
	})
}

// GetInventoryValue handles GET /inventory/value
func (h *InventoryHandler) GetInventoryValue(c *gin.Context) {
	value, err := h.inventoryService.InventoryValue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory value calculated successfully",
		"data": gin.H{
			"total_value": value.StringFixed(2),
		},
	})
}

// GetLedger handles GET /inventory/ledger/:sku
func (h *InventoryHandler) GetLedger(c *gin.Context) {
	sku := strings.TrimSpace(c.Param("sku"))
	page, limit, offset := pagination(c)

	if !h.ensureProduct(c, sku) {
		return
	}

	entries, total, err := h.inventoryService.Ledger().Page(c.Request.Context(), sku, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	balance, err := h.inventoryService.CurrentBalance(c.Request.Context(), sku)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ledger retrieved successfully",
		"data": gin.H{
			"sku":             sku,
			"current_balance": balance,
			"entries":         entries,
			"total":           total,
			"page":            page,
			"limit":           limit,
		},
	})
}

// ExportLedger handles GET /inventory/ledger/:sku/export.xlsx
func (h *InventoryHandler) ExportLedger(c *gin.Context) {
	sku := strings.TrimSpace(c.Param("sku"))

	since, err := parseTimeQuery(c, "since")
	if err != nil {
		badRequest(c, "Invalid since date", err)
		return
	}

	if !h.ensureProduct(c, sku) {
		return
	}

	var buf bytes.Buffer
	rows, err := report.WriteLedger(&buf, sku, h.inventoryService.Ledger().History(c.Request.Context(), sku, since))
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"sku":  sku,
		"rows": rows,
	}).Info("Ledger exported")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ledger_%s.xlsx", sku))
	c.Data(http.StatusOK, report.ContentTypeXLSX, buf.Bytes())
}

// ensureProduct answers 404 for SKUs outside the catalog
func (h *InventoryHandler) ensureProduct(c *gin.Context, sku string) bool {
	exists, err := h.productService.Exists(c.Request.Context(), sku)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !exists {
		respondError(c, fmt.Errorf("%w: %s", product.ErrProductNotFound, sku))
		return false
	}
	return true
}

// AdjustStock handles POST /inventory/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req inventory.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err)
		return
	}

	entry, err := h.inventoryService.Adjust(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"operator":   middleware.OperatorFromContext(c),
		"request_id": middleware.RequestIDFromContext(c),
		"sku":        entry.SKU,
	}).Info("Manual stock adjustment")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock adjusted successfully",
		"data":    entry,
	})
}
