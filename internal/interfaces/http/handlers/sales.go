// internal/interfaces/http/handlers/sales.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/sales"
	"github.com/your-org/inventory-backend/internal/interfaces/http/middleware"
)

// SalesHandler handles sale endpoints
type SalesHandler struct {
	salesService *sales.Service
	logger       logrus.FieldLogger
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(salesService *sales.Service, logger logrus.FieldLogger) *SalesHandler {
	return &SalesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// RecordSale handles POST /sales
func (h *SalesHandler) RecordSale(c *gin.Context) {
	var req sales.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err)
		return
	}

	sale, err := h.salesService.RecordSale(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"operator":       middleware.OperatorFromContext(c),
		"request_id":     middleware.RequestIDFromContext(c),
		"invoice_number": sale.InvoiceNumber,
	}).Debug("Sale accepted")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sale recorded successfully",
		"data":    sale,
	})
}

// GetSales handles GET /sales
func (h *SalesHandler) GetSales(c *gin.Context) {
	page, limit, offset := pagination(c)
	filter := sales.ListFilter{
		SKU:    c.Query("sku"),
		Offset: offset,
		Limit:  limit,
	}

	if raw := c.Query("payment_mode"); raw != "" {
		mode, err := sales.ParsePaymentMode(raw)
		if err != nil {
			badRequest(c, "Invalid payment mode", err)
			return
		}
		filter.PaymentMode = mode
	}

	var err error
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		badRequest(c, "Invalid from date", err)
		return
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		badRequest(c, "Invalid to date", err)
		return
	}

	list, total, err := h.salesService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales retrieved successfully",
		"data": gin.H{
			"sales": list,
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetSale handles GET /sales/:id
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid sale ID", nil)
		return
	}

	sale, err := h.salesService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sale retrieved successfully",
		"data":    sale,
	})
}

// parseTimeQuery accepts a date (2006-01-02, UTC midnight) or an RFC 3339 timestamp
func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
