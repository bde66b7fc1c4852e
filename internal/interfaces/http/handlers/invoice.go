// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/domain/sales"
	"github.com/your-org/inventory-backend/internal/pkg/pdf"
)

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	salesService   *sales.Service
	productService *product.Service
	pdfService     *pdf.Service
	logger         logrus.FieldLogger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(salesService *sales.Service, productService *product.Service, pdfService *pdf.Service, logger logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{
		salesService:   salesService,
		productService: productService,
		pdfService:     pdfService,
		logger:         logger,
	}
}

// GenerateInvoice handles GET /sales/:id/invoice.pdf
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	sale, p, ok := h.load(c)
	if !ok {
		return
	}

	pdfBuffer, err := h.pdfService.GenerateInvoice(sale, p)
	if err != nil {
		h.logger.WithError(err).WithField("invoice_number", sale.InvoiceNumber).Error("Failed to generate invoice")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate invoice",
		})
		return
	}

	filename := fmt.Sprintf("invoice_%s.pdf", sale.InvoiceNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}

// GetInvoiceHTML handles GET /sales/:id/invoice
func (h *InvoiceHandler) GetInvoiceHTML(c *gin.Context) {
	sale, p, ok := h.load(c)
	if !ok {
		return
	}

	html, err := h.pdfService.InvoiceHTML(sale, p)
	if err != nil {
		h.logger.WithError(err).WithField("invoice_number", sale.InvoiceNumber).Error("Failed to render invoice")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to render invoice",
		})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *InvoiceHandler) load(c *gin.Context) (*sales.Sale, *product.Product, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid sale ID", nil)
		return nil, nil, false
	}

	sale, err := h.salesService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}

	p, err := h.productService.Get(c.Request.Context(), sale.SKU)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return sale, p, true
}
