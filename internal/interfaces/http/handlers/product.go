// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/interfaces/http/middleware"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	productService *product.Service
	logger         logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, logger logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	page, limit, offset := pagination(c)

	// Inactive products are only listed for admins that ask for them
	activeOnly := !(c.Query("include_inactive") == "true" && middleware.IsAdminFromContext(c))

	products, err := h.productService.List(c.Request.Context(), product.ListRequest{
		Category:   c.Query("category"),
		ActiveOnly: activeOnly,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data": gin.H{
			"products": products,
			"page":     page,
			"limit":    limit,
		},
	})
}

// GetProduct handles GET /products/:sku
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.productService.Get(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err)
		return
	}

	p, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"operator": middleware.OperatorFromContext(c),
		"sku":      p.SKU,
	}).Info("Product created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    p,
	})
}

// DeactivateProduct handles DELETE /products/:sku. The product is hidden from
// listings and sales; its ledger and sales history are kept.
func (h *ProductHandler) DeactivateProduct(c *gin.Context) {
	sku := c.Param("sku")
	if err := h.productService.Deactivate(c.Request.Context(), sku); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"operator": middleware.OperatorFromContext(c),
		"sku":      sku,
	}).Info("Product deactivated")

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deactivated successfully",
	})
}
