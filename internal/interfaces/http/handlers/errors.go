// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-backend/internal/domain/analytics"
	"github.com/your-org/inventory-backend/internal/domain/forecast"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/domain/sales"
	"github.com/your-org/inventory-backend/internal/pkg/apperr"
	"github.com/your-org/inventory-backend/internal/pkg/lock"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// respondError writes the status and body for a service error
func respondError(c *gin.Context, err error) {
	var insufficient *sales.InsufficientStockError
	var negative *inventory.NegativeBalanceError

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"code":      apperr.CodeInsufficientStock,
			"sku":       insufficient.SKU,
			"available": insufficient.Available,
			"requested": insufficient.Requested,
		})
	case errors.As(err, &negative):
		c.JSON(http.StatusConflict, gin.H{
			"error":   err.Error(),
			"code":    apperr.CodeNegativeBalance,
			"sku":     negative.SKU,
			"current": negative.Current,
			"change":  negative.Change,
		})
	case errors.Is(err, sales.ErrDuplicateInvoice):
		errorJSON(c, http.StatusConflict, apperr.CodeDuplicateInvoice, err)
	case errors.Is(err, product.ErrProductExists):
		errorJSON(c, http.StatusConflict, apperr.CodeConflict, err)
	case errors.Is(err, product.ErrProductNotFound), errors.Is(err, sales.ErrSaleNotFound):
		errorJSON(c, http.StatusNotFound, apperr.CodeNotFound, err)
	case errors.Is(err, forecast.ErrInvalidHorizon):
		errorJSON(c, http.StatusBadRequest, apperr.CodeInvalidHorizon, err)
	case errors.Is(err, sales.ErrInvalidSale),
		errors.Is(err, inventory.ErrInvalidAdjustment),
		errors.Is(err, analytics.ErrInvalidPeriod),
		errors.Is(err, inventory.ErrInvalidEntry),
		errors.Is(err, product.ErrInvalidProduct):
		errorJSON(c, http.StatusBadRequest, apperr.CodeValidation, err)
	case errors.Is(err, context.DeadlineExceeded):
		errorJSON(c, http.StatusGatewayTimeout, apperr.CodeServiceUnavailable, err)
	case errors.Is(err, lock.ErrNotObtained),
		errors.Is(err, context.Canceled),
		errors.Is(err, apperr.ErrStorageUnavailable):
		errorJSON(c, http.StatusServiceUnavailable, apperr.CodeServiceUnavailable, err)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  apperr.CodeInternal,
		})
	}
}

func errorJSON(c *gin.Context, status int, code string, err error) {
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{
		"error": message,
		"code":  apperr.CodeValidation,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

// pagination reads page and limit query parameters
func pagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))

	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit, (page - 1) * limit
}
