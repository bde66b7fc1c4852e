// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-backend/internal/domain/analytics"
)

// AnalyticsHandler handles sales analytics endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetRevenueTrend handles GET /analytics/revenue-trend
func (h *AnalyticsHandler) GetRevenueTrend(c *gin.Context) {
	days, ok := daysQuery(c, "90")
	if !ok {
		return
	}

	trend, err := h.analyticsService.RevenueTrend(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Revenue trend retrieved successfully",
		"data":    trend,
	})
}

// GetSummary handles GET /analytics/summary
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	days, ok := daysQuery(c, "30")
	if !ok {
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Analytics summary retrieved successfully",
		"data":    summary,
	})
}

// GetSalesVelocity handles GET /analytics/velocity/:sku
func (h *AnalyticsHandler) GetSalesVelocity(c *gin.Context) {
	days, ok := daysQuery(c, "30")
	if !ok {
		return
	}

	velocity, err := h.analyticsService.SalesVelocity(c.Request.Context(), c.Param("sku"), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales velocity retrieved successfully",
		"data":    velocity,
	})
}

func daysQuery(c *gin.Context, def string) (int, bool) {
	days, err := strconv.Atoi(c.DefaultQuery("days", def))
	if err != nil {
		badRequest(c, "days must be a number", nil)
		return 0, false
	}
	return days, true
}
