// internal/interfaces/http/handlers/forecast.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-backend/internal/domain/forecast"
)

// ForecastHandler handles demand forecast endpoints
type ForecastHandler struct {
	forecastService *forecast.Service
	defaultHorizon  string
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(forecastService *forecast.Service, defaultHorizon string) *ForecastHandler {
	if defaultHorizon == "" {
		defaultHorizon = forecast.DefaultHorizon
	}
	return &ForecastHandler{
		forecastService: forecastService,
		defaultHorizon:  defaultHorizon,
	}
}

// GetForecast handles GET /forecast?sku=&horizon=
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	sku := strings.TrimSpace(c.Query("sku"))
	if sku == "" {
		badRequest(c, "sku is required", nil)
		return
	}

	days, err := forecast.ParseHorizon(c.DefaultQuery("horizon", h.defaultHorizon))
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.forecastService.Forecast(c.Request.Context(), sku, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Forecast generated successfully",
		"data":    resp,
	})
}

// GetSummary handles GET /forecast/summary?category=&horizon=
func (h *ForecastHandler) GetSummary(c *gin.Context) {
	days, err := forecast.ParseHorizon(c.DefaultQuery("horizon", h.defaultHorizon))
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.forecastService.Summary(c.Request.Context(), c.Query("category"), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Forecast summary generated successfully",
		"data":    summary,
	})
}
