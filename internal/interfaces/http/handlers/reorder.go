// internal/interfaces/http/handlers/reorder.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-backend/internal/domain/reorder"
)

// ReorderHandler handles replenishment endpoints
type ReorderHandler struct {
	reorderService *reorder.Service
}

// NewReorderHandler creates a new reorder handler
func NewReorderHandler(reorderService *reorder.Service) *ReorderHandler {
	return &ReorderHandler{
		reorderService: reorderService,
	}
}

// GetSuggestions handles GET /inventory/reorder-suggestions
func (h *ReorderHandler) GetSuggestions(c *gin.Context) {
	suggestions, err := h.reorderService.Suggestions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reorder suggestions retrieved successfully",
		"data": gin.H{
			"suggestions": suggestions,
			"count":       len(suggestions),
		},
	})
}

// GetPlan handles GET /inventory/reorder/:sku
func (h *ReorderHandler) GetPlan(c *gin.Context) {
	plan, err := h.reorderService.Plan(c.Request.Context(), strings.TrimSpace(c.Param("sku")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reorder plan retrieved successfully",
		"data":    plan,
	})
}
