// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/analytics"
	"github.com/your-org/inventory-backend/internal/domain/forecast"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/domain/reorder"
	"github.com/your-org/inventory-backend/internal/domain/sales"
	"github.com/your-org/inventory-backend/internal/interfaces/http/handlers"
	"github.com/your-org/inventory-backend/internal/interfaces/http/middleware"
	"github.com/your-org/inventory-backend/internal/pkg/pdf"
)

// Services are the domain services the API exposes
type Services struct {
	Products  *product.Service
	Inventory *inventory.Service
	Sales     *sales.Service
	Forecast  *forecast.Service
	Analytics *analytics.Service
	Reorder   *reorder.Service
	PDF       *pdf.Service
}

// SetupRoutes registers every API route on rg. All routes require a valid token.
func SetupRoutes(rg *gin.RouterGroup, svc Services, cfg *config.Config, logger logrus.FieldLogger) {
	rg.Use(middleware.AuthMiddleware(cfg))

	SetupSalesRoutes(rg, svc, logger)
	SetupInventoryRoutes(rg, svc, logger)
	SetupForecastRoutes(rg, svc, cfg)
	SetupProductRoutes(rg, svc, logger)
	SetupAnalyticsRoutes(rg, svc)
}

// SetupSalesRoutes sets up sale recording and history routes
func SetupSalesRoutes(rg *gin.RouterGroup, svc Services, logger logrus.FieldLogger) {
	salesHandler := handlers.NewSalesHandler(svc.Sales, logger)
	invoiceHandler := handlers.NewInvoiceHandler(svc.Sales, svc.Products, svc.PDF, logger)

	s := rg.Group("/sales")
	{
		s.POST("", salesHandler.RecordSale)
		s.GET("", salesHandler.GetSales)
		s.GET("/:id", salesHandler.GetSale)
		s.GET("/:id/invoice", invoiceHandler.GetInvoiceHTML)
		s.GET("/:id/invoice.pdf", invoiceHandler.GenerateInvoice)
	}
}

// SetupInventoryRoutes sets up stock overview, ledger and adjustment routes
func SetupInventoryRoutes(rg *gin.RouterGroup, svc Services, logger logrus.FieldLogger) {
	inventoryHandler := handlers.NewInventoryHandler(svc.Inventory, svc.Products, logger)
	reorderHandler := handlers.NewReorderHandler(svc.Reorder)

	inv := rg.Group("/inventory")
	{
		inv.GET("", inventoryHandler.GetStockLevels)
		inv.GET("/low-stock", inventoryHandler.GetLowStock)
		inv.GET("/value", inventoryHandler.GetInventoryValue)
		inv.GET("/ledger/:sku", inventoryHandler.GetLedger)
		inv.GET("/ledger/:sku/export.xlsx", inventoryHandler.ExportLedger)
		inv.GET("/reorder-suggestions", reorderHandler.GetSuggestions)
		inv.GET("/reorder/:sku", reorderHandler.GetPlan)

		inv.POST("/adjust", middleware.AdminMiddleware(), inventoryHandler.AdjustStock)
	}
}

// SetupForecastRoutes sets up demand forecast routes
func SetupForecastRoutes(rg *gin.RouterGroup, svc Services, cfg *config.Config) {
	forecastHandler := handlers.NewForecastHandler(svc.Forecast, cfg.Forecast.DefaultHorizon)

	f := rg.Group("/forecast")
	{
		f.GET("", forecastHandler.GetForecast)
		f.GET("/summary", forecastHandler.GetSummary)
	}
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, svc Services, logger logrus.FieldLogger) {
	productHandler := handlers.NewProductHandler(svc.Products, logger)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:sku", productHandler.GetProduct)

		products.POST("", middleware.AdminMiddleware(), productHandler.CreateProduct)
		products.DELETE("/:sku", middleware.AdminMiddleware(), productHandler.DeactivateProduct)
	}
}

// SetupAnalyticsRoutes sets up sales analytics routes
func SetupAnalyticsRoutes(rg *gin.RouterGroup, svc Services) {
	analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics)

	a := rg.Group("/analytics")
	{
		a.GET("/revenue-trend", analyticsHandler.GetRevenueTrend)
		a.GET("/summary", analyticsHandler.GetSummary)
		a.GET("/velocity/:sku", analyticsHandler.GetSalesVelocity)
	}
}
