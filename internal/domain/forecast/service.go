// internal/domain/forecast/service.go
package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/pkg/metrics"
)

// HistorySource returns per-day sold quantities of a product since a point in time
type HistorySource interface {
	DailyDemand(ctx context.Context, sku string, since time.Time) ([]DemandPoint, error)
}

// Catalog is the part of the product catalog the forecaster reads
type Catalog interface {
	Get(ctx context.Context, sku string) (*product.Product, error)
	List(ctx context.Context, req product.ListRequest) ([]product.Product, error)
}

// Response is a product forecast with its summary statistics
type Response struct {
	SKU                     string    `json:"sku"`
	ProductName             string    `json:"product_name"`
	HorizonDays             int       `json:"forecast_horizon_days"`
	Forecast                []Point   `json:"forecast"`
	HistoryDays             int       `json:"history_days"`
	HistoricalAvgDailySales float64   `json:"historical_avg_daily_sales"`
	TotalPredictedDemand    float64   `json:"total_predicted_demand"`
	ConfidenceLevel         float64   `json:"confidence_level"`
	GeneratedAt             time.Time `json:"generated_at"`
}

// Summary aggregates forecasts over several products
type Summary struct {
	Category              string  `json:"category"`
	HorizonDays           int     `json:"horizon_days"`
	ProductsAnalyzed      int     `json:"products_analyzed"`
	TotalForecastedDemand float64 `json:"total_forecasted_demand"`
	AvgDailyDemand        float64 `json:"avg_daily_demand"`
}

// Service builds forecasts from the sales history
type Service struct {
	history HistorySource
	catalog Catalog
	cache   Cache
	cfg     config.ForecastConfig
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a new forecast service. cache may be nil.
func NewService(history HistorySource, catalog Catalog, cache Cache, cfg config.ForecastConfig, logger logrus.FieldLogger, m *metrics.Metrics) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 90
	}
	if cfg.SummaryProducts <= 0 {
		cfg.SummaryProducts = 20
	}
	return &Service{
		history: history,
		catalog: catalog,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Forecast returns the demand forecast of one product. A product without
// sales in the lookback window gets an empty forecast.
func (s *Service) Forecast(ctx context.Context, sku string, horizonDays int) (*Response, error) {
	if err := s.checkHorizon(horizonDays); err != nil {
		return nil, err
	}

	p, err := s.catalog.Get(ctx, sku)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(ctx, sku, horizonDays); ok {
		s.metrics.RecordForecastCache(true)
		return cached, nil
	}
	s.metrics.RecordForecastCache(false)

	start := time.Now()
	resp, err := s.build(ctx, p, horizonDays)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveForecast(time.Since(start))

	s.cache.Set(ctx, sku, horizonDays, resp)
	return resp, nil
}

// Summary forecasts the first active products of category (all when empty)
// and adds up their predicted demand.
func (s *Service) Summary(ctx context.Context, category string, horizonDays int) (*Summary, error) {
	if err := s.checkHorizon(horizonDays); err != nil {
		return nil, err
	}

	products, err := s.catalog.List(ctx, product.ListRequest{
		Category:   category,
		ActiveOnly: true,
		Limit:      s.cfg.SummaryProducts,
	})
	if err != nil {
		return nil, err
	}

	summary := &Summary{Category: category, HorizonDays: horizonDays}
	if summary.Category == "" {
		summary.Category = "all"
	}

	total := 0.0
	for i := range products {
		resp, err := s.build(ctx, &products[i], horizonDays)
		if err != nil {
			return nil, err
		}
		if len(resp.Forecast) == 0 {
			continue
		}
		total += resp.TotalPredictedDemand
		summary.ProductsAnalyzed++
	}

	summary.TotalForecastedDemand = round2(total)
	summary.AvgDailyDemand = round2(total / float64(horizonDays))
	return summary, nil
}

// Invalidate drops cached forecasts of sku after its stock moved
func (s *Service) Invalidate(ctx context.Context, sku string) {
	s.cache.Invalidate(ctx, sku)
}

func (s *Service) checkHorizon(horizonDays int) error {
	limit := s.cfg.MaxHorizonDays
	if limit <= 0 || limit > MaxHorizonDays {
		limit = MaxHorizonDays
	}
	if horizonDays < 1 || horizonDays > limit {
		return fmt.Errorf("%w: %d days, must be between 1 and %d", ErrInvalidHorizon, horizonDays, limit)
	}
	return nil
}

func (s *Service) build(ctx context.Context, p *product.Product, horizonDays int) (*Response, error) {
	now := s.now().UTC()
	since := now.AddDate(0, 0, -s.cfg.LookbackDays)

	history, err := s.history.DailyDemand(ctx, p.SKU, since)
	if err != nil {
		return nil, err
	}

	points, err := Forecast(history, horizonDays)
	if err != nil {
		return nil, err
	}

	quantities := make([]float64, len(history))
	for i, h := range history {
		quantities[i] = h.Quantity
	}

	total := 0.0
	for _, pt := range points {
		total += pt.Value
	}

	return &Response{
		SKU:                     p.SKU,
		ProductName:             p.Name,
		HorizonDays:             horizonDays,
		Forecast:                points,
		HistoryDays:             len(history),
		HistoricalAvgDailySales: round2(Mean(quantities)),
		TotalPredictedDemand:    round2(total),
		ConfidenceLevel:         ConfidenceLevel,
		GeneratedAt:             now,
	}, nil
}
