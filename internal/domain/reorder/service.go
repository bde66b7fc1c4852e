// internal/domain/reorder/service.go
package reorder

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/forecast"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
	"github.com/your-org/inventory-backend/internal/domain/product"
)

// StockLister lists products that have fallen below their reorder point
type StockLister interface {
	LowStock(ctx context.Context, threshold int) ([]inventory.StockLevel, error)
}

// DemandSource returns per-day sold quantities of a product
type DemandSource interface {
	DailyDemand(ctx context.Context, sku string, since time.Time) ([]forecast.DemandPoint, error)
}

// Catalog looks up products
type Catalog interface {
	Get(ctx context.Context, sku string) (*product.Product, error)
}

// Plan holds the replenishment figures of one product
type Plan struct {
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	LeadTimeDays     int     `json:"lead_time_days"`
	AvgDailySales    float64 `json:"avg_daily_sales"`
	SafetyStock      float64 `json:"safety_stock"`
	ReorderPoint     float64 `json:"optimal_reorder_point"`
	EconomicOrderQty int     `json:"economic_order_qty"`
}

// Suggestion is a proposed replenishment of a low-stock product
type Suggestion struct {
	SKU                 string  `json:"sku"`
	Name                string  `json:"name"`
	CurrentStock        int     `json:"current_stock"`
	ReorderPoint        int     `json:"reorder_point"`
	OptimalReorderPoint float64 `json:"optimal_reorder_point"`
	EconomicOrderQty    int     `json:"economic_order_qty"`
	SuggestedQty        int     `json:"suggested_qty"`
}

// Service computes reorder points and order quantities from the sales history
type Service struct {
	stock   StockLister
	demand  DemandSource
	catalog Catalog
	cfg     config.ReorderConfig
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewService creates a new reorder service
func NewService(stock StockLister, demand DemandSource, catalog Catalog, cfg config.ReorderConfig, logger logrus.FieldLogger) *Service {
	if cfg.ServiceLevel <= 0 || cfg.ServiceLevel >= 1 {
		cfg.ServiceLevel = 0.95
	}
	return &Service{
		stock:   stock,
		demand:  demand,
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Plan computes the reorder point, safety stock and economic order quantity of sku
func (s *Service) Plan(ctx context.Context, sku string) (*Plan, error) {
	p, err := s.catalog.Get(ctx, sku)
	if err != nil {
		return nil, err
	}

	leadTime := p.LeadTimeDays
	if leadTime <= 0 {
		leadTime = DefaultLeadTimeDays
	}

	now := s.now().UTC()
	velocity, err := s.demandSince(ctx, sku, now, VelocityWindowDays)
	if err != nil {
		return nil, err
	}
	variability, err := s.demandSince(ctx, sku, now, VariabilityWindowDays)
	if err != nil {
		return nil, err
	}
	annual, err := s.demandSince(ctx, sku, now, AnnualDemandWindowDays)
	if err != nil {
		return nil, err
	}

	daily := make([]float64, len(variability))
	for i, pt := range variability {
		daily[i] = pt.Quantity
	}
	if len(daily) < minSaleDays {
		s.logger.WithField("sku", sku).Debug("Too few sale days, using default safety stock")
	}

	unitsInVelocityWindow := total(velocity)
	safety := SafetyStock(daily, leadTime, ZScore(s.cfg.ServiceLevel))

	plan := &Plan{
		SKU:              p.SKU,
		Name:             p.Name,
		LeadTimeDays:     leadTime,
		AvgDailySales:    round2(unitsInVelocityWindow / VelocityWindowDays),
		SafetyStock:      safety,
		ReorderPoint:     ReorderPoint(unitsInVelocityWindow, leadTime, safety),
		EconomicOrderQty: EconomicOrderQty(total(annual), p.CostPrice.InexactFloat64(), s.cfg.OrderCost, s.cfg.HoldingCostPct),
	}

	s.logger.WithFields(logrus.Fields{
		"sku":           plan.SKU,
		"reorder_point": plan.ReorderPoint,
		"safety_stock":  plan.SafetyStock,
		"eoq":           plan.EconomicOrderQty,
	}).Debug("Reorder plan computed")

	return plan, nil
}

// Suggestions proposes an order quantity for every product below its reorder point
func (s *Service) Suggestions(ctx context.Context) ([]Suggestion, error) {
	levels, err := s.stock.LowStock(ctx, 0)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(levels))
	for _, level := range levels {
		plan, err := s.Plan(ctx, level.SKU)
		if errors.Is(err, product.ErrProductNotFound) {
			continue
		}
		if err != nil {
			s.logger.WithError(err).WithField("sku", level.SKU).Error("Failed to compute reorder plan")
			return nil, err
		}

		suggestions = append(suggestions, Suggestion{
			SKU:                 level.SKU,
			Name:                level.Name,
			CurrentStock:        level.Balance,
			ReorderPoint:        level.ReorderPoint,
			OptimalReorderPoint: plan.ReorderPoint,
			EconomicOrderQty:    plan.EconomicOrderQty,
			SuggestedQty:        SuggestedQty(plan.ReorderPoint, level.Balance, plan.EconomicOrderQty),
		})
	}

	s.logger.WithField("count", len(suggestions)).Info("Reorder suggestions generated")
	return suggestions, nil
}

func (s *Service) demandSince(ctx context.Context, sku string, now time.Time, days int) ([]forecast.DemandPoint, error) {
	return s.demand.DailyDemand(ctx, sku, now.AddDate(0, 0, -days))
}

func total(points []forecast.DemandPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Quantity
	}
	return sum
}
