// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Period bounds in days
const (
	MinTrendDays        = 7
	MaxPeriodDays       = 365
	defaultVelocityDays = 30
)

// ErrInvalidPeriod is returned for analysis windows outside the accepted range
var ErrInvalidPeriod = errors.New("invalid analysis period")

// StockValuer reports the current value of stock on hand
type StockValuer interface {
	InventoryValue(ctx context.Context) (decimal.Decimal, error)
}

// Service handles analytics business logic
type Service struct {
	db     *gorm.DB
	stock  StockValuer
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, stock StockValuer, logger logrus.FieldLogger) *Service {
	return &Service{
		db:     db,
		stock:  stock,
		logger: logger,
		now:    time.Now,
	}
}

// DailyRevenue is one day of the revenue trend
type DailyRevenue struct {
	Date             string          `json:"date"`
	Revenue          decimal.Decimal `json:"revenue"`
	UnitsSold        int             `json:"units_sold"`
	TransactionCount int             `json:"transaction_count"`
	AvgOrderValue    decimal.Decimal `json:"avg_order_value"`
}

// Summary holds the key sales figures of a period
type Summary struct {
	PeriodDays         int             `json:"period_days"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalUnitsSold     int             `json:"total_units_sold"`
	TotalTransactions  int             `json:"total_transactions"`
	UniqueProductsSold int             `json:"unique_products_sold"`
	AvgOrderValue      decimal.Decimal `json:"avg_order_value"`
	AvgDailyRevenue    decimal.Decimal `json:"avg_daily_revenue"`
	CostOfGoodsSold    decimal.Decimal `json:"cost_of_goods_sold"`
	InventoryValue     decimal.Decimal `json:"inventory_value"`
	InventoryTurnover  float64         `json:"inventory_turnover"`
}

// Velocity is the average number of units of a product sold per day
type Velocity struct {
	SKU         string  `json:"sku"`
	PeriodDays  int     `json:"period_days"`
	UnitsSold   int     `json:"units_sold"`
	UnitsPerDay float64 `json:"units_per_day"`
}

type saleRow struct {
	SKU       string
	Quantity  int
	Total     decimal.Decimal
	CostPrice decimal.NullDecimal
	CreatedAt time.Time
}

// RevenueTrend returns revenue per UTC day for the last days days, today
// included, with zero entries for days without sales.
func (s *Service) RevenueTrend(ctx context.Context, days int) ([]DailyRevenue, error) {
	if days < MinTrendDays || days > MaxPeriodDays {
		return nil, fmt.Errorf("%w: days must be between %d and %d", ErrInvalidPeriod, MinTrendDays, MaxPeriodDays)
	}

	start := startOfDay(s.now()).AddDate(0, 0, -days)
	rows, err := s.salesSince(ctx, start)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*DailyRevenue)
	for _, r := range rows {
		key := r.CreatedAt.UTC().Format(time.DateOnly)
		d, ok := byDay[key]
		if !ok {
			d = &DailyRevenue{Date: key, Revenue: decimal.Zero}
			byDay[key] = d
		}
		d.Revenue = d.Revenue.Add(r.Total)
		d.UnitsSold += r.Quantity
		d.TransactionCount++
	}

	today := startOfDay(s.now())
	trend := make([]DailyRevenue, 0, days+1)
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		d, ok := byDay[key]
		if !ok {
			trend = append(trend, DailyRevenue{Date: key, Revenue: decimal.Zero, AvgOrderValue: decimal.Zero})
			continue
		}
		d.Revenue = d.Revenue.Round(2)
		d.AvgOrderValue = average(d.Revenue, d.TransactionCount)
		trend = append(trend, *d)
	}
	return trend, nil
}

// Summary computes totals over the last days days. Inventory turnover is
// the cost of goods sold over the current stock value.
func (s *Service) Summary(ctx context.Context, days int) (*Summary, error) {
	if days < 1 || days > MaxPeriodDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidPeriod, MaxPeriodDays)
	}

	rows, err := s.salesSince(ctx, s.now().UTC().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		PeriodDays:      days,
		TotalRevenue:    decimal.Zero,
		CostOfGoodsSold: decimal.Zero,
	}
	skus := make(map[string]struct{})
	for _, r := range rows {
		sum.TotalRevenue = sum.TotalRevenue.Add(r.Total)
		sum.TotalUnitsSold += r.Quantity
		sum.TotalTransactions++
		skus[r.SKU] = struct{}{}
		if r.CostPrice.Valid {
			sum.CostOfGoodsSold = sum.CostOfGoodsSold.Add(r.CostPrice.Decimal.Mul(decimal.NewFromInt(int64(r.Quantity))))
		}
	}
	sum.UniqueProductsSold = len(skus)
	sum.TotalRevenue = sum.TotalRevenue.Round(2)
	sum.CostOfGoodsSold = sum.CostOfGoodsSold.Round(2)
	sum.AvgOrderValue = average(sum.TotalRevenue, sum.TotalTransactions)
	sum.AvgDailyRevenue = average(sum.TotalRevenue, days)

	value, err := s.stock.InventoryValue(ctx)
	if err != nil {
		return nil, err
	}
	sum.InventoryValue = value
	if value.IsPositive() {
		sum.InventoryTurnover = sum.CostOfGoodsSold.Div(value).Round(2).InexactFloat64()
	}

	s.logger.WithFields(logrus.Fields{
		"period_days":  days,
		"transactions": sum.TotalTransactions,
		"turnover":     sum.InventoryTurnover,
	}).Debug("Analytics summary computed")

	return sum, nil
}

// SalesVelocity returns units of sku sold per day over the last days days
func (s *Service) SalesVelocity(ctx context.Context, sku string, days int) (*Velocity, error) {
	if days <= 0 {
		days = defaultVelocityDays
	}
	if days > MaxPeriodDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidPeriod, MaxPeriodDays)
	}

	var units int
	err := s.db.WithContext(ctx).
		Table("sales").
		Select("COALESCE(SUM(quantity), 0)").
		Where("sku = ? AND created_at >= ?", sku, s.now().UTC().AddDate(0, 0, -days)).
		Scan(&units).Error
	if err != nil {
		return nil, apperr.Storage("compute sales velocity", err)
	}

	perDay, _ := decimal.NewFromInt(int64(units)).Div(decimal.NewFromInt(int64(days))).Round(2).Float64()
	return &Velocity{SKU: sku, PeriodDays: days, UnitsSold: units, UnitsPerDay: perDay}, nil
}

func (s *Service) salesSince(ctx context.Context, since time.Time) ([]saleRow, error) {
	var rows []saleRow
	err := s.db.WithContext(ctx).
		Table("sales AS s").
		Select("s.sku, s.quantity, s.total, s.created_at, p.cost_price").
		Joins("LEFT JOIN products AS p ON p.sku = s.sku").
		Where("s.created_at >= ?", since.UTC()).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("read sales for analytics", err)
	}
	return rows, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}
