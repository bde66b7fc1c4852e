// internal/domain/sales/service.go
package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/forecast"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
	"github.com/your-org/inventory-backend/internal/pkg/apperr"
	"github.com/your-org/inventory-backend/internal/pkg/lock"
	"github.com/your-org/inventory-backend/internal/pkg/metrics"
	"gorm.io/gorm"
)

// Column limits of sales.unit_price numeric(10,2) and sales.total_amount numeric(12,2)
var (
	maxUnitPrice = decimal.RequireFromString("99999999.99")
	maxTotal     = decimal.RequireFromString("9999999999.99")
)

// Service records sales and serves the sales history
type Service struct {
	db        *gorm.DB
	inventory *inventory.Service
	invoices  *InvoiceGenerator
	validate  *validator.Validate
	logger    logrus.FieldLogger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService creates a new sales service
func NewService(db *gorm.DB, inv *inventory.Service, logger logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{
		db:        db,
		inventory: inv,
		invoices:  NewInvoiceGenerator(),
		validate:  validator.New(),
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// RecordSaleRequest represents a sale to record
type RecordSaleRequest struct {
	SKU           string          `json:"sku" binding:"required" validate:"required,max=50"`
	Quantity      int             `json:"quantity" binding:"required" validate:"required,gt=0"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PaymentMode   string          `json:"payment_mode" binding:"required" validate:"required"`
	CustomerPhone string          `json:"customer_phone" validate:"omitempty,max=20"`
}

// ListFilter narrows the sales listing
type ListFilter struct {
	SKU         string
	PaymentMode PaymentMode
	From        *time.Time
	To          *time.Time
	Offset      int
	Limit       int
}

// RecordSale checks stock and stores the sale together with its ledger
// entry. Either both are committed or neither is.
func (s *Service) RecordSale(ctx context.Context, req *RecordSaleRequest) (*Sale, error) {
	mode, err := s.validateRequest(req)
	if err != nil {
		s.metrics.RecordSaleRejected("invalid")
		return nil, err
	}

	var sale *Sale
	err = s.inventory.WithStock(ctx, req.SKU, func(st *inventory.StockTx) error {
		if !st.Product.Active {
			return fmt.Errorf("%w: %s is inactive", ErrProductNotFound, req.SKU)
		}
		if st.Balance < req.Quantity {
			return &InsufficientStockError{SKU: req.SKU, Available: st.Balance, Requested: req.Quantity}
		}

		now := s.now().UTC()
		unitPrice := req.UnitPrice
		sale = &Sale{
			ID:            uuid.New(),
			SKU:           req.SKU,
			Quantity:      req.Quantity,
			UnitPrice:     unitPrice,
			Total:         unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
			PaymentMode:   mode,
			InvoiceNumber: s.invoices.Next(req.SKU, now),
			CustomerPhone: req.CustomerPhone,
			CreatedAt:     now,
		}

		if err := st.Tx.WithContext(ctx).Create(sale).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrDuplicateInvoice, sale.InvoiceNumber)
			}
			return apperr.Storage("insert sale", err)
		}

		_, err := st.Ledger.Append(ctx, inventory.AppendParams{
			SKU:         req.SKU,
			Change:      -req.Quantity,
			Reason:      "Sale " + sale.InvoiceNumber,
			ReasonCode:  inventory.ReasonSale,
			ReferenceID: sale.InvoiceNumber,
			At:          now,
		})
		return err
	})
	if err != nil {
		reason := rejectReason(err)
		s.metrics.RecordSaleRejected(reason)
		s.logger.WithError(err).WithFields(logrus.Fields{
			"sku":      req.SKU,
			"quantity": req.Quantity,
			"reason":   reason,
		}).Warn("Sale not recorded")
		return nil, err
	}

	s.metrics.RecordSale(string(sale.PaymentMode), sale.Quantity)
	s.logger.WithFields(logrus.Fields{
		"sku":            sale.SKU,
		"invoice_number": sale.InvoiceNumber,
		"quantity":       sale.Quantity,
		"total":          sale.Total.StringFixed(2),
	}).Info("Sale recorded")

	return sale, nil
}

func (s *Service) validateRequest(req *RecordSaleRequest) (PaymentMode, error) {
	req.SKU = strings.TrimSpace(req.SKU)
	if err := s.validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSale, err)
	}
	req.UnitPrice = req.UnitPrice.Round(2)
	if !req.UnitPrice.IsPositive() {
		return "", fmt.Errorf("%w: unit_price must be at least 0.01", ErrInvalidSale)
	}
	if req.UnitPrice.GreaterThan(maxUnitPrice) {
		return "", fmt.Errorf("%w: unit_price must not exceed %s", ErrInvalidSale, maxUnitPrice.StringFixed(2))
	}
	if req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).GreaterThan(maxTotal) {
		return "", fmt.Errorf("%w: sale total must not exceed %s", ErrInvalidSale, maxTotal.StringFixed(2))
	}
	return ParsePaymentMode(req.PaymentMode)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrDuplicateInvoice):
		return "duplicate_invoice"
	case errors.Is(err, lock.ErrNotObtained):
		return "lock_timeout"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage"
	default:
		return "other"
	}
}

// Get returns a sale by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sale, error) {
	var sale Sale
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSaleNotFound, id)
		}
		return nil, apperr.Storage("get sale", err)
	}
	return &sale, nil
}

// List returns sales newest first along with the total matching count
func (s *Service) List(ctx context.Context, f ListFilter) ([]Sale, int64, error) {
	query := s.db.WithContext(ctx).Model(&Sale{})
	if f.SKU != "" {
		query = query.Where("sku = ?", f.SKU)
	}
	if f.PaymentMode != "" {
		query = query.Where("payment_mode = ?", f.PaymentMode)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		query = query.Where("created_at < ?", f.To.UTC())
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Storage("count sales", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var out []Sale
	if err := query.Order("created_at DESC").Offset(f.Offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, apperr.Storage("list sales", err)
	}
	return out, total, nil
}

type saleQuantity struct {
	Quantity  int
	CreatedAt time.Time
}

// DailyDemand sums the quantity sold of sku per UTC calendar day since the
// given time, oldest day first. Days without sales are absent.
func (s *Service) DailyDemand(ctx context.Context, sku string, since time.Time) ([]forecast.DemandPoint, error) {
	var rows []saleQuantity
	err := s.db.WithContext(ctx).
		Model(&Sale{}).
		Select("quantity, created_at").
		Where("sku = ? AND created_at >= ?", sku, since.UTC()).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("read sales history", err)
	}

	var points []forecast.DemandPoint
	for _, r := range rows {
		t := r.CreatedAt.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if n := len(points); n > 0 && points[n-1].Date.Equal(day) {
			points[n-1].Quantity += float64(r.Quantity)
			continue
		}
		points = append(points, forecast.DemandPoint{Date: day, Quantity: float64(r.Quantity)})
	}
	return points, nil
}
