// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/pkg/apperr"
	"github.com/your-org/inventory-backend/internal/pkg/lock"
	"github.com/your-org/inventory-backend/internal/pkg/metrics"
	"gorm.io/gorm"
)

// invalidateTimeout bounds cache invalidation after a committed stock change
const invalidateTimeout = 2 * time.Second

// CacheInvalidator drops state derived from a product's sales or stock
type CacheInvalidator interface {
	Invalidate(ctx context.Context, sku string)
}

// Service handles stock overview and manual adjustments, and hands out the
// serialized write path that sales go through.
type Service struct {
	db          *gorm.DB
	ledger      *Ledger
	locker      lock.Locker
	validate    *validator.Validate
	logger      logrus.FieldLogger
	metrics     *metrics.Metrics
	invalidator CacheInvalidator
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, locker lock.Locker, logger logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{
		db:       db,
		ledger:   NewLedger(db),
		locker:   locker,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

// InvalidateOnChange registers c to be called after every committed stock change
func (s *Service) InvalidateOnChange(c CacheInvalidator) {
	s.invalidator = c
}

// Ledger returns the ledger bound to the service's connection
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// AdjustRequest represents a manual stock movement
type AdjustRequest struct {
	SKU         string     `json:"sku" binding:"required" validate:"required,max=50"`
	ChangeQty   int        `json:"change_qty" binding:"required" validate:"required"`
	Reason      string     `json:"reason" binding:"required" validate:"required,max=255"`
	ReasonCode  ReasonCode `json:"reason_code" validate:"omitempty,oneof=purchase return adjust"`
	ReferenceID string     `json:"reference_id" validate:"max=100"`
}

// StockTx is what a stock-changing callback sees: the open transaction, a
// ledger bound to it, the locked product row and its balance at lock time.
type StockTx struct {
	Tx      *gorm.DB
	Ledger  *Ledger
	Product *product.Product
	Balance int
}

// WithStock runs fn with exclusive write access to the stock of sku.
// Writers for the same SKU are serialized by the locker and by the product
// row lock; fn's changes commit only if it returns nil.
func (s *Service) WithStock(ctx context.Context, sku string, fn func(st *StockTx) error) error {
	start := time.Now()
	unlock, err := s.locker.Lock(ctx, lock.StockKey(sku))
	if err != nil {
		return err
	}
	defer unlock()
	s.metrics.ObserveLockWait(time.Since(start))

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperr.Storage("begin stock transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	p, err := product.LockForStockChange(ctx, tx, sku)
	if err != nil {
		tx.Rollback()
		return err
	}

	ledger := s.ledger.WithTx(tx)
	balance, err := ledger.CurrentBalance(ctx, sku)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := fn(&StockTx{Tx: tx, Ledger: ledger, Product: p, Balance: balance}); err != nil {
		tx.Rollback()
		return err
	}

	if err := ctx.Err(); err != nil {
		tx.Rollback()
		return fmt.Errorf("stock change abandoned: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperr.Storage("commit stock transaction", err)
	}
	s.invalidate(ctx, sku)
	return nil
}

// invalidate runs on a context detached from the caller's so a request that
// times out right after commit does not leave stale cache entries behind.
func (s *Service) invalidate(ctx context.Context, sku string) {
	if s.invalidator == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	s.invalidator.Invalidate(ctx, sku)
}

// Adjust records a purchase receipt, return or correction for a product
func (s *Service) Adjust(ctx context.Context, req *AdjustRequest) (*LedgerEntry, error) {
	req.SKU = strings.TrimSpace(req.SKU)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAdjustment, err)
	}
	if req.ReasonCode == "" {
		req.ReasonCode = ReasonAdjust
	}

	var entry *LedgerEntry
	err := s.WithStock(ctx, req.SKU, func(st *StockTx) error {
		if st.Balance+req.ChangeQty < 0 {
			return &NegativeBalanceError{SKU: req.SKU, Current: st.Balance, Change: req.ChangeQty}
		}

		var err error
		entry, err = st.Ledger.Append(ctx, AppendParams{
			SKU:         req.SKU,
			Change:      req.ChangeQty,
			Reason:      req.Reason,
			ReasonCode:  req.ReasonCode,
			ReferenceID: req.ReferenceID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAdjustment(string(req.ReasonCode))
	s.logger.WithFields(logrus.Fields{
		"sku":         entry.SKU,
		"change_qty":  entry.ChangeQty,
		"balance_qty": entry.BalanceQty,
		"reason_code": entry.ReasonCode,
	}).Info("Stock adjusted")

	return entry, nil
}

// CurrentBalance returns the balance of sku
func (s *Service) CurrentBalance(ctx context.Context, sku string) (int, error) {
	return s.ledger.CurrentBalance(ctx, sku)
}

type stockRow struct {
	SKU          string
	Name         string
	Category     string
	ReorderPoint int
	Balance      int
}

func (s *Service) stockQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("products AS p").
		Select("p.sku, p.name, p.category, p.reorder_point, COALESCE(SUM(l.change_qty), 0) AS balance").
		Joins("LEFT JOIN inventory_ledger AS l ON l.sku = p.sku").
		Where("p.active = ?", true).
		Group("p.sku, p.name, p.category, p.reorder_point")
}

func toLevels(rows []stockRow) []StockLevel {
	levels := make([]StockLevel, 0, len(rows))
	for _, r := range rows {
		levels = append(levels, StockLevel{
			SKU:          r.SKU,
			Name:         r.Name,
			Category:     r.Category,
			ReorderPoint: r.ReorderPoint,
			Balance:      r.Balance,
			Status:       StatusFor(r.Balance, r.ReorderPoint),
			NeedsReorder: r.Balance < r.ReorderPoint,
		})
	}
	return levels
}

// StockLevels returns the balance of every active product ordered by SKU
func (s *Service) StockLevels(ctx context.Context, offset, limit int) ([]StockLevel, error) {
	query := s.stockQuery(ctx).Order("p.sku ASC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	var rows []stockRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, apperr.Storage("list stock levels", err)
	}
	return toLevels(rows), nil
}

// LowStock returns active products whose balance is below threshold, or
// below their own reorder point when threshold is 0. Most urgent first.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]StockLevel, error) {
	query := s.stockQuery(ctx)
	if threshold > 0 {
		query = query.Having("COALESCE(SUM(l.change_qty), 0) < ?", threshold)
	} else {
		query = query.Having("COALESCE(SUM(l.change_qty), 0) < p.reorder_point")
	}

	var rows []stockRow
	err := query.Order("COALESCE(SUM(l.change_qty), 0) - p.reorder_point ASC, p.sku ASC").Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("list low stock", err)
	}
	return toLevels(rows), nil
}

// InventoryValue is the sum of balance times cost price over active products
func (s *Service) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	var rows []struct {
		CostPrice decimal.Decimal
		Balance   int
	}
	err := s.db.WithContext(ctx).
		Table("products AS p").
		Select("p.cost_price, COALESCE(SUM(l.change_qty), 0) AS balance").
		Joins("LEFT JOIN inventory_ledger AS l ON l.sku = p.sku").
		Where("p.active = ?", true).
		Group("p.sku, p.cost_price").
		Scan(&rows).Error
	if err != nil {
		return decimal.Zero, apperr.Storage("compute inventory value", err)
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.CostPrice.Mul(decimal.NewFromInt(int64(r.Balance))))
	}
	return total.Round(2), nil
}
