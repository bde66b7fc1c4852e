// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/domain/sales"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("🔄 Running database auto-migrations...")

	models := []interface{}{
		&product.Product{},
		&inventory.LedgerEntry{},
		&sales.Sale{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for the reporting queries
func (m *Migration) CreateIndexes() error {
	m.logger.Info("🔄 Creating additional database indexes...")

	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category, active)",

		// Ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_inventory_ledger_sku_id ON inventory_ledger(sku, id)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_ledger_created_at ON inventory_ledger(created_at DESC)",

		// Sales indexes
		"CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sales_payment_mode ON sales(payment_mode)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("⚠️ Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.logger.Infof("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

type seedProduct struct {
	product.Product
	opening   int
	dailyBase int
}

// SeedInitialData inserts a demo catalog with opening stock and a few weeks
// of sales so that forecasts have something to work with.
func (m *Migration) SeedInitialData() error {
	m.logger.Info("🌱 Seeding initial data...")

	var productCount int64
	if err := m.db.Model(&product.Product{}).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if productCount > 0 {
		m.logger.Info("⏭️ Products already exist, skipping seed")
		return nil
	}

	catalog := []seedProduct{
		{Product: product.Product{SKU: "SAR-BAN-001", Name: "Banarasi Silk Saree", Category: "saree", Color: "maroon", Fabric: "silk", CostPrice: decimal.NewFromInt(3200), SellPrice: decimal.NewFromInt(5999), ReorderPoint: 8, LeadTimeDays: 14}, opening: 200, dailyBase: 2},
		{Product: product.Product{SKU: "SAR-CHN-002", Name: "Chanderi Cotton Saree", Category: "saree", Color: "mint", Fabric: "cotton", CostPrice: decimal.NewFromInt(900), SellPrice: decimal.NewFromInt(1799), ReorderPoint: 10, LeadTimeDays: 10}, opening: 300, dailyBase: 4},
		{Product: product.Product{SKU: "KUR-LIN-001", Name: "Linen Straight Kurta", Category: "kurta", Size: "M", Color: "white", Fabric: "linen", CostPrice: decimal.NewFromInt(650), SellPrice: decimal.NewFromInt(1299), ReorderPoint: 12, LeadTimeDays: 7}, opening: 250, dailyBase: 3},
		{Product: product.Product{SKU: "LEH-BRD-001", Name: "Bridal Lehenga", Category: "lehenga", Size: "S", Color: "red", Fabric: "velvet", CostPrice: decimal.NewFromInt(18000), SellPrice: decimal.NewFromInt(34999), ReorderPoint: 2, LeadTimeDays: 30}, opening: 6, dailyBase: 0},
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -45)

	return m.db.Transaction(func(tx *gorm.DB) error {
		ctx := context.Background()
		ledger := inventory.NewLedger(tx)
		invoices := sales.NewInvoiceGenerator()

		for _, sp := range catalog {
			p := sp.Product
			p.Active = true
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
			}

			if _, err := ledger.Append(ctx, inventory.AppendParams{
				SKU:         p.SKU,
				Change:      sp.opening,
				Reason:      "Purchase OPENING-STOCK",
				ReasonCode:  inventory.ReasonPurchase,
				ReferenceID: "OPENING-STOCK",
				At:          start,
			}); err != nil {
				return err
			}

			if sp.dailyBase == 0 {
				m.logger.Infof("✅ Created product: %s", p.Name)
				continue
			}

			for day := 1; day <= 44; day++ {
				qty := sp.dailyBase + day%4
				at := start.AddDate(0, 0, day).Add(11 * time.Hour)
				sale := &sales.Sale{
					ID:            uuid.New(),
					SKU:           p.SKU,
					Quantity:      qty,
					UnitPrice:     p.SellPrice,
					Total:         p.SellPrice.Mul(decimal.NewFromInt(int64(qty))),
					PaymentMode:   sales.PaymentModes()[day%5],
					InvoiceNumber: invoices.Next(p.SKU, at),
					CreatedAt:     at,
				}
				if err := tx.Create(sale).Error; err != nil {
					return fmt.Errorf("failed to seed sale for %s: %w", p.SKU, err)
				}
				if _, err := ledger.Append(ctx, inventory.AppendParams{
					SKU:         p.SKU,
					Change:      -qty,
					Reason:      "Sale " + sale.InvoiceNumber,
					ReasonCode:  inventory.ReasonSale,
					ReferenceID: sale.InvoiceNumber,
					At:          at,
				}); err != nil {
					return err
				}
			}
			m.logger.Infof("✅ Created product with sales history: %s", p.Name)
		}

		m.logger.Info("✅ Initial data seeded successfully")
		return nil
	})
}
