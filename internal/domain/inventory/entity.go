// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// ReasonCode classifies why stock moved
type ReasonCode string

const (
	ReasonSale     ReasonCode = "sale"
	ReasonPurchase ReasonCode = "purchase"
	ReasonReturn   ReasonCode = "return"
	ReasonAdjust   ReasonCode = "adjust"
)

// StockStatus is the coarse availability of a product
type StockStatus string

const (
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StatusLowStock   StockStatus = "LOW_STOCK"
	StatusInStock    StockStatus = "IN_STOCK"
)

// LedgerEntry is one immutable stock movement. Rows are only ever inserted.
// BalanceQty caches the running sum of ChangeQty for the SKU up to and
// including this row.
type LedgerEntry struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU         string     `gorm:"not null;size:50;index:idx_ledger_sku_created,priority:1" json:"sku"`
	ChangeQty   int        `gorm:"not null" json:"change_qty"`
	BalanceQty  int        `gorm:"not null" json:"balance_qty"`
	Reason      string     `gorm:"not null;size:255" json:"reason"`
	ReasonCode  ReasonCode `gorm:"not null;size:20;index" json:"reason_code"`
	ReferenceID string     `gorm:"size:100;index" json:"reference_id,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_ledger_sku_created,priority:2" json:"timestamp"`
}

// TableName keeps the table name stable
func (LedgerEntry) TableName() string {
	return "inventory_ledger"
}

// StockLevel is the derived balance of one product joined with its catalog data
type StockLevel struct {
	SKU          string      `json:"sku"`
	Name         string      `json:"name"`
	Category     string      `json:"category"`
	ReorderPoint int         `json:"reorder_point"`
	Balance      int         `json:"balance_qty"`
	Status       StockStatus `json:"status"`
	NeedsReorder bool        `json:"needs_reorder"`
}

// StatusFor maps a balance and reorder point to a stock status
func StatusFor(balance, reorderPoint int) StockStatus {
	switch {
	case balance <= 0:
		return StatusOutOfStock
	case balance < reorderPoint:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// Reconciliation is the result of checking a SKU's ledger for drift
type Reconciliation struct {
	SKU           string `json:"sku"`
	Entries       int    `json:"entries"`
	SummedBalance int    `json:"summed_balance"`
	CachedBalance int    `json:"cached_balance"`
	Consistent    bool   `json:"consistent"`
	FirstBadID    uint   `json:"first_bad_id,omitempty"`
}
