// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Stock is never stored here; it is derived
// from the inventory ledger.
type Product struct {
	SKU          string          `gorm:"primaryKey;size:50" json:"sku"`
	Name         string          `gorm:"not null;size:200" json:"name"`
	Category     string          `gorm:"not null;size:50;index" json:"category"`
	Subcategory  string          `gorm:"size:50" json:"subcategory,omitempty"`
	Brand        string          `gorm:"size:100" json:"brand,omitempty"`
	Size         string          `gorm:"size:20" json:"size,omitempty"`
	Color        string          `gorm:"size:50" json:"color,omitempty"`
	Fabric       string          `gorm:"size:50" json:"fabric,omitempty"`
	CostPrice    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"cost_price"`
	SellPrice    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"sell_price"`
	ReorderPoint int             `gorm:"not null;default:5" json:"reorder_point"`
	LeadTimeDays int             `gorm:"not null;default:7" json:"lead_time_days"`
	HSNCode      string          `gorm:"size:10" json:"hsn_code,omitempty"`
	Active       bool            `gorm:"not null;default:true;index" json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName pins the table name used by raw queries in other packages
func (Product) TableName() string {
	return "products"
}
