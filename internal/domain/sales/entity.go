// internal/domain/sales/entity.go
package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMode is how a sale was paid
type PaymentMode string

const (
	PaymentCash       PaymentMode = "Cash"
	PaymentCard       PaymentMode = "Card"
	PaymentUPI        PaymentMode = "UPI"
	PaymentNetBanking PaymentMode = "NetBanking"
	PaymentWallet     PaymentMode = "Wallet"
)

var paymentModes = []PaymentMode{PaymentCash, PaymentCard, PaymentUPI, PaymentNetBanking, PaymentWallet}

// PaymentModes lists the accepted payment modes
func PaymentModes() []PaymentMode {
	out := make([]PaymentMode, len(paymentModes))
	copy(out, paymentModes)
	return out
}

// ParsePaymentMode matches s against the accepted modes ignoring case,
// spaces, dashes and underscores, so "CARD" and "net_banking" both work.
func ParsePaymentMode(s string) (PaymentMode, error) {
	normalized := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(s))
	for _, m := range paymentModes {
		if strings.EqualFold(normalized, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown payment mode %q", ErrInvalidSale, s)
}

// Sale is one completed sale. It is written once together with its ledger
// entry and never changed.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SKU           string          `gorm:"not null;size:50;index:idx_sales_sku_created,priority:1" json:"sku"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PaymentMode   PaymentMode     `gorm:"not null;size:20" json:"payment_mode"`
	InvoiceNumber string          `gorm:"not null;size:64;uniqueIndex" json:"invoice_number"`
	CustomerPhone string          `gorm:"size:20" json:"customer_phone,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;index:idx_sales_sku_created,priority:2" json:"timestamp"`
}

// TableName keeps the table name stable
func (Sale) TableName() string {
	return "sales"
}
