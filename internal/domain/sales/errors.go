package sales

import (
	"errors"
	"fmt"

	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/pkg/apperr"
)

var (
	// ErrInvalidSale wraps request validation failures
	ErrInvalidSale = errors.New("invalid sale")

	// ErrInsufficientStock is matched by InsufficientStockError
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateInvoice means the invoice number is already taken. The sale
	// is not retried under a new number.
	ErrDuplicateInvoice = errors.New("duplicate invoice number")

	// ErrSaleNotFound is returned by Get for unknown ids
	ErrSaleNotFound = errors.New("sale not found")

	ErrProductNotFound    = product.ErrProductNotFound
	ErrStorageUnavailable = apperr.ErrStorageUnavailable
)

// InsufficientStockError reports what was available when a sale was refused
type InsufficientStockError struct {
	SKU       string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.SKU, e.Available, e.Requested)
}

// Is makes errors.Is(err, ErrInsufficientStock) work
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
