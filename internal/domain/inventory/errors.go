package inventory

import (
	"errors"
	"fmt"

	"github.com/your-org/inventory-backend/internal/pkg/apperr"
)

var (
	// ErrStorageUnavailable is the persistence failure condition, shared across domains
	ErrStorageUnavailable = apperr.ErrStorageUnavailable

	// ErrInvalidEntry is returned for structurally unusable ledger appends
	ErrInvalidEntry = errors.New("invalid ledger entry")

	// ErrInvalidAdjustment wraps validation failures of an adjustment request
	ErrInvalidAdjustment = errors.New("invalid stock adjustment")

	// ErrNegativeBalance is matched by NegativeBalanceError
	ErrNegativeBalance = errors.New("adjustment would result in negative stock")

	// ErrBalanceMismatch means cached running balances disagree with the summed deltas
	ErrBalanceMismatch = errors.New("ledger balance mismatch")
)

// NegativeBalanceError reports an adjustment that would drive stock below zero
type NegativeBalanceError struct {
	SKU     string
	Current int
	Change  int
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("adjustment would result in negative stock for %s: current %d, change %d", e.SKU, e.Current, e.Change)
}

// Is makes errors.Is(err, ErrNegativeBalance) work
func (e *NegativeBalanceError) Is(target error) bool {
	return target == ErrNegativeBalance
}
