// Package apperr holds error conditions shared by every domain package.
package apperr

import (
	"errors"
	"fmt"
)

// Error codes returned in API error bodies
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeNegativeBalance    = "NEGATIVE_BALANCE"
	CodeDuplicateInvoice   = "DUPLICATE_INVOICE"
	CodeInvalidHorizon     = "INVALID_HORIZON"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrStorageUnavailable marks failures of the persistence layer.
// Match with errors.Is; the underlying driver error stays reachable via errors.Unwrap.
var ErrStorageUnavailable = errors.New("storage unavailable")

// StorageError is a persistence failure for a named operation
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageUnavailable, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorageUnavailable for every StorageError
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// Storage wraps err as a StorageError. A nil err stays nil and an error
// that is already a StorageError is returned unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
