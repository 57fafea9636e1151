package models

import (
	"errors"
	"fmt"
)

// Error kinds shared by the store, the services and the HTTP layer.
// Wrapped errors keep their kind: always test with errors.Is.
var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidState      = errors.New("invalid_state")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrValidation        = errors.New("validation_failed")
	// ErrConflict is retryable: regenerate the document number and retry the creation once.
	ErrConflict = errors.New("conflict")
	// ErrInconsistent marks a failure after a conversion already persisted its invoice.
	ErrInconsistent = errors.New("inconsistent_state")
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	Key    string
	Value  any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found (%s=%v)", e.Entity, e.Key, e.Value)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound is a shorthand for the common lookup by id.
func NotFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, Key: "id", Value: id}
}

// StateError reports an operation rejected by a document's current status.
type StateError struct {
	Entity string
	ID     uint
	Status string
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s %s %d in status %s", e.Action, e.Entity, e.ID, e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// StockError reports a stock shortfall for one product.
type StockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (id=%d): available %d, requested %d",
		e.ProductName, e.ProductID, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// InconsistencyError wraps a failure that happened after side effects were already
// applied. It matches ErrInconsistent as well as the kind of its cause; callers must
// check ErrInconsistent first.
type InconsistencyError struct {
	Step  string
	Cause error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("inconsistent state after %s: %v", e.Step, e.Cause)
}

func (e *InconsistencyError) Unwrap() []error { return []error{ErrInconsistent, e.Cause} }
