package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPersistence       = errors.New("persistence failure")
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
)

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %d not found", e.Entity, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(entity string, id int64) error { return &NotFoundError{Entity: entity, ID: id} }

// StockError rejects an operation that would take a product below zero.
// Requested is what the operation needed from the current stock.
type StockError struct {
	ProductID int64
	Product   string
	Available int64
	Requested int64
}

func (e *StockError) Shortfall() int64 { return e.Requested - e.Available }

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (product %d): available %d, requested %d, short by %d",
		e.Product, e.ProductID, e.Available, e.Requested, e.Shortfall())
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// PersistenceError wraps a store fault. Op names what was being saved.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("could not %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
