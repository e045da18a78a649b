package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNonPositiveCartItemQuantity = errors.New("cart item quantity must be positive")
	ErrCartItemWithZeroQuantity    = errors.New("cannot add a cart item with zero quantity")
	ErrEmptyCart                   = errors.New("cart is empty")
	ErrOrderAlreadyCancelled       = errors.New("order is already cancelled")
	ErrOrderAlreadyReceived        = errors.New("order is already received")
	ErrAuthentication              = errors.New("could not validate credentials")
	ErrAuthorization               = errors.New("not enough permissions")
)

// DoesNotExistError reports a missing row.
type DoesNotExistError struct {
	Resource string
	Field    string
	Value    any
}

func (e *DoesNotExistError) Error() string {
	return fmt.Sprintf("%s with %s=%v does not exist", e.Resource, e.Field, e.Value)
}

// AlreadyExistsError reports a unique value that is already taken.
type AlreadyExistsError struct {
	Resource string
	Field    string
	Value    any
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with %s=%v already exists", e.Resource, e.Field, e.Value)
}

// IsOccupiedError reports a one-per-owner slot that is already used.
type IsOccupiedError struct {
	Resource string
	Field    string
	Value    any
}

func (e *IsOccupiedError) Error() string {
	return fmt.Sprintf("%s with %s=%v is already occupied", e.Resource, e.Field, e.Value)
}

type ExceededItemQuantityError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *ExceededItemQuantityError) Error() string {
	return fmt.Sprintf("product %d: requested %d items but only %d available", e.ProductID, e.Requested, e.Available)
}

type NoSuchItemInCartError struct {
	CartID uint
	ItemID uint
}

func (e *NoSuchItemInCartError) Error() string {
	return fmt.Sprintf("cart %d has no item %d", e.CartID, e.ItemID)
}

type ProductRemovedFromStoreError struct {
	ProductID uint
}

func (e *ProductRemovedFromStoreError) Error() string {
	return fmt.Sprintf("product %d was removed from the store", e.ProductID)
}

type InvalidOrderTransitionError struct {
	OrderID uint
	Action  string
	Reason  string
}

func (e *InvalidOrderTransitionError) Error() string {
	return fmt.Sprintf("cannot %s order %d: %s", e.Action, e.OrderID, e.Reason)
}

// notFound converts gorm.ErrRecordNotFound into a DoesNotExistError and wraps anything else.
func notFound(err error, resource, field string, value any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &DoesNotExistError{Resource: resource, Field: field, Value: value}
	}
	return fmt.Errorf("load %s: %w", resource, err)
}

var ErrNegativeInventoryQuantity = errors.New("inventory quantity cannot be negative")

// QuantityBelowCommittedError rejects an inventory quantity lower than the
// stock already held by cart items and open orders.
type QuantityBelowCommittedError struct {
	InventoryID uint
	Committed   int
	Requested   int
}

func (e *QuantityBelowCommittedError) Error() string {
	return fmt.Sprintf("inventory %d: quantity %d is below the %d items already committed", e.InventoryID, e.Requested, e.Committed)
}
