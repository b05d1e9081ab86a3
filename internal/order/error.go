package order

import (
	"errors"
	"fmt"
)

var (
	// -- Validation & Input --
	ErrEmptyCart       = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrCancelOnly      = errors.New("users can only cancel orders")

	// -- Authorization & Resource State --
	ErrOrderNotFound = errors.New("order not found")
	ErrNotOwner      = errors.New("not authorized to access this order")
	ErrNotEditable   = errors.New("only pending orders can be edited")
	ErrNotDeletable  = errors.New("only pending orders can be deleted")
)

// ProductNotFoundError identifies which cart line referenced a missing
// product so the client can point at it.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product with ID %d not found", e.ProductID)
}

// InsufficientStockItem is one entry of the itemized shortfall list.
type InsufficientStockItem struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// InsufficientStockError carries every short line of the cart, not just the
// first, so the client can fix the whole cart in one round trip.
type InsufficientStockError struct {
	Items []InsufficientStockItem
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d product(s)", len(e.Items))
}

// StatusConflictError rejects a cancellation against a terminal order.
type StatusConflictError struct {
	Status OrderStatus
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("Cannot cancel an order that is already %s", e.Status)
}
