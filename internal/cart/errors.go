package cart

import (
	"errors"
	"fmt"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("cart item not found")

	// ErrOutOfStock means the product has zero stock or is inactive and
	// cannot be added at all.
	ErrOutOfStock = errors.New("product is out of stock")

	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// InsufficientStockError reports that a requested line quantity exceeds
// stock, together with the maximum quantity the line could hold.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
