package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the session-scoped collection of pending line items. It is
// ephemeral: checkout consumes it and the janitor reclaims it once stale.
// Totals are derived from the lines, never stored.
type Cart struct {
	ID           string    `json:"id"`
	SessionToken string    `json:"session_token"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CartItem is one (product, quantity) pairing within a cart. A cart holds at
// most one item per product.
type CartItem struct {
	ID        string `json:"id"`
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartLine joins a cart item with its product for display and checkout.
type CartLine struct {
	Item    CartItem `json:"item"`
	Product Product  `json:"product"`
}

func (l CartLine) TotalPrice() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Item.Quantity)))
}
