package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is published after a checkout commits. Delivery is
// best-effort; the order is durable regardless.
type OrderCreatedEvent struct {
	OrderID    string          `json:"order_id"`
	Email      string          `json:"email"`
	City       string          `json:"city"`
	ItemCount  int             `json:"item_count"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Timestamp  time.Time       `json:"timestamp"`
}
