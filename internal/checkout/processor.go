// Package checkout turns a mutable session cart into an immutable order.
// The whole commit — order row, per-line snapshots, stock decrements, cart
// deletion — is one database transaction.
package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Ixollozi/Lux-wood/internal/cart"
	"github.com/Ixollozi/Lux-wood/internal/domain"
	"github.com/Ixollozi/Lux-wood/internal/i18n"
	"github.com/Ixollozi/Lux-wood/internal/inventory"
)

// ErrEmptyCart rejects a checkout attempt on a cart without line items.
var ErrEmptyCart = errors.New("cart is empty")

// CustomerDetails are the contact and shipping fields supplied by the buyer.
type CustomerDetails struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Comment    string `json:"comment"`
}

func (d CustomerDetails) Validate() error {
	switch {
	case d.FirstName == "", d.LastName == "":
		return errors.New("customer name is required")
	case d.Email == "":
		return errors.New("email is required")
	case d.Phone == "":
		return errors.New("phone is required")
	case d.Address == "", d.City == "":
		return errors.New("shipping address is required")
	}
	return nil
}

// RejectedLine names one cart line that cannot be fulfilled.
type RejectedLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// RejectedResult aggregates every offending line so the caller can render a
// single consolidated message. It is an expected business outcome, not an
// error.
type RejectedResult struct {
	Lines []RejectedLine `json:"lines"`
}

// CartReader is what the processor needs from the cart store.
type CartReader interface {
	Lines(ctx context.Context, c *domain.Cart) ([]domain.CartLine, error)
}

type Processor struct {
	db       *sql.DB
	carts    CartReader
	ledger   *inventory.Ledger
	resolver i18n.Resolver
	logger   *slog.Logger
	now      func() time.Time
}

func NewProcessor(db *sql.DB, carts CartReader, ledger *inventory.Ledger, resolver i18n.Resolver, logger *slog.Logger) *Processor {
	return &Processor{
		db:       db,
		carts:    carts,
		ledger:   ledger,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// Checkout validates the cart against current stock and, if every line
// fits, materializes an order and consumes the cart. A non-nil
// RejectedResult is a normal outcome; a non-nil error is an infrastructure
// failure and nothing was committed.
func (p *Processor) Checkout(ctx context.Context, c *domain.Cart, details CustomerDetails) (*domain.Order, *RejectedResult, error) {
	lines, err := p.carts.Lines(ctx, c)
	if err != nil {
		return nil, nil, fmt.Errorf("load cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil, ErrEmptyCart
	}

	if rejected := p.validate(lines); len(rejected) > 0 {
		return nil, &RejectedResult{Lines: rejected}, nil
	}

	order, rejected, err := p.commit(ctx, c, lines, details)
	if err != nil {
		return nil, nil, err
	}
	if rejected != nil {
		return nil, rejected, nil
	}

	p.logger.Info("order committed",
		"order_id", order.ID,
		"items", len(order.Items),
		"total", order.TotalPrice.String(),
	)
	return order, nil, nil
}

// validate checks every line against the snapshot read with the lines. It
// collects all failures rather than stopping at the first, so the buyer
// sees the complete picture.
func (p *Processor) validate(lines []domain.CartLine) []RejectedLine {
	var rejected []RejectedLine
	for _, l := range lines {
		available := l.Product.Stock
		if !l.Product.Active {
			available = 0
		}
		if l.Item.Quantity > available {
			rejected = append(rejected, RejectedLine{
				ProductID:   l.Product.ID,
				ProductName: p.resolver.Resolve(l.Product, "name", i18n.DefaultLocale),
				Requested:   l.Item.Quantity,
				Available:   available,
			})
		}
	}
	return rejected
}

// commit runs the write transaction. Per line the order item is inserted
// before the stock decrement, so a failure can never lose stock without a
// corresponding snapshot. The decrement re-checks the persisted stock; when
// a concurrent checkout drained it first, the whole transaction rolls back
// and the rejection is rebuilt from fresh reads.
func (p *Processor) commit(ctx context.Context, c *domain.Cart, lines []domain.CartLine, details CustomerDetails) (*domain.Order, *RejectedResult, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	order := &domain.Order{
		ID:           uuid.New().String(),
		SessionToken: c.SessionToken,
		FirstName:    details.FirstName,
		LastName:     details.LastName,
		Email:        details.Email,
		Phone:        details.Phone,
		Address:      details.Address,
		City:         details.City,
		PostalCode:   details.PostalCode,
		Comment:      details.Comment,
		Status:       domain.OrderStatusPending,
		TotalPrice:   cart.SumLines(lines),
		CreatedAt:    p.now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, session_token, first_name, last_name, email, phone,
			address, city, postal_code, comment, status, total_price, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, order.ID, order.SessionToken, order.FirstName, order.LastName,
		order.Email, order.Phone, order.Address, order.City,
		order.PostalCode, order.Comment, order.Status, order.TotalPrice, order.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range lines {
		item := domain.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   l.Product.ID,
			ProductName: p.resolver.Resolve(l.Product, "name", i18n.DefaultLocale),
			Quantity:    l.Item.Quantity,
			Price:       l.Product.Price,
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price)
		if err != nil {
			return nil, nil, fmt.Errorf("insert order item for product %s: %w", l.Product.ID, err)
		}
		order.Items = append(order.Items, item)

		if err := p.ledger.Decrement(ctx, tx, l.Product.ID, l.Item.Quantity); err != nil {
			if errors.Is(err, inventory.ErrInsufficientStock) {
				// Lost a race with another checkout. Abort everything and
				// report against current availability.
				if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
					return nil, nil, fmt.Errorf("rollback after stock race: %w", rbErr)
				}
				rejected, rErr := p.rejectAgainstCurrentStock(ctx, lines)
				if rErr != nil {
					return nil, nil, rErr
				}
				return nil, rejected, nil
			}
			return nil, nil, err
		}
	}

	// The cart is consumed; its line items cascade.
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, c.ID); err != nil {
		return nil, nil, fmt.Errorf("delete cart %s: %w", c.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit checkout: %w", err)
	}
	return order, nil, nil
}

func (p *Processor) rejectAgainstCurrentStock(ctx context.Context, lines []domain.CartLine) (*RejectedResult, error) {
	result := &RejectedResult{}
	for _, l := range lines {
		stock, active, err := p.ledger.Availability(ctx, l.Product.ID)
		if err != nil {
			return nil, fmt.Errorf("re-read stock for product %s: %w", l.Product.ID, err)
		}
		if !active {
			stock = 0
		}
		if l.Item.Quantity > stock {
			result.Lines = append(result.Lines, RejectedLine{
				ProductID:   l.Product.ID,
				ProductName: p.resolver.Resolve(l.Product, "name", i18n.DefaultLocale),
				Requested:   l.Item.Quantity,
				Available:   stock,
			})
		}
	}
	return result, nil
}
