// Package cart owns the session-bound shopping cart: lazy creation, line
// item mutations gated by inventory, derived totals, and expiry.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ixollozi/Lux-wood/internal/domain"
)

// DefaultRetentionDays is how long an untouched cart survives before the
// janitor may reclaim it.
const DefaultRetentionDays = 30

// Repository is the persistence port for carts and their line items.
type Repository interface {
	// FindBySession returns the cart owned by the session token, or
	// ErrCartNotFound.
	FindBySession(ctx context.Context, token string) (*domain.Cart, error)
	// Create inserts a fresh cart for the token. On a concurrent duplicate
	// insert it returns the winner instead of failing.
	Create(ctx context.Context, token string) (*domain.Cart, error)
	Delete(ctx context.Context, cartID string) error
	// Touch bumps the cart's last-modified timestamp.
	Touch(ctx context.Context, cartID string) error

	ItemByID(ctx context.Context, itemID string) (*domain.CartItem, error)
	ItemByProduct(ctx context.Context, cartID, productID string) (*domain.CartItem, error)
	InsertItem(ctx context.Context, item *domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, itemID string) error

	// Lines returns the cart's items joined with their products.
	Lines(ctx context.Context, cartID string) ([]domain.CartLine, error)

	// DeleteOlderThan removes every cart last modified before cutoff and
	// returns how many were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Availability is the read side of the inventory ledger.
type Availability interface {
	Availability(ctx context.Context, productID string) (stock int, active bool, err error)
}

type Store struct {
	repo          Repository
	stock         Availability
	retentionDays int
	now           func() time.Time
}

func NewStore(repo Repository, stock Availability) *Store {
	return &Store{
		repo:          repo,
		stock:         stock,
		retentionDays: DefaultRetentionDays,
		now:           time.Now,
	}
}

// WithRetention overrides the retention window used for expiry checks.
func (s *Store) WithRetention(days int) *Store {
	if days > 0 {
		s.retentionDays = days
	}
	return s
}

// GetOrCreate returns the session's cart, replacing it with a fresh empty
// one when the existing cart has expired.
func (s *Store) GetOrCreate(ctx context.Context, sessionToken string) (*domain.Cart, error) {
	c, err := s.repo.FindBySession(ctx, sessionToken)
	switch {
	case err == nil:
		if !s.IsExpired(c, s.retentionDays) {
			return c, nil
		}
		if err := s.repo.Delete(ctx, c.ID); err != nil {
			return nil, fmt.Errorf("delete expired cart %s: %w", c.ID, err)
		}
		return s.repo.Create(ctx, sessionToken)
	case errors.Is(err, ErrCartNotFound):
		return s.repo.Create(ctx, sessionToken)
	default:
		return nil, err
	}
}

// AddItem adds qty units of a product. An existing line accumulates; the
// resulting quantity may never exceed current stock, and on failure the cart
// is left exactly as it was.
func (s *Store) AddItem(ctx context.Context, cart *domain.Cart, productID string, qty int) (*domain.CartItem, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	stock, active, err := s.stock.Availability(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !active || stock == 0 {
		return nil, ErrOutOfStock
	}

	existing, err := s.repo.ItemByProduct(ctx, cart.ID, productID)
	switch {
	case err == nil:
		newQty := existing.Quantity + qty
		if newQty > stock {
			// Requested and Available are both line totals.
			return nil, &InsufficientStockError{
				ProductID: productID,
				Requested: newQty,
				Available: stock,
			}
		}
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, newQty); err != nil {
			return nil, err
		}
		existing.Quantity = newQty
		if err := s.repo.Touch(ctx, cart.ID); err != nil {
			return nil, err
		}
		return existing, nil

	case errors.Is(err, ErrItemNotFound):
		if qty > stock {
			// First-time add beyond stock: the line is never persisted.
			return nil, &InsufficientStockError{
				ProductID: productID,
				Requested: qty,
				Available: stock,
			}
		}
		item := &domain.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  qty,
		}
		if err := s.repo.InsertItem(ctx, item); err != nil {
			return nil, err
		}
		if err := s.repo.Touch(ctx, cart.ID); err != nil {
			return nil, err
		}
		return item, nil

	default:
		return nil, err
	}
}

// UpdateItem sets a line's quantity. A non-positive quantity deletes the
// line; that is the designed removal path, not an error. A quantity beyond
// current stock fails with the maximum permissible value and leaves the
// line untouched.
func (s *Store) UpdateItem(ctx context.Context, itemID string, qty int) error {
	item, err := s.repo.ItemByID(ctx, itemID)
	if err != nil {
		return err
	}

	if qty <= 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return err
		}
		return s.repo.Touch(ctx, item.CartID)
	}

	stock, active, err := s.stock.Availability(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if !active {
		return ErrOutOfStock
	}
	if qty > stock {
		return &InsufficientStockError{
			ProductID: item.ProductID,
			Requested: qty,
			Available: stock,
		}
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, qty); err != nil {
		return err
	}
	return s.repo.Touch(ctx, item.CartID)
}

// RemoveItem deletes a line unconditionally.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	item, err := s.repo.ItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return err
	}
	return s.repo.Touch(ctx, item.CartID)
}

func (s *Store) Lines(ctx context.Context, cart *domain.Cart) ([]domain.CartLine, error) {
	return s.repo.Lines(ctx, cart.ID)
}

// TotalPrice recomputes the cart total from current line items using exact
// decimal arithmetic.
func (s *Store) TotalPrice(ctx context.Context, cart *domain.Cart) (decimal.Decimal, error) {
	lines, err := s.repo.Lines(ctx, cart.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return SumLines(lines), nil
}

func (s *Store) TotalItems(ctx context.Context, cart *domain.Cart) (int, error) {
	lines, err := s.repo.Lines(ctx, cart.ID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, l := range lines {
		total += l.Item.Quantity
	}
	return total, nil
}

func (s *Store) IsEmpty(ctx context.Context, cart *domain.Cart) (bool, error) {
	lines, err := s.repo.Lines(ctx, cart.ID)
	if err != nil {
		return false, err
	}
	return len(lines) == 0, nil
}

// IsExpired reports whether the cart was last modified longer than
// retentionDays ago.
func (s *Store) IsExpired(cart *domain.Cart, retentionDays int) bool {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)
	return cart.UpdatedAt.Before(cutoff)
}

// DeleteOlderThan is the janitor's entry point.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, cutoff)
}

// SumLines totals price*quantity over the lines.
func SumLines(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice())
	}
	return total
}
