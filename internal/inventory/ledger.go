// Package inventory owns the product stock count. Every stock mutation in
// the system goes through the ledger's conditional decrement, so the
// stock-never-negative invariant is enforced in one place.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock means the persisted stock at the moment of the
	// mutation was lower than the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Execer lets the ledger run its decrement either on the pool or inside a
// caller-owned transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Availability reads the current persisted stock and activity flag. No
// caching: callers always see the latest committed value.
func (l *Ledger) Availability(ctx context.Context, productID string) (int, bool, error) {
	var stock int
	var active bool
	err := l.db.QueryRowContext(ctx, `
		SELECT stock, active
		FROM products
		WHERE id = $1
	`, productID).Scan(&stock, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return 0, false, ErrProductNotFound
		}
		return 0, false, fmt.Errorf("read stock for product %s: %w", productID, err)
	}
	return stock, active, nil
}

// CheckAvailability reports whether qty units can currently be sold.
func (l *Ledger) CheckAvailability(ctx context.Context, productID string, qty int) (bool, error) {
	stock, active, err := l.Availability(ctx, productID)
	if err != nil {
		return false, err
	}
	return active && qty <= stock, nil
}

// Decrement reduces stock by qty with the guard re-checked against the
// persisted value, so two concurrent checkouts cannot both win the last
// units. Runs on ex, which may be a transaction.
func (l *Ledger) Decrement(ctx context.Context, ex Execer, productID string, qty int) error {
	if ex == nil {
		ex = l.db
	}
	result, err := ex.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock for product %s: %w", productID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// isInvalidUUID matches invalid_text_representation: a malformed product id
// can never match a row, which is the not-found case.
func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}

// Restock adds qty units back, for operator adjustments.
func (l *Ledger) Restock(ctx context.Context, productID string, qty int) error {
	result, err := l.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`, productID, qty)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("restock product %s: %w", productID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
