package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ixollozi/Lux-wood/internal/domain"
)

// PostgresRepository implements Repository on top of the relational store.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindBySession(ctx context.Context, token string) (*domain.Cart, error) {
	c := &domain.Cart{}
	// Legacy duplicates from before the unique index resolve to the
	// freshest cart; the rest age out via the janitor.
	err := r.db.QueryRowContext(ctx, `
		SELECT id, session_token, created_at, updated_at
		FROM carts
		WHERE session_token = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, token).Scan(&c.ID, &c.SessionToken, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, token string) (*domain.Cart, error) {
	c := &domain.Cart{
		ID:           uuid.New().String(),
		SessionToken: token,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (id, session_token, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING created_at, updated_at
	`, c.ID, token).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		// A concurrent request on the same session may have won the
		// insert; the unique index makes that loser re-fetch the winner.
		if isUniqueViolation(err) {
			return r.FindBySession(ctx, token)
		}
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	return err
}

func (r *PostgresRepository) Touch(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE carts SET updated_at = NOW() WHERE id = $1
	`, cartID)
	return err
}

func (r *PostgresRepository) ItemByID(ctx context.Context, itemID string) (*domain.CartItem, error) {
	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE id = $1
	`, itemID).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		// A malformed id can never match a row; 22P02 is the same outcome
		// as no rows.
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepository) ItemByProduct(ctx context.Context, cartID, productID string) (*domain.CartItem, error) {
	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepository) InsertItem(ctx context.Context, item *domain.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
	`, item.ID, item.CartID, item.ProductID, item.Quantity)
	return err
}

func (r *PostgresRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $2 WHERE id = $1
	`, itemID, quantity)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, itemID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}

func (r *PostgresRepository) Lines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			i.id, i.cart_id, i.product_id, i.quantity,
			p.id, p.slug,
			p.name_ru, p.name_en, p.name_uz,
			p.price, p.stock, p.active
		FROM cart_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.cart_id = $1
		ORDER BY i.id
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(
			&l.Item.ID, &l.Item.CartID, &l.Item.ProductID, &l.Item.Quantity,
			&l.Product.ID, &l.Product.Slug,
			&l.Product.Name.RU, &l.Product.Name.EN, &l.Product.Name.UZ,
			&l.Product.Price, &l.Product.Stock, &l.Product.Active,
		); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM carts WHERE updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isInvalidUUID matches invalid_text_representation, raised when a non-UUID
// string is compared against a uuid column.
func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
