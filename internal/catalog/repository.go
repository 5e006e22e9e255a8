// Package catalog is the storefront's read model for products and
// categories. Every localized column goes through the language resolver at
// the presentation edge; the repository returns raw triplets.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Ixollozi/Lux-wood/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const (
	SortNewest    = "newest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortRating    = "rating"
)

type ListParams struct {
	CategorySlug string
	Query        string
	InStock      *bool
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	Sort         string
	Limit        int
}

const productColumns = `
	p.id, p.slug,
	p.name_ru, p.name_en, p.name_uz,
	p.description_ru, p.description_en, p.description_uz,
	p.price, p.old_price, p.category_id, p.stock, p.rating,
	p.active, p.featured, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Slug,
		&p.Name.RU, &p.Name.EN, &p.Name.UZ,
		&p.Description.RU, &p.Description.EN, &p.Description.UZ,
		&p.Price, &p.OldPrice, &p.CategoryID, &p.Stock, &p.Rating,
		&p.Active, &p.Featured, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// List returns active products matching the filters. The search query
// matches any locale's name or description, so a buyer searching in their
// own language still finds untranslated products.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Product, error) {
	var (
		where = []string{"p.active"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if params.CategorySlug != "" {
		where = append(where, "p.category_id = (SELECT id FROM categories WHERE slug = "+arg(params.CategorySlug)+")")
	}
	if params.Query != "" {
		pattern := "%" + params.Query + "%"
		ph := arg(pattern)
		where = append(where, fmt.Sprintf(`(
			p.name_ru ILIKE %[1]s OR p.name_en ILIKE %[1]s OR p.name_uz ILIKE %[1]s OR
			p.description_ru ILIKE %[1]s OR p.description_en ILIKE %[1]s OR p.description_uz ILIKE %[1]s
		)`, ph))
	}
	if params.InStock != nil {
		if *params.InStock {
			where = append(where, "p.stock > 0")
		} else {
			where = append(where, "p.stock = 0")
		}
	}
	if params.PriceMin != nil {
		where = append(where, "p.price >= "+arg(*params.PriceMin))
	}
	if params.PriceMax != nil {
		where = append(where, "p.price <= "+arg(*params.PriceMax))
	}

	var orderBy string
	switch params.Sort {
	case SortPriceLow:
		orderBy = "p.price ASC"
	case SortPriceHigh:
		orderBy = "p.price DESC"
	case SortRating:
		orderBy = "p.rating DESC"
	default:
		orderBy = "p.created_at DESC"
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + orderBy + `
		LIMIT ` + arg(limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) BySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		WHERE p.slug = $1
	`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Related returns other active products from the same category.
func (r *Repository) Related(ctx context.Context, p *domain.Product, limit int) ([]domain.Product, error) {
	if p.CategoryID == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 8
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		WHERE p.category_id = $1 AND p.id <> $2 AND p.active
		ORDER BY p.rating DESC
		LIMIT $3
	`, p.CategoryID, p.ID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var related []domain.Product
	for rows.Next() {
		rp, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		related = append(related, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return related, nil
}

func (r *Repository) Attributes(ctx context.Context, productID string) ([]domain.ProductAttribute, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, value, sort_order
		FROM product_attributes
		WHERE product_id = $1
		ORDER BY sort_order, name
	`, productID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var attrs []domain.ProductAttribute
	for rows.Next() {
		var a domain.ProductAttribute
		if err := rows.Scan(&a.ID, &a.ProductID, &a.Name, &a.Value, &a.SortOrder); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attrs, nil
}

// Categories returns root categories in name order of the default locale.
func (r *Repository) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, slug, name_ru, name_en, name_uz, parent_id
		FROM categories
		WHERE parent_id IS NULL AND slug <> ''
		ORDER BY name_ru
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name.RU, &c.Name.EN, &c.Name.UZ, &c.ParentID); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}
