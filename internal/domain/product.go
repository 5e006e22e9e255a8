package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ixollozi/Lux-wood/internal/i18n"
)

type Category struct {
	ID       string    `json:"id"`
	Slug     string    `json:"slug"`
	Name     i18n.Text `json:"name"`
	ParentID *string   `json:"parent_id,omitempty"`
}

func (c Category) LocalizedFields() map[string]i18n.Text {
	return map[string]i18n.Text{"name": c.Name}
}

type Product struct {
	ID          string              `json:"id"`
	Slug        string              `json:"slug"`
	Name        i18n.Text           `json:"name"`
	Description i18n.Text           `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	OldPrice    decimal.NullDecimal `json:"old_price,omitempty"`
	CategoryID  *string             `json:"category_id,omitempty"`
	Stock       int                 `json:"stock"`
	Rating      decimal.Decimal     `json:"rating"`
	Active      bool                `json:"active"`
	Featured    bool                `json:"featured"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (p Product) LocalizedFields() map[string]i18n.Text {
	return map[string]i18n.Text{
		"name":        p.Name,
		"description": p.Description,
	}
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// DiscountPercent derives the markdown from the optional old price.
func (p Product) DiscountPercent() int {
	if !p.OldPrice.Valid || !p.OldPrice.Decimal.GreaterThan(p.Price) {
		return 0
	}
	diff := p.OldPrice.Decimal.Sub(p.Price)
	return int(diff.Div(p.OldPrice.Decimal).Mul(decimal.NewFromInt(100)).IntPart())
}

// ProductAttribute is a display characteristic of a product.
type ProductAttribute struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	SortOrder int    `json:"sort_order"`
}
