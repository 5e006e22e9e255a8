package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Ixollozi/Lux-wood/internal/domain"
	"github.com/Ixollozi/Lux-wood/internal/i18n"
)

type Handler struct {
	repo     *Repository
	resolver i18n.Resolver
	logger   *slog.Logger
}

func NewHandler(repo *Repository, resolver i18n.Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

type productView struct {
	ID              string           `json:"id"`
	Slug            string           `json:"slug"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	OldPrice        *decimal.Decimal `json:"old_price,omitempty"`
	DiscountPercent int              `json:"discount_percent,omitempty"`
	InStock         bool             `json:"in_stock"`
	Stock           int              `json:"stock"`
	Rating          decimal.Decimal  `json:"rating"`
	Featured        bool             `json:"featured"`
	Attributes      []attributeView  `json:"attributes,omitempty"`
	Related         []productView    `json:"related,omitempty"`
}

type attributeView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (h *Handler) productView(p domain.Product, loc i18n.Locale) productView {
	view := productView{
		ID:              p.ID,
		Slug:            p.Slug,
		Name:            h.resolver.Resolve(p, "name", loc),
		Description:     h.resolver.Resolve(p, "description", loc),
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent(),
		InStock:         p.InStock(),
		Stock:           p.Stock,
		Rating:          p.Rating,
		Featured:        p.Featured,
	}
	if p.OldPrice.Valid {
		old := p.OldPrice.Decimal
		view.OldPrice = &old
	}
	return view
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := ListParams{
		CategorySlug: q.Get("category"),
		Query:        q.Get("q"),
		Sort:         q.Get("sort"),
	}
	switch q.Get("in_stock") {
	case "yes":
		v := true
		params.InStock = &v
	case "no":
		v := false
		params.InStock = &v
	}
	if s := q.Get("price_min"); s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			params.PriceMin = &d
		}
	}
	if s := q.Get("price_max"); s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			params.PriceMax = &d
		}
	}

	products, err := h.repo.List(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	loc := i18n.FromRequest(r)
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, h.productView(p, loc))
	}

	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		h.writeError(w, http.StatusBadRequest, "missing product slug")
		return
	}

	p, err := h.repo.BySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			h.writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("failed to get product", "error", err, "slug", slug)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	loc := i18n.FromRequest(r)
	view := h.productView(*p, loc)

	attrs, err := h.repo.Attributes(r.Context(), p.ID)
	if err != nil {
		h.logger.Error("failed to load attributes", "error", err, "product_id", p.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	for _, a := range attrs {
		view.Attributes = append(view.Attributes, attributeView{Name: a.Name, Value: a.Value})
	}

	related, err := h.repo.Related(r.Context(), p, 8)
	if err != nil {
		h.logger.Error("failed to load related products", "error", err, "product_id", p.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	for _, rp := range related {
		view.Related = append(view.Related, h.productView(rp, loc))
	}

	h.writeJSON(w, http.StatusOK, view)
}

type categoryView struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func (h *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	loc := i18n.FromRequest(r)
	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView{
			ID:   c.ID,
			Slug: c.Slug,
			Name: h.resolver.Resolve(c, "name", loc),
		})
	}

	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
