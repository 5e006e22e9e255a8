package cart

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Ixollozi/Lux-wood/internal/domain"
	"github.com/Ixollozi/Lux-wood/internal/i18n"
	"github.com/Ixollozi/Lux-wood/internal/inventory"
	"github.com/Ixollozi/Lux-wood/internal/session"
)

type Handler struct {
	store    *Store
	resolver i18n.Resolver
	logger   *slog.Logger
}

func NewHandler(store *Store, resolver i18n.Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

type lineView struct {
	ItemID      string          `json:"item_id"`
	ProductID   string          `json:"product_id"`
	ProductSlug string          `json:"product_slug"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type cartView struct {
	CartID     string          `json:"cart_id"`
	Items      []lineView      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (h *Handler) cartView(r *http.Request, c *domain.Cart, lines []domain.CartLine) cartView {
	loc := i18n.FromRequest(r)
	view := cartView{
		CartID:     c.ID,
		Items:      make([]lineView, 0, len(lines)),
		TotalPrice: SumLines(lines),
	}
	for _, l := range lines {
		view.TotalItems += l.Item.Quantity
		view.Items = append(view.Items, lineView{
			ItemID:      l.Item.ID,
			ProductID:   l.Product.ID,
			ProductSlug: l.Product.Slug,
			Name:        h.resolver.Resolve(l.Product, "name", loc),
			UnitPrice:   l.Product.Price,
			Quantity:    l.Item.Quantity,
			LineTotal:   l.TotalPrice(),
		})
	}
	return view
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	token := session.Token(w, r)

	c, err := h.store.GetOrCreate(r.Context(), token)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	lines, err := h.store.Lines(r.Context(), c)
	if err != nil {
		h.logger.Error("failed to load cart lines", "error", err, "cart_id", c.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, h.cartView(r, c, lines))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	token := session.Token(w, r)
	c, err := h.store.GetOrCreate(r.Context(), token)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if _, err := h.store.AddItem(r.Context(), c, req.ProductID, req.Quantity); err != nil {
		h.writeCartError(w, err, req.ProductID)
		return
	}

	lines, err := h.store.Lines(r.Context(), c)
	if err != nil {
		h.logger.Error("failed to load cart lines", "error", err, "cart_id", c.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("item added to cart", "cart_id", c.ID, "product_id", req.ProductID, "quantity", req.Quantity)
	h.writeJSON(w, http.StatusOK, h.cartView(r, c, lines))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	if itemID == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.UpdateItem(r.Context(), itemID, req.Quantity); err != nil {
		h.writeCartError(w, err, "")
		return
	}

	h.logger.Info("cart item updated", "item_id", itemID, "quantity", req.Quantity)
	h.handleCartState(w, r)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	if itemID == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	if err := h.store.RemoveItem(r.Context(), itemID); err != nil {
		h.writeCartError(w, err, "")
		return
	}

	h.logger.Info("cart item removed", "item_id", itemID)
	h.handleCartState(w, r)
}

func (h *Handler) handleCartState(w http.ResponseWriter, r *http.Request) {
	token := session.Token(w, r)
	c, err := h.store.GetOrCreate(r.Context(), token)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	lines, err := h.store.Lines(r.Context(), c)
	if err != nil {
		h.logger.Error("failed to load cart lines", "error", err, "cart_id", c.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, h.cartView(r, c, lines))
}

func (h *Handler) writeCartError(w http.ResponseWriter, err error, productID string) {
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		h.writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient stock",
			"product_id": insufficient.ProductID,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.Is(err, ErrOutOfStock):
		h.writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "out of stock",
			"product_id": productID,
		})
	case errors.Is(err, ErrInvalidQuantity):
		h.writeError(w, http.StatusBadRequest, "quantity must be greater than zero")
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrCartNotFound),
		errors.Is(err, inventory.ErrProductNotFound):
		h.writeError(w, http.StatusNotFound, "not found")
	default:
		h.logger.Error("cart operation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
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
