package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ixollozi/Lux-wood/internal/cart"
	"github.com/Ixollozi/Lux-wood/internal/domain"
	"github.com/Ixollozi/Lux-wood/internal/messaging"
	"github.com/Ixollozi/Lux-wood/internal/notify"
	"github.com/Ixollozi/Lux-wood/internal/session"
)

type Handler struct {
	carts      *cart.Store
	processor  *Processor
	producer   *messaging.Producer
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewHandler wires the checkout endpoint. producer and dispatcher may be
// nil; both are strictly fire-and-forget relative to the commit.
func NewHandler(carts *cart.Store, processor *Processor, producer *messaging.Producer, dispatcher *notify.Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		carts:      carts,
		processor:  processor,
		producer:   producer,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var details CustomerDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := details.Validate(); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	token, ok := session.Existing(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, "cart not found")
		return
	}

	c, err := h.carts.GetOrCreate(r.Context(), token)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	order, rejected, err := h.processor.Checkout(r.Context(), c, details)
	switch {
	case errors.Is(err, ErrEmptyCart):
		h.writeError(w, http.StatusConflict, "cart is empty")
		return
	case err != nil:
		h.logger.Error("checkout failed", "error", err, "cart_id", c.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	case rejected != nil:
		h.logger.Info("checkout rejected", "cart_id", c.ID, "lines", len(rejected.Lines))
		h.writeJSON(w, http.StatusConflict, map[string]any{
			"error": "insufficient stock",
			"lines": rejected.Lines,
		})
		return
	}

	h.notifyOrder(order)

	h.logger.Info("checkout completed", "order_id", order.ID)
	h.writeJSON(w, http.StatusCreated, order)
}

// notifyOrder dispatches the order event and notifications on a detached
// path. Failures here never affect the committed order or the response.
func (h *Handler) notifyOrder(order *domain.Order) {
	if h.producer != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			event := domain.OrderCreatedEvent{
				OrderID:    order.ID,
				Email:      order.Email,
				City:       order.City,
				ItemCount:  len(order.Items),
				TotalPrice: order.TotalPrice,
				Timestamp:  order.CreatedAt,
			}
			if err := h.producer.Publish(ctx, order.ID, event); err != nil {
				h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
			}
		}()
	}

	if h.dispatcher != nil {
		h.dispatcher.Enqueue(notify.OrderNotification(order))
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
