//go:build integration

package test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/Ixollozi/Lux-wood/internal/cart"
	"github.com/Ixollozi/Lux-wood/internal/checkout"
	"github.com/Ixollozi/Lux-wood/internal/content"
	"github.com/Ixollozi/Lux-wood/internal/domain"
	"github.com/Ixollozi/Lux-wood/internal/i18n"
	"github.com/Ixollozi/Lux-wood/internal/inventory"
	"github.com/Ixollozi/Lux-wood/internal/janitor"
	"github.com/Ixollozi/Lux-wood/internal/messaging"
	"github.com/Ixollozi/Lux-wood/internal/orders"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedProduct(t *testing.T, db *sql.DB, nameRU, price string, stock int) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO products (id, slug, name_ru, price, stock, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
	`, id, "product-"+id[:8], nameRU, price, stock)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return id
}

func productStock(t *testing.T, db *sql.DB, productID string) int {
	t.Helper()
	var stock int
	if err := db.QueryRow(`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

func TestCheckoutFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := testLogger()
	resolver := i18n.NewResolver(i18n.DefaultLocale)
	ledger := inventory.NewLedger(db)
	cartStore := cart.NewStore(cart.NewPostgresRepository(db), ledger)
	processor := checkout.NewProcessor(db, cartStore, ledger, resolver, logger)
	orderRepo := orders.NewRepository(db)

	productID := seedProduct(t, db, "Диван", "1999.99", 10)

	c, err := cartStore.GetOrCreate(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := cartStore.AddItem(ctx, c, productID, 3); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	order, rejected, err := processor.Checkout(ctx, c, checkout.CustomerDetails{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
		Phone:     "+998901234567",
		Address:   "Amir Temur 1",
		City:      "Tashkent",
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if rejected != nil {
		t.Fatalf("unexpected rejection: %+v", rejected)
	}

	if order.Status != domain.OrderStatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
	// The returned order carries the persisted item rows, ids included.
	if len(order.Items) != 1 || order.Items[0].ID == "" {
		t.Errorf("expected returned order items with ids, got %+v", order.Items)
	}
	if want := decimal.RequireFromString("5999.97"); !order.TotalPrice.Equal(want) {
		t.Errorf("expected total %s, got %s", want, order.TotalPrice)
	}

	// Stock decremented against the persisted value.
	if got := productStock(t, db, productID); got != 7 {
		t.Errorf("expected stock 7, got %d", got)
	}

	// Cart consumed.
	var cartCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM carts WHERE id = $1`, c.ID).Scan(&cartCount); err != nil {
		t.Fatalf("count carts: %v", err)
	}
	if cartCount != 0 {
		t.Error("expected cart deleted after checkout")
	}

	// Order readable with its snapshot items.
	fetched, err := orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil {
		t.Fatal("order not found after checkout")
	}
	if len(fetched.Items) != 1 {
		t.Fatalf("expected 1 order item, got %d", len(fetched.Items))
	}
	item := fetched.Items[0]
	if item.ProductName != "Диван" || item.Quantity != 3 {
		t.Errorf("unexpected item snapshot: %+v", item)
	}
	if item.ID != order.Items[0].ID {
		t.Errorf("expected checkout response item id %s, got %s", item.ID, order.Items[0].ID)
	}
	if !item.Price.Equal(decimal.RequireFromString("1999.99")) {
		t.Errorf("expected snapshot price 1999.99, got %s", item.Price)
	}
}

func TestCheckoutRejectsOversell(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := testLogger()
	resolver := i18n.NewResolver(i18n.DefaultLocale)
	ledger := inventory.NewLedger(db)
	cartStore := cart.NewStore(cart.NewPostgresRepository(db), ledger)
	processor := checkout.NewProcessor(db, cartStore, ledger, resolver, logger)

	productID := seedProduct(t, db, "Шкаф", "300.00", 5)

	c, err := cartStore.GetOrCreate(ctx, "session-2")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := cartStore.AddItem(ctx, c, productID, 5); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Stock drains between carting and checkout.
	if _, err := db.Exec(`UPDATE products SET stock = 2 WHERE id = $1`, productID); err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	order, rejected, err := processor.Checkout(ctx, c, checkout.CustomerDetails{
		FirstName: "Anna",
		LastName:  "Li",
		Email:     "anna@example.com",
		Phone:     "+998900000000",
		Address:   "Navoi 5",
		City:      "Tashkent",
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if order != nil {
		t.Fatal("expected no order on rejection")
	}
	if rejected == nil || len(rejected.Lines) != 1 {
		t.Fatalf("expected 1 rejected line, got %+v", rejected)
	}
	line := rejected.Lines[0]
	if line.Requested != 5 || line.Available != 2 {
		t.Errorf("unexpected rejection: %+v", line)
	}
	if line.ProductName != "Шкаф" {
		t.Errorf("expected resolved name, got %q", line.ProductName)
	}

	// Nothing committed: stock and cart untouched, no order rows.
	if got := productStock(t, db, productID); got != 2 {
		t.Errorf("expected stock still 2, got %d", got)
	}
	var orderCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&orderCount); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Errorf("expected no orders, got %d", orderCount)
	}
	lines, err := cartStore.Lines(ctx, c)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Item.Quantity != 5 {
		t.Errorf("expected cart preserved, got %+v", lines)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ledger := inventory.NewLedger(db)
	cartStore := cart.NewStore(cart.NewPostgresRepository(db), ledger)
	processor := checkout.NewProcessor(db, cartStore, ledger, i18n.NewResolver(i18n.DefaultLocale), testLogger())

	c, err := cartStore.GetOrCreate(ctx, "session-3")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	_, _, err = processor.Checkout(ctx, c, checkout.CustomerDetails{
		FirstName: "A", LastName: "B", Email: "a@b.c", Phone: "1", Address: "x", City: "y",
	})
	if !errors.Is(err, checkout.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestExpiredCartReplaced(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ledger := inventory.NewLedger(db)
	cartStore := cart.NewStore(cart.NewPostgresRepository(db), ledger)

	productID := seedProduct(t, db, "Стул", "50.00", 10)

	stale, err := cartStore.GetOrCreate(ctx, "session-4")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := cartStore.AddItem(ctx, stale, productID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if _, err := db.Exec(`UPDATE carts SET updated_at = NOW() - INTERVAL '31 days' WHERE id = $1`, stale.ID); err != nil {
		t.Fatalf("backdate cart: %v", err)
	}

	fresh, err := cartStore.GetOrCreate(ctx, "session-4")
	if err != nil {
		t.Fatalf("GetOrCreate after expiry: %v", err)
	}
	if fresh.ID == stale.ID {
		t.Fatal("expected expired cart to be replaced")
	}
	empty, err := cartStore.IsEmpty(ctx, fresh)
	if err != nil {
		t.Fatalf("IsEmpty: %v", err)
	}
	if !empty {
		t.Error("expected replacement cart to be empty")
	}
}

func TestJanitorSweepsOldCarts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := cart.NewPostgresRepository(db)
	cartStore := cart.NewStore(repo, inventory.NewLedger(db))

	productID := seedProduct(t, db, "Полка", "75.00", 10)

	for i, token := range []string{"old-1", "old-2", "live-1"} {
		c, err := cartStore.GetOrCreate(ctx, token)
		if err != nil {
			t.Fatalf("GetOrCreate %s: %v", token, err)
		}
		if _, err := cartStore.AddItem(ctx, c, productID, 1); err != nil {
			t.Fatalf("AddItem %s: %v", token, err)
		}
		if i < 2 {
			if _, err := db.Exec(`UPDATE carts SET updated_at = NOW() - INTERVAL '40 days' WHERE id = $1`, c.ID); err != nil {
				t.Fatalf("backdate %s: %v", token, err)
			}
		}
	}

	j := janitor.New(repo, janitor.NewFileMarker(t.TempDir()+"/marker.txt"),
		janitor.DefaultInterval, janitor.DefaultRetentionDays, testLogger())

	deleted, err := j.Sweep(ctx, 30)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 carts swept, got %d", deleted)
	}

	// Line items cascade with their carts.
	var itemCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM cart_items`).Scan(&itemCount); err != nil {
		t.Fatalf("count cart_items: %v", err)
	}
	if itemCount != 1 {
		t.Errorf("expected 1 surviving cart item, got %d", itemCount)
	}
}

func TestLedgerAvailability(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ledger := inventory.NewLedger(db)
	productID := seedProduct(t, db, "Кресло", "120.00", 4)

	t.Run("boundary quantity equals stock", func(t *testing.T) {
		ok, err := ledger.CheckAvailability(ctx, productID, 4)
		if err != nil {
			t.Fatalf("CheckAvailability: %v", err)
		}
		if !ok {
			t.Error("expected quantity equal to stock to be sellable")
		}
	})

	t.Run("one beyond stock", func(t *testing.T) {
		ok, err := ledger.CheckAvailability(ctx, productID, 5)
		if err != nil {
			t.Fatalf("CheckAvailability: %v", err)
		}
		if ok {
			t.Error("expected quantity beyond stock to be rejected")
		}
	})

	t.Run("inactive product is never sellable", func(t *testing.T) {
		if _, err := db.Exec(`UPDATE products SET active = FALSE WHERE id = $1`, productID); err != nil {
			t.Fatalf("deactivate product: %v", err)
		}
		ok, err := ledger.CheckAvailability(ctx, productID, 1)
		if err != nil {
			t.Fatalf("CheckAvailability: %v", err)
		}
		if ok {
			t.Error("expected inactive product to be rejected")
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := ledger.CheckAvailability(ctx, uuid.New().String(), 1)
		if !errors.Is(err, inventory.ErrProductNotFound) {
			t.Errorf("expected ErrProductNotFound, got %v", err)
		}
	})
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	t.Run("cart item lookup", func(t *testing.T) {
		_, err := cart.NewPostgresRepository(db).ItemByID(ctx, "not-a-uuid")
		if !errors.Is(err, cart.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("product availability", func(t *testing.T) {
		_, _, err := inventory.NewLedger(db).Availability(ctx, "not-a-uuid")
		if !errors.Is(err, inventory.ErrProductNotFound) {
			t.Errorf("expected ErrProductNotFound, got %v", err)
		}
	})

	t.Run("order lookup", func(t *testing.T) {
		order, err := orders.NewRepository(db).GetByID(ctx, "not-a-uuid")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if order != nil {
			t.Errorf("expected no order, got %+v", order)
		}
	})

	t.Run("faq category filter", func(t *testing.T) {
		faqs, err := content.NewRepository(db).ActiveFAQs(ctx, "not-a-uuid")
		if err != nil {
			t.Fatalf("ActiveFAQs: %v", err)
		}
		if len(faqs) != 0 {
			t.Errorf("expected no faqs, got %+v", faqs)
		}
	})
}

func TestContentAdvantages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`
		INSERT INTO advantages (id, title_ru, title_en, icon, sort_order, active)
		VALUES ($1, 'Доставка', 'Delivery', 'truck', 1, TRUE),
		       ($2, 'Скрыто', '', '', 2, FALSE)
	`, uuid.New().String(), uuid.New().String()); err != nil {
		t.Fatalf("seed advantages: %v", err)
	}

	handler := content.NewHandler(content.NewRepository(db), i18n.NewResolver(i18n.DefaultLocale), nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/content/advantages?lang=en", nil)
	rec := httptest.NewRecorder()
	handler.HandleAdvantages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var views []struct {
		Title string `json:"title"`
		Icon  string `json:"icon"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 active advantage, got %d", len(views))
	}
	if views[0].Title != "Delivery" || views[0].Icon != "truck" {
		t.Errorf("unexpected advantage view: %+v", views[0])
	}
}

func TestOrderEventPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	const topic = "order.created"

	producer := messaging.NewProducer(brokers, topic)
	defer func() { _ = producer.Close() }()

	event := domain.OrderCreatedEvent{
		OrderID:    "ord-42",
		Email:      "ivan@example.com",
		City:       "Tashkent",
		ItemCount:  2,
		TotalPrice: decimal.RequireFromString("450.00"),
		Timestamp:  time.Now().UTC(),
	}
	if err := producer.Publish(ctx, event.OrderID, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: "integration-test",
	})
	defer func() { _ = reader.Close() }()

	msg, err := reader.ReadMessage(ctx)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if string(msg.Key) != "ord-42" {
		t.Errorf("expected key ord-42, got %s", msg.Key)
	}

	var got domain.OrderCreatedEvent
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if got.OrderID != event.OrderID || got.ItemCount != event.ItemCount {
		t.Errorf("event mismatch: %+v", got)
	}
	if !got.TotalPrice.Equal(event.TotalPrice) {
		t.Errorf("expected total %s, got %s", event.TotalPrice, got.TotalPrice)
	}
}
