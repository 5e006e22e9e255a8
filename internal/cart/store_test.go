package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ixollozi/Lux-wood/internal/domain"
)

type fakeProduct struct {
	price  decimal.Decimal
	stock  int
	active bool
}

type fakeRepo struct {
	carts    map[string]*domain.Cart // by id
	items    map[string]*domain.CartItem
	products map[string]fakeProduct

	deleted []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		carts:    make(map[string]*domain.Cart),
		items:    make(map[string]*domain.CartItem),
		products: make(map[string]fakeProduct),
	}
}

func (f *fakeRepo) addProduct(id string, price string, stock int, active bool) {
	f.products[id] = fakeProduct{price: decimal.RequireFromString(price), stock: stock, active: active}
}

func (f *fakeRepo) FindBySession(_ context.Context, token string) (*domain.Cart, error) {
	var newest *domain.Cart
	for _, c := range f.carts {
		if c.SessionToken != token {
			continue
		}
		if newest == nil || c.UpdatedAt.After(newest.UpdatedAt) {
			newest = c
		}
	}
	if newest == nil {
		return nil, ErrCartNotFound
	}
	cp := *newest
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, token string) (*domain.Cart, error) {
	now := time.Now()
	c := &domain.Cart{ID: uuid.New().String(), SessionToken: token, CreatedAt: now, UpdatedAt: now}
	f.carts[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Delete(_ context.Context, cartID string) error {
	delete(f.carts, cartID)
	for id, it := range f.items {
		if it.CartID == cartID {
			delete(f.items, id)
		}
	}
	f.deleted = append(f.deleted, cartID)
	return nil
}

func (f *fakeRepo) Touch(_ context.Context, cartID string) error {
	if c, ok := f.carts[cartID]; ok {
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeRepo) ItemByID(_ context.Context, itemID string) (*domain.CartItem, error) {
	it, ok := f.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeRepo) ItemByProduct(_ context.Context, cartID, productID string) (*domain.CartItem, error) {
	for _, it := range f.items {
		if it.CartID == cartID && it.ProductID == productID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, ErrItemNotFound
}

func (f *fakeRepo) InsertItem(_ context.Context, item *domain.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateItemQuantity(_ context.Context, itemID string, quantity int) error {
	it, ok := f.items[itemID]
	if !ok {
		return ErrItemNotFound
	}
	it.Quantity = quantity
	return nil
}

func (f *fakeRepo) DeleteItem(_ context.Context, itemID string) error {
	delete(f.items, itemID)
	return nil
}

func (f *fakeRepo) Lines(_ context.Context, cartID string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	for _, it := range f.items {
		if it.CartID != cartID {
			continue
		}
		p := f.products[it.ProductID]
		lines = append(lines, domain.CartLine{
			Item: *it,
			Product: domain.Product{
				ID:     it.ProductID,
				Price:  p.price,
				Stock:  p.stock,
				Active: p.active,
			},
		})
	}
	return lines, nil
}

func (f *fakeRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, c := range f.carts {
		if c.UpdatedAt.Before(cutoff) {
			delete(f.carts, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) Availability(_ context.Context, productID string) (int, bool, error) {
	p, ok := f.products[productID]
	if !ok {
		return 0, false, fmt.Errorf("product %s not found", productID)
	}
	return p.stock, p.active, nil
}

func newTestStore(repo *fakeRepo) *Store {
	return NewStore(repo, repo)
}

func TestStore_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a new line", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 10, true)
		store := newTestStore(repo)

		cart, err := store.GetOrCreate(ctx, "sess")
		if err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}

		item, err := store.AddItem(ctx, cart, "p1", 2)
		if err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if item.Quantity != 2 {
			t.Errorf("expected quantity 2, got %d", item.Quantity)
		}
	})

	t.Run("accumulates onto an existing line", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 10, true)
		store := newTestStore(repo)

		cart, _ := store.GetOrCreate(ctx, "sess")
		if _, err := store.AddItem(ctx, cart, "p1", 3); err != nil {
			t.Fatalf("first add: %v", err)
		}
		item, err := store.AddItem(ctx, cart, "p1", 4)
		if err != nil {
			t.Fatalf("second add: %v", err)
		}
		if item.Quantity != 7 {
			t.Errorf("expected quantity 7, got %d", item.Quantity)
		}
	})

	t.Run("rejects accumulation beyond stock with the line maximum", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 10, true)
		store := newTestStore(repo)

		cart, _ := store.GetOrCreate(ctx, "sess")
		if _, err := store.AddItem(ctx, cart, "p1", 8); err != nil {
			t.Fatalf("first add: %v", err)
		}

		_, err := store.AddItem(ctx, cart, "p1", 5)
		var insufficient *InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		// Requested and Available are both line totals: the buyer asked
		// for 13 in total and can have at most 10.
		if insufficient.Requested != 13 {
			t.Errorf("expected requested 13, got %d", insufficient.Requested)
		}
		if insufficient.Available != 10 {
			t.Errorf("expected available 10, got %d", insufficient.Available)
		}

		// Failed add leaves the line untouched.
		item, err := repo.ItemByProduct(ctx, cart.ID, "p1")
		if err != nil {
			t.Fatalf("ItemByProduct: %v", err)
		}
		if item.Quantity != 8 {
			t.Errorf("expected quantity still 8, got %d", item.Quantity)
		}
	})

	t.Run("first add beyond stock persists nothing", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 3, true)
		store := newTestStore(repo)

		cart, _ := store.GetOrCreate(ctx, "sess")
		_, err := store.AddItem(ctx, cart, "p1", 5)
		var insufficient *InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.Available != 3 {
			t.Errorf("expected available 3, got %d", insufficient.Available)
		}
		if _, err := repo.ItemByProduct(ctx, cart.ID, "p1"); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("expected no persisted line, got %v", err)
		}
	})

	t.Run("inactive product is out of stock", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 10, false)
		store := newTestStore(repo)

		cart, _ := store.GetOrCreate(ctx, "sess")
		if _, err := store.AddItem(ctx, cart, "p1", 1); !errors.Is(err, ErrOutOfStock) {
			t.Errorf("expected ErrOutOfStock, got %v", err)
		}
	})

	t.Run("zero stock is out of stock", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 0, true)
		store := newTestStore(repo)

		cart, _ := store.GetOrCreate(ctx, "sess")
		if _, err := store.AddItem(ctx, cart, "p1", 1); !errors.Is(err, ErrOutOfStock) {
			t.Errorf("expected ErrOutOfStock, got %v", err)
		}
	})

	t.Run("non-positive quantity is invalid", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 10, true)
		store := newTestStore(repo)

		cart, _ := store.GetOrCreate(ctx, "sess")
		if _, err := store.AddItem(ctx, cart, "p1", 0); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("expected ErrInvalidQuantity, got %v", err)
		}
	})
}

func TestStore_UpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("zero quantity deletes the line", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 10, true)
		store := newTestStore(repo)

		cart, _ := store.GetOrCreate(ctx, "sess")
		item, _ := store.AddItem(ctx, cart, "p1", 2)

		if err := store.UpdateItem(ctx, item.ID, 0); err != nil {
			t.Fatalf("UpdateItem: %v", err)
		}
		if _, err := repo.ItemByID(ctx, item.ID); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("expected line deleted, got %v", err)
		}
	})

	t.Run("quantity beyond stock reports the maximum", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 5, true)
		store := newTestStore(repo)

		cart, _ := store.GetOrCreate(ctx, "sess")
		item, _ := store.AddItem(ctx, cart, "p1", 2)

		err := store.UpdateItem(ctx, item.ID, 9)
		var insufficient *InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.Available != 5 {
			t.Errorf("expected available 5, got %d", insufficient.Available)
		}

		got, _ := repo.ItemByID(ctx, item.ID)
		if got.Quantity != 2 {
			t.Errorf("expected quantity still 2, got %d", got.Quantity)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		store := newTestStore(newFakeRepo())
		if err := store.UpdateItem(ctx, "missing", 1); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})
}

func TestStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns existing cart", func(t *testing.T) {
		repo := newFakeRepo()
		store := newTestStore(repo)

		first, _ := store.GetOrCreate(ctx, "sess")
		second, _ := store.GetOrCreate(ctx, "sess")
		if first.ID != second.ID {
			t.Errorf("expected same cart, got %s and %s", first.ID, second.ID)
		}
	})

	t.Run("expired cart is replaced with a fresh one", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addProduct("p1", "100.00", 10, true)
		store := newTestStore(repo)

		stale, _ := store.GetOrCreate(ctx, "sess")
		if _, err := store.AddItem(ctx, stale, "p1", 2); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		repo.carts[stale.ID].UpdatedAt = time.Now().AddDate(0, 0, -31)

		fresh, err := store.GetOrCreate(ctx, "sess")
		if err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
		if fresh.ID == stale.ID {
			t.Fatal("expected a replacement cart")
		}
		empty, _ := store.IsEmpty(ctx, fresh)
		if !empty {
			t.Error("expected replacement cart to be empty")
		}
		if len(repo.deleted) != 1 || repo.deleted[0] != stale.ID {
			t.Errorf("expected stale cart deleted, got %v", repo.deleted)
		}
	})

	t.Run("cart exactly at the boundary survives", func(t *testing.T) {
		repo := newFakeRepo()
		store := newTestStore(repo)

		c, _ := store.GetOrCreate(ctx, "sess")
		repo.carts[c.ID].UpdatedAt = time.Now().AddDate(0, 0, -30).Add(time.Minute)

		again, _ := store.GetOrCreate(ctx, "sess")
		if again.ID != c.ID {
			t.Error("expected cart within retention to survive")
		}
	})
}

func TestStore_Totals(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.addProduct("p1", "1999.99", 10, true)
	repo.addProduct("p2", "0.01", 10, true)
	store := newTestStore(repo)

	cart, _ := store.GetOrCreate(ctx, "sess")
	if _, err := store.AddItem(ctx, cart, "p1", 3); err != nil {
		t.Fatalf("AddItem p1: %v", err)
	}
	if _, err := store.AddItem(ctx, cart, "p2", 2); err != nil {
		t.Fatalf("AddItem p2: %v", err)
	}

	total, err := store.TotalPrice(ctx, cart)
	if err != nil {
		t.Fatalf("TotalPrice: %v", err)
	}
	if got := total.StringFixed(2); got != "5999.99" {
		t.Errorf("expected total 5999.99, got %s", got)
	}

	count, err := store.TotalItems(ctx, cart)
	if err != nil {
		t.Fatalf("TotalItems: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 items, got %d", count)
	}
}
