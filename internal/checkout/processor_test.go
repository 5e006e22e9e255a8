package checkout

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Ixollozi/Lux-wood/internal/domain"
	"github.com/Ixollozi/Lux-wood/internal/i18n"
)

func testProcessor() *Processor {
	return NewProcessor(nil, nil, nil,
		i18n.NewResolver(i18n.DefaultLocale),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func line(id, nameRU string, price string, stock, qty int, active bool) domain.CartLine {
	return domain.CartLine{
		Item: domain.CartItem{ProductID: id, Quantity: qty},
		Product: domain.Product{
			ID:     id,
			Name:   i18n.Text{RU: nameRU},
			Price:  decimal.RequireFromString(price),
			Stock:  stock,
			Active: active,
		},
	}
}

func TestProcessor_Validate(t *testing.T) {
	p := testProcessor()

	t.Run("fulfillable cart passes", func(t *testing.T) {
		rejected := p.validate([]domain.CartLine{
			line("p1", "Стол", "100.00", 10, 3, true),
			line("p2", "Стул", "50.00", 4, 4, true),
		})
		if len(rejected) != 0 {
			t.Fatalf("expected no rejections, got %v", rejected)
		}
	})

	t.Run("collects every offending line", func(t *testing.T) {
		rejected := p.validate([]domain.CartLine{
			line("p1", "Стол", "100.00", 2, 5, true),
			line("p2", "Стул", "50.00", 10, 1, true),
			line("p3", "Шкаф", "300.00", 0, 2, true),
		})
		if len(rejected) != 2 {
			t.Fatalf("expected 2 rejections, got %d", len(rejected))
		}
		first := rejected[0]
		if first.ProductID != "p1" || first.Requested != 5 || first.Available != 2 {
			t.Errorf("unexpected first rejection: %+v", first)
		}
		if first.ProductName != "Стол" {
			t.Errorf("expected resolved product name, got %q", first.ProductName)
		}
		second := rejected[1]
		if second.ProductID != "p3" || second.Available != 0 {
			t.Errorf("unexpected second rejection: %+v", second)
		}
	})

	t.Run("inactive product counts as zero stock", func(t *testing.T) {
		rejected := p.validate([]domain.CartLine{
			line("p1", "Стол", "100.00", 10, 1, false),
		})
		if len(rejected) != 1 {
			t.Fatalf("expected 1 rejection, got %d", len(rejected))
		}
		if rejected[0].Available != 0 {
			t.Errorf("expected available 0, got %d", rejected[0].Available)
		}
	})

	t.Run("quantity equal to stock passes", func(t *testing.T) {
		rejected := p.validate([]domain.CartLine{
			line("p1", "Стол", "100.00", 3, 3, true),
		})
		if len(rejected) != 0 {
			t.Fatalf("expected no rejections, got %v", rejected)
		}
	})
}

func TestCustomerDetails_Validate(t *testing.T) {
	valid := CustomerDetails{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
		Phone:     "+998901234567",
		Address:   "Amir Temur 1",
		City:      "Tashkent",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid details, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*CustomerDetails)
	}{
		{"missing first name", func(d *CustomerDetails) { d.FirstName = "" }},
		{"missing last name", func(d *CustomerDetails) { d.LastName = "" }},
		{"missing email", func(d *CustomerDetails) { d.Email = "" }},
		{"missing phone", func(d *CustomerDetails) { d.Phone = "" }},
		{"missing address", func(d *CustomerDetails) { d.Address = "" }},
		{"missing city", func(d *CustomerDetails) { d.City = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.mutate(&d)
			if err := d.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
