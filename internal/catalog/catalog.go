package catalog

import (
	"context"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/money"
	"strconv"
)

type Product struct {
	ID          int64       `json:"id"`
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	PriceCents  money.Cents `json:"price_cents"`
	Img         string      `json:"img"`
}

// CartItem bentuk item cart dari product (qty 1), seperti yang dikirim browser.
func (p Product) CartItem() cart.Item {
	return cart.Item{
		ID:          cart.ItemID(strconv.FormatInt(p.ID, 10)),
		Name:        p.Name,
		Description: p.Description,
		Price:       cart.Price(p.PriceCents.String()),
		Quantity:    1,
		Img:         p.Img,
	}
}

type Lister interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

const bikeSpec = "500W Motor, 48V Battery, Range: 50 miles, Top Speed: 28 mph"

// Static catalog, dipakai kalau POSTGRES_DSN kosong.
type Static []Product

func (s Static) ListProducts(context.Context) ([]Product, error) {
	out := make([]Product, len(s))
	copy(out, s)
	return out, nil
}

func Default() Static {
	return Static{
		{ID: 1, SKU: "BRONTON", Name: "Bronton", Description: bikeSpec, PriceCents: 300000, Img: "assets/img/bronton.jpg"},
		{ID: 2, SKU: "E-BMX", Name: "E-BMX", Description: bikeSpec, PriceCents: 200000, Img: "assets/img/dummyimg.jpg"},
		{ID: 3, SKU: "F-65", Name: "F-65", Description: bikeSpec, PriceCents: 70000, Img: "assets/img/f65.jpg"},
	}
}
