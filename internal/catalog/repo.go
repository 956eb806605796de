package catalog

import (
	"context"
	"github.com/ariefcatur/go-storefront.git/internal/money"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type Repo struct{ DB *pgxpool.Pool }

const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id          BIGSERIAL PRIMARY KEY,
	sku         TEXT UNIQUE NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
	img         TEXT NOT NULL DEFAULT ''
)`

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, Schema)
	return err
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, sku, name, description, price_cents, img
	                                FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var p Product
		var price int64
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &price, &p.Img); err != nil {
			return nil, err
		}
		p.PriceCents = money.Cents(price)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Init prepares a fresh or existing database: schema first, then defaults for
// any sku not already present. Existing rows are left untouched.
func (r *Repo) Init(ctx context.Context, defaults []Product) error {
	if err := r.EnsureSchema(ctx); err != nil {
		return errors.Wrap(err, "Failed ensure schema")
	}
	if err := r.Seed(ctx, defaults); err != nil {
		return errors.Wrap(err, "Failed seed catalog")
	}
	return nil
}

// Seed insert produk yang sku-nya belum ada; row lama tidak diubah.
func (r *Repo) Seed(ctx context.Context, products []Product) error {
	for _, p := range products {
		if _, err := r.DB.Exec(ctx, `
			INSERT INTO products(sku, name, description, price_cents, img)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (sku) DO NOTHING`,
			p.SKU, p.Name, p.Description, int64(p.PriceCents), p.Img,
		); err != nil {
			return err
		}
	}
	return nil
}
