package httpx

import (
	"context"
	"encoding/json"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type CartHandler struct {
	Carts   cart.Store
	Catalog catalog.Lister
}

type cartResp struct {
	Items []cart.Item `json:"items"`
	Count int         `json:"count"`
	Total string      `json:"total"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/api/products", h.listProducts)
	r.Get("/api/cart", h.getCart)
	r.Post("/api/cart", h.replaceCart)
}

func (h *CartHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.Carts.Get(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := cart.Totals(items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResp{Items: items, Count: sum.Count, Total: sum.Total.String()})
}

func (h *CartHandler) replaceCart(w http.ResponseWriter, r *http.Request) {
	var items []cart.Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		badRequest(w, "invalid json: expected an array of cart items")
		return
	}
	if items == nil {
		items = []cart.Item{}
	}
	if err := cart.Validate(items); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Carts.Replace(r.Context(), SessionID(r.Context()), items); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Cart updated"})
}

// cartTotal is the server-side amount every checkout route charges.
func cartTotal(ctx context.Context, carts cart.Store) (cart.Summary, error) {
	items, err := carts.Get(ctx, SessionID(ctx))
	if err != nil {
		return cart.Summary{}, err
	}
	return cart.Totals(items)
}
