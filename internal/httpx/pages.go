package httpx

import (
	"embed"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/ariefcatur/go-storefront.git/internal/payments/coinremitter"
	stripepay "github.com/ariefcatur/go-storefront.git/internal/payments/stripe"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"html/template"
	"net/http"
	"net/url"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "cart", "checkout", "success", "failure"}

type PagesHandler struct {
	Carts          cart.Store
	Catalog        catalog.Lister
	Registry       *payments.Registry
	Coins          []coinremitter.Coin
	Currency       string
	StripeKey      string
	PayPalClientID string
	// AssetsDir is served under /assets/ when set.
	AssetsDir string

	pages map[string]*template.Template
	l     *zap.Logger
}

type pageData struct {
	Title          string
	Products       []catalog.Product
	Summary        cart.Summary
	Enabled        map[string]bool
	Coins          []coinremitter.Coin
	Currency       string
	StripeKey      string
	PayPalClientID string

	Payment   string
	TxnID     string
	Verified  bool
	Message   string
	ErrorType string
}

func (h *PagesHandler) Register(r *chi.Mux) {
	h.l = zap.L().Named("pages")
	h.pages = make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		h.pages[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}

	r.Get("/", h.index)
	r.Get("/cart", h.cart)
	r.Get("/checkout", h.checkout)
	r.Get("/success", h.success)
	r.Get("/failure", h.failure)
	if h.AssetsDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(h.AssetsDir))))
	}
}

func (h *PagesHandler) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages[name].ExecuteTemplate(w, "layout", data); err != nil {
		h.l.Error("render page", zap.String("page", name), zap.Error(err))
	}
}

// base loads the session cart; a cart that no longer validates renders as empty.
func (h *PagesHandler) base(r *http.Request, title string) pageData {
	d := pageData{Title: title, Summary: cart.Summary{Lines: []cart.Line{}}}
	sum, err := cartTotal(r.Context(), h.Carts)
	if err != nil {
		h.l.Warn("load cart", zap.String("session_id", SessionID(r.Context())), zap.Error(err))
		return d
	}
	d.Summary = sum
	return d
}

func (h *PagesHandler) index(w http.ResponseWriter, r *http.Request) {
	d := h.base(r, "Home")
	ps, err := h.Catalog.ListProducts(r.Context())
	if err != nil {
		h.l.Error("list products", zap.Error(err))
	}
	d.Products = ps
	h.render(w, "index", d)
}

func (h *PagesHandler) cart(w http.ResponseWriter, r *http.Request) {
	h.render(w, "cart", h.base(r, "Cart"))
}

func (h *PagesHandler) checkout(w http.ResponseWriter, r *http.Request) {
	d := h.base(r, "Checkout")
	d.Enabled = map[string]bool{}
	for _, n := range h.Registry.Enabled() {
		d.Enabled[string(n)] = true
	}
	d.Coins = h.Coins
	d.Currency = h.Currency
	d.StripeKey = h.StripeKey
	d.PayPalClientID = h.PayPalClientID
	h.render(w, "checkout", d)
}

// success verifies a Stripe redirect before clearing the cart.
func (h *PagesHandler) success(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if pi := q.Get("payment_intent"); pi != "" {
		p, err := h.Registry.Get(payments.Stripe)
		if err == nil {
			var c *payments.Confirmation
			c, err = p.ConfirmPayment(r.Context(), pi, payments.Evidence{})
			if err == nil && c.Status != payments.StatusSucceeded {
				redirectFailure(w, r, "Payment was not completed", stripepay.FailureType(c.Detail))
				return
			}
		}
		if err != nil {
			redirectFailure(w, r, payments.PublicMessage(err), payments.KindOf(err).Type())
			return
		}
	}

	if err := h.Carts.Clear(r.Context(), SessionID(r.Context())); err != nil {
		h.l.Warn("clear cart", zap.Error(err))
	}
	d := h.base(r, "Success")
	d.Payment = q.Get("payment")
	d.TxnID = q.Get("txn")
	d.Verified = q.Get("verified") == "true"
	h.render(w, "success", d)
}

func (h *PagesHandler) failure(w http.ResponseWriter, r *http.Request) {
	d := h.base(r, "Payment failed")
	d.Message = r.URL.Query().Get("error")
	d.ErrorType = r.URL.Query().Get("type")
	h.render(w, "failure", d)
}

func redirectFailure(w http.ResponseWriter, r *http.Request, msg, typ string) {
	q := url.Values{}
	q.Set("error", msg)
	q.Set("type", typ)
	http.Redirect(w, r, "/failure?"+q.Encode(), http.StatusSeeOther)
}
