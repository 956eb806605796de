package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/money"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"io"
	"net/http"
	"strings"
	"time"
)

// PaymentsHandler serves the card and wallet providers: PayPal, Stripe, Mastercard.
type PaymentsHandler struct {
	Registry *payments.Registry
	Carts    cart.Store
	Currency string
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/api/orders", h.createPayPalOrder)
	r.Post("/api/orders/{orderID}/capture", h.capturePayPalOrder)
	r.Post("/create-payment-intent", h.createPaymentIntent)
	r.Post("/api/mastercard/create-session", h.createMastercardSession)
	r.Post("/api/mastercard/process-result", h.processMastercardResult)
}

func (h *PaymentsHandler) provider(w http.ResponseWriter, r *http.Request, name payments.Name) (payments.Provider, bool) {
	p, err := h.Registry.Get(name)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return p, true
}

func (h *PaymentsHandler) request(ctx context.Context, amount money.Cents, orderID string) payments.Request {
	return payments.Request{
		Amount:         amount,
		Currency:       h.Currency,
		IdempotencyKey: middleware.GetReqID(ctx),
		OrderID:        orderID,
		SessionID:      SessionID(ctx),
	}
}

func (h *PaymentsHandler) sessionTotal(ctx context.Context) (money.Cents, error) {
	sum, err := cartTotal(ctx, h.Carts)
	if err != nil {
		return 0, err
	}
	return sum.Total, nil
}

func (h *PaymentsHandler) createPayPalOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r, payments.PayPal)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	total, err := h.sessionTotal(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := p.CreatePayment(ctx, h.request(ctx, total, ""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Raw)
}

func (h *PaymentsHandler) capturePayPalOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r, payments.PayPal)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c, err := p.ConfirmPayment(ctx, chi.URLParam(r, "orderID"), payments.Evidence{SessionID: SessionID(ctx)})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c.Raw)
}

type paymentIntentReq struct {
	Amount *int64 `json:"amount"` // minor units
}

func (h *PaymentsHandler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid json")
		return
	}
	p, ok := h.provider(w, r, payments.Stripe)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var amount money.Cents
	if req.Amount != nil {
		amount = money.Cents(*req.Amount)
	} else {
		total, err := h.sessionTotal(ctx)
		if err != nil {
			writeError(w, r, err)
			return
		}
		amount = total
	}
	sess, err := p.CreatePayment(ctx, h.request(ctx, amount, ""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clientSecret": sess.ClientParams["clientSecret"]})
}

type mastercardSessionReq struct {
	Amount   json.Number `json:"amount"` // major units, e.g. 10.00
	Currency string      `json:"currency"`
	OrderID  string      `json:"orderId"`
}

func (h *PaymentsHandler) createMastercardSession(w http.ResponseWriter, r *http.Request) {
	var req mastercardSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid json")
		return
	}
	p, ok := h.provider(w, r, payments.Mastercard)
	if !ok {
		return
	}
	ctx := r.Context()

	var amount money.Cents
	var err error
	if req.Amount != "" {
		amount, err = money.Parse(req.Amount.String())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "amount: " + err.Error(), Type: payments.KindInvalidAmount.Type()})
			return
		}
	} else if amount, err = h.sessionTotal(ctx); err != nil {
		writeError(w, r, err)
		return
	}

	preq := h.request(ctx, amount, req.OrderID)
	if c := strings.TrimSpace(req.Currency); c != "" {
		preq.Currency = c
	}
	sess, err := p.CreatePayment(ctx, preq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": sess.ClientParams})
}

type mastercardResultReq struct {
	SessionID       string `json:"sessionId"`
	ResultIndicator string `json:"resultIndicator"`
}

func (h *PaymentsHandler) processMastercardResult(w http.ResponseWriter, r *http.Request) {
	var req mastercardResultReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.SessionID == "" {
		badRequest(w, "sessionId is required")
		return
	}
	p, ok := h.provider(w, r, payments.Mastercard)
	if !ok {
		return
	}
	c, err := p.ConfirmPayment(r.Context(), req.SessionID, payments.Evidence{ResultIndicator: req.ResultIndicator})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"verified": c.Status == payments.StatusSucceeded,
		"status":   c.Status,
		"detail":   c.Detail,
		"orderId":  c.TransactionID,
	})
}
