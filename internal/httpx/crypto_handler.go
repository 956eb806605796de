package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-storefront.git/internal/money"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/ariefcatur/go-storefront.git/internal/payments/coinremitter"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"net/http"
	"strings"
	"time"
)

type CryptoHandler struct {
	Registry *payments.Registry
	Service  *coinremitter.Service
	Currency string
	Demo     bool
}

func (h *CryptoHandler) Register(r *chi.Mux) {
	r.Route("/api/coinremitter", func(r chi.Router) {
		r.Get("/check-availability", h.availability)
		r.Post("/create-invoice", h.createInvoice)
		r.Get("/payment-status/{invoiceId}", h.paymentStatus)
		r.Post("/verify-transaction", h.verifyTransaction)
	})
}

type coinInfo struct {
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Network string `json:"network"`
}

func (h *CryptoHandler) availability(w http.ResponseWriter, r *http.Request) {
	if !h.Registry.Has(payments.Coinremitter) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "availableCryptos": []string{}, "error": "crypto payments are disabled"})
		return
	}
	coins := h.Service.Available()
	syms := make([]string, 0, len(coins))
	info := make(map[string]coinInfo, len(coins))
	for _, c := range coins {
		syms = append(syms, c.Symbol)
		info[c.Symbol] = coinInfo{Name: c.Name, Icon: c.Icon, Network: c.Network}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"availableCryptos": syms,
		"cryptoInfo":       info,
		"demo":             h.Demo,
	})
}

type createInvoiceReq struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
	Crypto   string      `json:"crypto"`
	OrderID  string      `json:"orderId"`
}

func (h *CryptoHandler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount.String()))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "amount must be a number", Type: payments.KindInvalidAmount.Type()})
		return
	}
	p, err := h.Registry.Get(payments.Coinremitter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = h.Currency
	}
	// FiatAmount yang dipakai buat konversi. Nol/negatif tetap dikirim dan
	// ditolak service sebagai invalid_amount.
	cents, err := money.FromDecimal(amount.Round(2))
	if errors.Is(err, money.ErrTooLarge) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "amount is too large", Type: payments.KindInvalidAmount.Type()})
		return
	}
	sess, err := p.CreatePayment(r.Context(), payments.Request{
		Amount:     cents,
		Currency:   currency,
		OrderID:    req.OrderID,
		SessionID:  SessionID(r.Context()),
		Coin:       req.Crypto,
		FiatAmount: amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "invoice": sess.Raw})
}

type paymentStatusResp struct {
	Success bool `json:"success"`
	*coinremitter.Invoice
	PaymentVerified bool   `json:"payment_verified"`
	Network         string `json:"network"`
	Crypto          string `json:"crypto"`
}

func (h *CryptoHandler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	if !h.Registry.Has(payments.Coinremitter) {
		writeError(w, r, payments.NewError(payments.KindMisconfigured, payments.Coinremitter, "crypto payments are disabled", nil))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	inv, err := h.Service.CheckStatus(ctx, chi.URLParam(r, "invoiceId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	coin, _ := coinremitter.LookupCoin(inv.Coin)
	writeJSON(w, http.StatusOK, paymentStatusResp{
		Success:         true,
		Invoice:         inv,
		PaymentVerified: inv.Status == coinremitter.StatusConfirmed,
		Network:         coin.Network,
		Crypto:          coin.Name,
	})
}

type verifyReq struct {
	InvoiceID       string `json:"invoiceId"`
	TransactionHash string `json:"transactionHash"`
}

func (h *CryptoHandler) verifyTransaction(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.InvoiceID == "" || strings.TrimSpace(req.TransactionHash) == "" {
		badRequest(w, "invoiceId and transactionHash are required")
		return
	}
	p, err := h.Registry.Get(payments.Coinremitter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c, err := p.ConfirmPayment(ctx, req.InvoiceID, payments.Evidence{TransactionHash: req.TransactionHash})
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := c.Raw.(*coinremitter.VerifyResult)
	body := map[string]any{
		"success":         true,
		"verified":        res.Verified,
		"status":          res.Invoice.Status,
		"confirmations":   res.Invoice.Confirmations,
		"transactionHash": res.Invoice.TransactionHash,
	}
	if !res.Verified {
		body["error"] = res.Reason
	}
	writeJSON(w, http.StatusOK, body)
}
