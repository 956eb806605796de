package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Snapshot is what the storefront reports for one invoice.
type Snapshot struct {
	InvoiceID             string    `json:"invoice_id"`
	OrderID               string    `json:"order_id"`
	Coin                  string    `json:"coin"`
	TotalAmount           string    `json:"total_amount"`
	Address               string    `json:"address"`
	QRCode                string    `json:"qr_code"`
	ExpireAt              time.Time `json:"expire_at"`
	Status                string    `json:"status"`
	Confirmations         int       `json:"confirmations"`
	ConfirmationsRequired int       `json:"confirmations_required"`
	TransactionHash       string    `json:"transaction_hash"`
	VerificationAttempts  int       `json:"verification_attempts"`
	FailureReason         string    `json:"failure_reason"`
	PaymentVerified       bool      `json:"payment_verified"`
	Network               string    `json:"network"`
	Crypto                string    `json:"crypto"`
}

// Terminal mirrors the server's terminal invoice states.
func (s Snapshot) Terminal() bool { return s.Status == "confirmed" || s.Status == "expired" }

// APIError is a {success:false, error, type} response.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: %d %s: %s", e.StatusCode, e.Type, e.Message)
}

// IsNotFound reports an unknown invoice.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// Client talks to the storefront's /api/coinremitter routes.
type Client struct {
	base string
	hc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (c *Client) Status(ctx context.Context, invoiceID string) (Snapshot, error) {
	var s Snapshot
	err := c.do(ctx, http.MethodGet, "/api/coinremitter/payment-status/"+url.PathEscape(invoiceID), nil, &s)
	return s, err
}

type CreateInvoiceParams struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency,omitempty"`
	Crypto   string `json:"crypto"`
	OrderID  string `json:"orderId,omitempty"`
}

func (c *Client) CreateInvoice(ctx context.Context, p CreateInvoiceParams) (Snapshot, error) {
	var out struct {
		Invoice Snapshot `json:"invoice"`
	}
	body := map[string]any{"amount": json.Number(p.Amount), "currency": p.Currency, "crypto": p.Crypto, "orderId": p.OrderID}
	if err := c.do(ctx, http.MethodPost, "/api/coinremitter/create-invoice", body, &out); err != nil {
		return Snapshot{}, err
	}
	return out.Invoice, nil
}

type VerifyResult struct {
	Verified        bool   `json:"verified"`
	Status          string `json:"status"`
	Confirmations   int    `json:"confirmations"`
	TransactionHash string `json:"transactionHash"`
	Error           string `json:"error"`
}

func (c *Client) Verify(ctx context.Context, invoiceID, hash string) (VerifyResult, error) {
	var out VerifyResult
	err := c.do(ctx, http.MethodPost, "/api/coinremitter/verify-transaction",
		map[string]string{"invoiceId": invoiceID, "transactionHash": hash}, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var rd io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "Failed marshal")
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return errors.Wrap(err, "Failed new request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "Failed do request")
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "Failed read all body")
	}

	var envelope struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
		Type    string `json:"type"`
	}
	_ = json.Unmarshal(b, &envelope)
	if resp.StatusCode >= 300 || (envelope.Success != nil && !*envelope.Success) {
		msg := envelope.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Type: envelope.Type, Message: msg}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return errors.Wrap(err, "Failed unmarshal")
	}
	return nil
}
