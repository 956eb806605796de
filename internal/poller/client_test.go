package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/coinremitter/payment-status/inv-1":
			_, _ = w.Write([]byte(`{"success":true,"invoice_id":"inv-1","status":"pending","confirmations":1,"confirmations_required":3,"expire_at":"2024-01-01T12:15:00Z","payment_verified":false,"network":"Bitcoin"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"Invoice not found","type":"not_found"}`))
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL+"/", time.Second)

	s, err := c.Status(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", s.Status)
	assert.Equal(t, 3, s.ConfirmationsRequired)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 15, 0, 0, time.UTC), s.ExpireAt)
	assert.False(t, s.Terminal())

	_, err = c.Status(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "not_found", ae.Type)
}

func TestClient_CreateAndVerify(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		got = map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		switch r.URL.Path {
		case "/api/coinremitter/create-invoice":
			if got["amount"] == float64(0) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"success":false,"error":"amount must be greater than zero","type":"invalid_amount"}`))
				return
			}
			_, _ = w.Write([]byte(`{"success":true,"invoice":{"invoice_id":"inv-9","status":"waiting","coin":"BTC","total_amount":"0.002"}}`))
		case "/api/coinremitter/verify-transaction":
			_, _ = w.Write([]byte(`{"success":true,"verified":false,"status":"waiting","error":"invalid transaction hash format for BTC"}`))
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)

	inv, err := c.CreateInvoice(context.Background(), CreateInvoiceParams{Amount: "130", Crypto: "BTC"})
	require.NoError(t, err)
	assert.Equal(t, "inv-9", inv.InvoiceID)
	assert.Equal(t, "0.002", inv.TotalAmount)
	assert.Equal(t, float64(130), got["amount"])

	_, err = c.CreateInvoice(context.Background(), CreateInvoiceParams{Amount: "0", Crypto: "BTC"})
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "invalid_amount", ae.Type)

	v, err := c.Verify(context.Background(), "inv-9", "xyz")
	require.NoError(t, err)
	assert.False(t, v.Verified)
	assert.Equal(t, "invalid transaction hash format for BTC", v.Error)
	assert.Equal(t, "xyz", got["transactionHash"])
}
