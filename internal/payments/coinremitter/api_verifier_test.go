package coinremitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGuard() *payments.Guard {
	return payments.NewGuard(payments.Coinremitter, payments.GuardConfig{
		MaxRetries:       2,
		InitialInterval:  time.Millisecond,
		MaxInterval:      2 * time.Millisecond,
		FailureThreshold: 100,
		OpenTimeout:      time.Minute,
	})
}

func newAPIVerifier(t *testing.T, h http.HandlerFunc) *APIVerifier {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAPIVerifier(APIConfig{BaseURL: srv.URL, APIKey: "key", Password: "pw"}, testGuard())
}

func TestAPIVerifier_FindPaymentSumsReceivesSinceCreation(t *testing.T) {
	inv := *sampleInvoice("inv-api")
	var gotPath string
	var gotBody map[string]string

	v := newAPIVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"flag": 1,
			"msg":  "success",
			"data": []map[string]any{
				{"txid": "old", "type": "receive", "amount": "1", "confirmations": 100, "date": "2025-12-31 23:00:00"},
				{"txid": "tx1", "type": "receive", "amount": "0.0005", "confirmations": 4, "date": "2026-01-01 12:01:00"},
				{"txid": "tx2", "type": "receive", "amount": "0.00026923", "confirmations": 2, "date": "2026-01-01 12:02:00"},
				{"txid": "out", "type": "send", "amount": "5", "confirmations": 9, "date": "2026-01-01 12:03:00"},
			},
		})
	})

	obs, err := v.FindPayment(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, "/api/v3/BTC/get-transaction-by-address", gotPath)
	assert.Equal(t, "key", gotBody["api_key"])
	assert.Equal(t, "bc1qdemo", gotBody["address"])
	assert.True(t, obs.Found)
	assert.Equal(t, "0.00076923", obs.Amount.String())
	assert.Equal(t, 2, obs.Confirmations)
}

func TestAPIVerifier_FlagZeroIsNotFound(t *testing.T) {
	v := newAPIVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"flag":0,"msg":"Transaction not found","data":null}`))
	})
	obs, err := v.LookupTransaction(context.Background(), *sampleInvoice("inv"), btcTx)
	require.NoError(t, err)
	assert.False(t, obs.Found)
}

func TestAPIVerifier_LookupChecksAddress(t *testing.T) {
	inv := *sampleInvoice("inv")
	addr := "somewhere-else"
	v := newAPIVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"flag": 1,
			"data": map[string]any{"txid": btcTx, "address": addr, "amount": "0.001", "confirmations": 1},
		})
	})

	obs, err := v.LookupTransaction(context.Background(), inv, btcTx)
	require.NoError(t, err)
	assert.False(t, obs.Found)

	addr = inv.Address
	obs, err = v.LookupTransaction(context.Background(), inv, btcTx)
	require.NoError(t, err)
	assert.True(t, obs.Found)
	assert.Equal(t, "0.001", obs.Amount.String())
}

func TestAPIVerifier_ServerErrorsAreRetriedNetworkErrors(t *testing.T) {
	calls := 0
	v := newAPIVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := v.FindPayment(context.Background(), *sampleInvoice("inv"))
	require.Error(t, err)
	assert.Equal(t, payments.KindNetwork, payments.KindOf(err))
	assert.Equal(t, 3, calls)
}

func TestAPIVerifier_MissingCredentials(t *testing.T) {
	v := NewAPIVerifier(APIConfig{BaseURL: "http://127.0.0.1:1"}, testGuard())
	_, err := v.FindPayment(context.Background(), *sampleInvoice("inv"))
	assert.Equal(t, payments.KindMisconfigured, payments.KindOf(err))
}
