package coinremitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://coinremitter.com"

// Coinremitter returns dates without a zone; they are UTC.
const apiDateLayout = "2006-01-02 15:04:05"

type APIConfig struct {
	BaseURL  string
	APIKey   string
	Password string
	Timeout  time.Duration
}

// APIVerifier asks the Coinremitter wallet API what reached the invoice address.
type APIVerifier struct {
	cfg   APIConfig
	http  *http.Client
	guard *payments.Guard
}

func NewAPIVerifier(cfg APIConfig, guard *payments.Guard) *APIVerifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &APIVerifier{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		guard: guard,
	}
}

type apiEnvelope struct {
	Flag int             `json:"flag"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type apiTransaction struct {
	ID            string `json:"id"`
	TxID          string `json:"txid"`
	Type          string `json:"type"`
	Address       string `json:"address"`
	Amount        string `json:"amount"`
	Confirmations int    `json:"confirmations"`
	Date          string `json:"date"`
}

func (v *APIVerifier) FindPayment(ctx context.Context, inv Invoice) (Observation, error) {
	var txs []apiTransaction
	found, err := v.call(ctx, inv.Coin, "get-transaction-by-address", map[string]string{"address": inv.Address}, &txs)
	if err != nil || !found {
		return Observation{}, err
	}

	// Alamat deposit bisa dipakai ulang: hanya hitung tx masuk setelah invoice dibuat.
	since := inv.CreatedAt.UTC().Truncate(time.Second)
	obs := Observation{Amount: decimal.Zero}
	for _, tx := range txs {
		if tx.Type != "" && tx.Type != "receive" {
			continue
		}
		at, err := time.ParseInLocation(apiDateLayout, tx.Date, time.UTC)
		if err == nil && at.Before(since) {
			continue
		}
		amt, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			continue
		}
		if !obs.Found || tx.Confirmations < obs.Confirmations {
			obs.Confirmations = tx.Confirmations
		}
		obs.Found = true
		obs.Amount = obs.Amount.Add(amt)
		obs.TxHash = tx.TxID
	}
	return obs, nil
}

func (v *APIVerifier) LookupTransaction(ctx context.Context, inv Invoice, hash string) (Observation, error) {
	var tx apiTransaction
	found, err := v.call(ctx, inv.Coin, "get-transaction", map[string]string{"id": hash}, &tx)
	if err != nil || !found {
		return Observation{}, err
	}
	if !strings.EqualFold(tx.Address, inv.Address) {
		return Observation{}, nil
	}
	amt, err := decimal.NewFromString(tx.Amount)
	if err != nil {
		return Observation{}, payments.NewError(payments.KindProvider, payments.Coinremitter, "unreadable transaction amount", err)
	}
	return Observation{Found: true, TxHash: hash, Amount: amt, Confirmations: tx.Confirmations}, nil
}

// call returns found=false when the API answers flag!=1 (unknown tx / address).
func (v *APIVerifier) call(ctx context.Context, coin, method string, params map[string]string, out any) (bool, error) {
	if v.cfg.APIKey == "" || v.cfg.Password == "" {
		return false, payments.NewError(payments.KindMisconfigured, payments.Coinremitter, "coinremitter credentials are not configured", nil)
	}
	body := map[string]string{"api_key": v.cfg.APIKey, "password": v.cfg.Password}
	for k, val := range params {
		body[k] = val
	}
	link := fmt.Sprintf("%s/api/v3/%s/%s", strings.TrimRight(v.cfg.BaseURL, "/"), strings.ToUpper(coin), method)

	env, err := payments.Call(ctx, v.guard, func(ctx context.Context) (*apiEnvelope, error) {
		return v.post(ctx, link, body)
	})
	if err != nil {
		return false, err
	}
	if env.Flag != 1 {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, payments.NewError(payments.KindProvider, payments.Coinremitter, "unexpected coinremitter response", errors.Wrap(err, "Failed unmarshal data"))
	}
	return true, nil
}

func (v *APIVerifier) post(ctx context.Context, link string, in any) (*apiEnvelope, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "Failed marshal")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, link, bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "Failed new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := v.http.Do(req)
	if err != nil {
		return nil, payments.NewError(payments.KindNetwork, payments.Coinremitter, "coinremitter unreachable", errors.Wrap(err, "Failed do request"))
	}
	defer resp.Body.Close()
	b, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, payments.NewError(payments.KindNetwork, payments.Coinremitter, "coinremitter unreachable", errors.Wrap(err, "Failed read all body"))
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, payments.NewError(payments.KindMisconfigured, payments.Coinremitter, "coinremitter rejected credentials", errors.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return nil, payments.NewError(payments.KindNetwork, payments.Coinremitter, "coinremitter unavailable", errors.Errorf("status %d", resp.StatusCode))
	}
	var env apiEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, payments.NewError(payments.KindProvider, payments.Coinremitter, "unexpected coinremitter response", errors.Wrap(err, "Failed unmarshal"))
	}
	return &env, nil
}
