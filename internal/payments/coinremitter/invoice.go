package coinremitter

import (
	"fmt"
	"github.com/shopspring/decimal"
	"net/url"
	"time"
)

const (
	VerifiedByPoll   = "poll"
	VerifiedByManual = "manual"

	ReasonExpired = "payment window expired"
)

type Invoice struct {
	ID                    string          `json:"invoice_id"`
	OrderID               string          `json:"order_id"`
	SessionID             string          `json:"session_id,omitempty"`
	Coin                  string          `json:"coin"`
	TotalAmount           decimal.Decimal `json:"total_amount"` // dalam crypto
	FiatAmount            decimal.Decimal `json:"fiat_amount"`
	FiatCurrency          string          `json:"fiat_currency"`
	Address               string          `json:"address"`
	QRCode                string          `json:"qr_code"`
	CreatedAt             time.Time       `json:"created_at"`
	ExpireAt              time.Time       `json:"expire_at"`
	Status                Status          `json:"status"`
	ConfirmationsRequired int             `json:"confirmations_required"`
	Confirmations         int             `json:"confirmations"`
	TransactionHash       string          `json:"transaction_hash,omitempty"`
	VerificationAttempts  int             `json:"verification_attempts"`
	LastVerified          *time.Time      `json:"last_verified,omitempty"`
	FailureReason         string          `json:"failure_reason,omitempty"`
	VerifiedBy            string          `json:"verified_by,omitempty"`
}

// advance moves the invoice forward only; backward or post-terminal moves are ignored.
func (inv *Invoice) advance(next Status) bool {
	if !CanTransition(inv.Status, next) {
		return false
	}
	changed := inv.Status != next
	inv.Status = next
	return changed
}

func (inv *Invoice) expire(at time.Time) bool {
	return at.After(inv.ExpireAt)
}

// paymentURI format BIP21-style, e.g. bitcoin:addr?amount=0.001
func paymentURI(coin Coin, address string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s:%s?amount=%s", coin.URIScheme, address, amount.String())
}

func qrCodeURL(uri string) string {
	return "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=" + url.QueryEscape(uri)
}
