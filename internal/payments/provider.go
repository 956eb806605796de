// Package payments defines the capability every payment provider exposes and
// the error taxonomy the route layer renders.
package payments

import (
	"context"
	"github.com/ariefcatur/go-storefront.git/internal/money"
	"github.com/shopspring/decimal"
)

type Name string

const (
	PayPal       Name = "paypal"
	Stripe       Name = "stripe"
	Mastercard   Name = "mastercard"
	Coinremitter Name = "coinremitter"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusExpired
}

type Request struct {
	Amount         money.Cents
	Currency       string
	IdempotencyKey string
	OrderID        string
	SessionID      string
	// Coin dipakai provider crypto saja (BTC, ETH, ...).
	Coin string
	// FiatAmount keeps the exact client amount for providers that quote in
	// another unit; zero means use Amount.
	FiatAmount decimal.Decimal
}

type Session struct {
	Provider     Name           `json:"provider"`
	ReferenceID  string         `json:"reference_id"`
	Status       Status         `json:"status"`
	ClientParams map[string]any `json:"client_params,omitempty"`
	// Raw is the provider object, rendered as-is by routes that proxy it.
	Raw any `json:"-"`
}

type Evidence struct {
	TransactionHash string
	ResultIndicator string
	// SessionID is the shopper confirming; it travels into payment events.
	SessionID string
}

type Confirmation struct {
	Provider      Name   `json:"provider"`
	ReferenceID   string `json:"reference_id"`
	Status        Status `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
	Detail        string `json:"detail,omitempty"`
	Raw           any    `json:"-"`
}

type Provider interface {
	Name() Name
	CreatePayment(ctx context.Context, req Request) (*Session, error)
	ConfirmPayment(ctx context.Context, referenceID string, ev Evidence) (*Confirmation, error)
}

// ValidateAmount is shared by adapters; zero and negative totals never reach a provider.
func ValidateAmount(provider Name, amount money.Cents) error {
	if amount <= 0 {
		return NewError(KindInvalidAmount, provider, "amount must be greater than zero", nil)
	}
	return nil
}
