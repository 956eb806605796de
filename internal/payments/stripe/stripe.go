package stripe

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	pkgerrors "github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
	"net/http"
	"strings"
)

type Config struct {
	SecretKey      string
	PublishableKey string
	// Backends overrides the Stripe API endpoint, nil means api.stripe.com.
	Backends *stripe.Backends
}

// Provider membuat PaymentIntent; konfirmasi kartu terjadi di browser lewat Stripe.js.
type Provider struct {
	cfg   Config
	sc    *client.API
	guard *payments.Guard
	l     *zap.Logger
}

func NewProvider(cfg Config, guard *payments.Guard) *Provider {
	p := &Provider{cfg: cfg, guard: guard, l: zap.L().Named("stripe_provider")}
	if cfg.SecretKey != "" {
		p.sc = client.New(cfg.SecretKey, cfg.Backends)
	}
	return p
}

func (p *Provider) Name() payments.Name { return payments.Stripe }

func (p *Provider) PublishableKey() string { return p.cfg.PublishableKey }

func (p *Provider) ready() error {
	if p.sc == nil {
		return payments.NewError(payments.KindMisconfigured, payments.Stripe, "stripe is not configured", nil)
	}
	return nil
}

func (p *Provider) CreatePayment(ctx context.Context, req payments.Request) (*payments.Session, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if err := payments.ValidateAmount(payments.Stripe, req.Amount); err != nil {
		return nil, err
	}
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	pi, err := payments.Call(ctx, p.guard, func(ctx context.Context) (*stripe.PaymentIntent, error) {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(int64(req.Amount)),
			Currency: stripe.String(currency),
			AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
				Enabled: stripe.Bool(true),
			},
		}
		params.Context = ctx
		if req.IdempotencyKey != "" {
			params.SetIdempotencyKey(req.IdempotencyKey)
		}
		if req.OrderID != "" {
			params.AddMetadata("order_id", req.OrderID)
		}
		if req.SessionID != "" {
			params.AddMetadata("session_id", req.SessionID)
		}
		pi, err := p.sc.PaymentIntents.New(params)
		if err != nil {
			return nil, mapError(pkgerrors.Wrap(err, "Failed payment intent"))
		}
		return pi, nil
	})
	if err != nil {
		p.l.Warn("Failed payment intent",
			zap.Int64("amount", int64(req.Amount)),
			zap.String("currency", currency),
			zap.Error(err),
		)
		return nil, err
	}

	return &payments.Session{
		Provider:     payments.Stripe,
		ReferenceID:  pi.ID,
		Status:       intentStatus(pi.Status),
		ClientParams: map[string]any{"clientSecret": pi.ClientSecret},
		Raw:          pi,
	}, nil
}

// ConfirmPayment retrieves the intent the browser was redirected back with.
func (p *Provider) ConfirmPayment(ctx context.Context, referenceID string, _ payments.Evidence) (*payments.Confirmation, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(referenceID, "pi_") {
		return nil, payments.NewError(payments.KindValidation, payments.Stripe, "invalid payment intent id", nil)
	}
	pi, err := payments.Call(ctx, p.guard, func(ctx context.Context) (*stripe.PaymentIntent, error) {
		params := &stripe.PaymentIntentParams{}
		params.Context = ctx
		pi, err := p.sc.PaymentIntents.Get(referenceID, params)
		if err != nil {
			return nil, mapError(pkgerrors.Wrap(err, "Failed retrieve payment intent"))
		}
		return pi, nil
	})
	if err != nil {
		return nil, err
	}
	c := &payments.Confirmation{
		Provider:    payments.Stripe,
		ReferenceID: pi.ID,
		Status:      intentStatus(pi.Status),
		Detail:      string(pi.Status),
		Raw:         pi,
	}
	if pi.LatestCharge != nil {
		c.TransactionID = pi.LatestCharge.ID
	}
	return c, nil
}

func intentStatus(s stripe.PaymentIntentStatus) payments.Status {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return payments.StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return payments.StatusFailed
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusRequiresConfirmation:
		return payments.StatusPending
	default:
		return payments.StatusCreated
	}
}

// FailureType is the failure page "type" for an intent that did not succeed.
func FailureType(status string) string {
	switch stripe.PaymentIntentStatus(status) {
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		return "payment_failed"
	case stripe.PaymentIntentStatusRequiresAction:
		return "authentication_required"
	case stripe.PaymentIntentStatusProcessing:
		return "payment_processing"
	case stripe.PaymentIntentStatusCanceled:
		return "payment_canceled"
	default:
		return "payment_failed"
	}
}

// mapError turns stripe-go errors into payments.Error; raw Stripe text stays in Err.
func mapError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return payments.NewError(payments.KindNetwork, payments.Stripe, "stripe unreachable", err)
	}
	switch {
	case se.HTTPStatusCode == http.StatusUnauthorized || se.HTTPStatusCode == http.StatusForbidden:
		return payments.NewError(payments.KindMisconfigured, payments.Stripe, "stripe rejected credentials", err)
	case se.HTTPStatusCode == http.StatusTooManyRequests || se.HTTPStatusCode >= 500 || se.Type == stripe.ErrorTypeAPI:
		return payments.NewError(payments.KindNetwork, payments.Stripe, "stripe unavailable", err)
	case se.Type == stripe.ErrorTypeCard:
		return payments.NewError(payments.KindDeclined, payments.Stripe, "card was declined", err)
	case se.Code == stripe.ErrorCodeAmountTooSmall || se.Code == stripe.ErrorCodeAmountTooLarge:
		return payments.NewError(payments.KindInvalidAmount, payments.Stripe, "amount is outside the allowed range", err)
	case se.Code == stripe.ErrorCodeResourceMissing || se.HTTPStatusCode == http.StatusNotFound:
		return payments.NewError(payments.KindNotFound, payments.Stripe, "payment intent not found", err)
	case se.Type == stripe.ErrorTypeInvalidRequest:
		return payments.NewError(payments.KindValidation, payments.Stripe, "invalid payment request", err)
	default:
		return payments.NewError(payments.KindProvider, payments.Stripe, "stripe error", err)
	}
}
