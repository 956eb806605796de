package paypal

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-storefront.git/internal/events"
	"github.com/ariefcatur/go-storefront.git/internal/money"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/google/uuid"
	"github.com/plutov/paypal/v4"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"net/http"
	"strings"
	"sync"
)

type Config struct {
	ClientID     string
	ClientSecret string
	// APIBase defaults to the sandbox.
	APIBase string
}

// Issues PayPal reports for a buyer-side refusal rather than a bad request.
var declineIssues = map[string]bool{
	"INSTRUMENT_DECLINED":       true,
	"PAYER_ACTION_REQUIRED":     true,
	"ORDER_NOT_APPROVED":        true,
	"TRANSACTION_REFUSED":       true,
	"PAYER_CANNOT_PAY":          true,
	"PAYEE_BLOCKED_TRANSACTION": true,
	"COMPLIANCE_VIOLATION":      true,
}

// Order statuses from the Orders v2 API.
const (
	orderCompleted           = "COMPLETED"
	orderApproved            = "APPROVED"
	orderSaved               = "SAVED"
	orderVoided              = "VOIDED"
	orderPayerActionRequired = "PAYER_ACTION_REQUIRED"
)

type Provider struct {
	client *paypal.Client
	guard  *payments.Guard
	events events.Emitter
	l      *zap.Logger

	mu      sync.Mutex
	hasAuth bool
}

func NewProvider(cfg Config, guard *payments.Guard, em events.Emitter) (*Provider, error) {
	p := &Provider{guard: guard, events: em, l: zap.L().Named("paypal_provider")}
	if p.events == nil {
		p.events = events.Nop{}
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return p, nil
	}
	if cfg.APIBase == "" {
		cfg.APIBase = paypal.APIBaseSandBox
	}
	c, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, cfg.APIBase)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "Failed new paypal client")
	}
	p.client = c
	return p, nil
}

func (p *Provider) Name() payments.Name { return payments.PayPal }

// authorize fetches the OAuth token once; plutov refreshes it near expiry.
func (p *Provider) authorize(ctx context.Context) error {
	if p.client == nil {
		return payments.NewError(payments.KindMisconfigured, payments.PayPal, "paypal is not configured", nil)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hasAuth {
		return nil
	}
	if _, err := p.client.GetAccessToken(ctx); err != nil {
		return mapError(pkgerrors.Wrap(err, "Failed get access token"))
	}
	p.hasAuth = true
	return nil
}

func (p *Provider) CreatePayment(ctx context.Context, req payments.Request) (*payments.Session, error) {
	if err := payments.ValidateAmount(payments.PayPal, req.Amount); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	// satu request id untuk semua retry, PayPal balikin order yang sama
	requestID := req.IdempotencyKey
	if requestID == "" {
		requestID = uuid.NewString()
	}
	order, err := payments.Call(ctx, p.guard, func(ctx context.Context) (*paypal.Order, error) {
		if err := p.authorize(ctx); err != nil {
			return nil, err
		}
		units := []paypal.PurchaseUnitRequest{{
			ReferenceID: req.OrderID,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    req.Amount.String(),
			},
		}}
		o, err := p.client.CreateOrderWithPaypalRequestID(ctx, paypal.OrderIntentCapture, units, nil, nil, requestID)
		if err != nil {
			return nil, mapError(pkgerrors.Wrap(err, "Failed create order"))
		}
		return o, nil
	})
	if err != nil {
		p.l.Warn("Failed create order", zap.String("amount", req.Amount.String()), zap.Error(err))
		return nil, err
	}
	return &payments.Session{
		Provider:    payments.PayPal,
		ReferenceID: order.ID,
		Status:      orderStatus(order.Status),
		ClientParams: map[string]any{
			"id":     order.ID,
			"status": order.Status,
		},
		Raw: order,
	}, nil
}

// ConfirmPayment captures an order the buyer approved in the PayPal popup.
func (p *Provider) ConfirmPayment(ctx context.Context, orderID string, ev payments.Evidence) (*payments.Confirmation, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, payments.NewError(payments.KindValidation, payments.PayPal, "order id is required", nil)
	}
	res, err := payments.Call(ctx, p.guard, func(ctx context.Context) (*paypal.CaptureOrderResponse, error) {
		if err := p.authorize(ctx); err != nil {
			return nil, err
		}
		r, err := p.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
		if err != nil {
			return nil, mapError(pkgerrors.Wrap(err, "Failed capture order"))
		}
		return r, nil
	})
	if err != nil {
		p.l.Warn("Failed capture order", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}

	c := &payments.Confirmation{
		Provider:    payments.PayPal,
		ReferenceID: res.ID,
		Status:      orderStatus(res.Status),
		Detail:      res.Status,
		Raw:         res,
	}
	var amountCents int64
	var currency string
	for _, pu := range res.PurchaseUnits {
		if pu.Payments == nil {
			continue
		}
		for _, cp := range pu.Payments.Captures {
			c.TransactionID = cp.ID
			if cp.Amount != nil {
				currency = cp.Amount.Currency
				if v, err := money.Parse(cp.Amount.Value); err == nil {
					amountCents = int64(v)
				}
			}
		}
	}
	if c.Status == payments.StatusSucceeded {
		p.events.Emit(ctx, events.EventPaymentCaptured, events.PaymentPayload{
			Provider:      string(payments.PayPal),
			ReferenceID:   res.ID,
			SessionID:     ev.SessionID,
			Status:        string(c.Status),
			AmountCents:   amountCents,
			Currency:      currency,
			TransactionID: c.TransactionID,
		})
	}
	return c, nil
}

func orderStatus(s string) payments.Status {
	switch s {
	case orderCompleted:
		return payments.StatusSucceeded
	case orderVoided:
		return payments.StatusFailed
	case orderApproved, orderSaved, orderPayerActionRequired:
		return payments.StatusPending
	default:
		return payments.StatusCreated
	}
}

func mapError(err error) error {
	var pe *payments.Error
	if errors.As(err, &pe) {
		return err
	}
	var er *paypal.ErrorResponse
	if !errors.As(err, &er) || er.Response == nil {
		return payments.NewError(payments.KindNetwork, payments.PayPal, "paypal unreachable", err)
	}
	for _, d := range er.Details {
		if declineIssues[d.Issue] {
			return payments.NewError(payments.KindDeclined, payments.PayPal, "payment was declined by paypal", err)
		}
	}
	code := er.Response.StatusCode
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return payments.NewError(payments.KindMisconfigured, payments.PayPal, "paypal rejected credentials", err)
	case code == http.StatusTooManyRequests || code >= 500:
		return payments.NewError(payments.KindNetwork, payments.PayPal, "paypal unavailable", err)
	case code == http.StatusNotFound:
		return payments.NewError(payments.KindNotFound, payments.PayPal, "paypal order not found", err)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return payments.NewError(payments.KindValidation, payments.PayPal, "invalid paypal request", err)
	default:
		return payments.NewError(payments.KindProvider, payments.PayPal, "paypal error", err)
	}
}
