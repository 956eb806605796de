// Package mastercard is a stand-in for Mastercard Hosted Checkout. Sessions
// live in process memory and no card data is ever seen.
package mastercard

import (
	"context"
	"crypto/subtle"
	"github.com/ariefcatur/go-storefront.git/internal/money"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"strings"
	"sync"
	"time"
)

type Config struct {
	MerchantID string
	Username   string
	Password   string
	SessionTTL time.Duration
}

type Session struct {
	ID               string      `json:"id"`
	OrderID          string      `json:"order_id"`
	Amount           money.Cents `json:"amount"`
	Currency         string      `json:"currency"`
	SuccessIndicator string      `json:"-"`
	CreatedAt        time.Time   `json:"created_at"`
	Completed        bool        `json:"completed"`
}

type Provider struct {
	cfg Config
	now func() time.Time
	l   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewProvider(cfg Config) *Provider {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	return &Provider{
		cfg:      cfg,
		now:      time.Now,
		l:        zap.L().Named("mastercard_provider"),
		sessions: map[string]*Session{},
	}
}

func (p *Provider) Name() payments.Name { return payments.Mastercard }

func (p *Provider) configured() bool {
	return p.cfg.MerchantID != "" && p.cfg.Username != "" && p.cfg.Password != ""
}

func (p *Provider) CreatePayment(_ context.Context, req payments.Request) (*payments.Session, error) {
	if !p.configured() {
		return nil, payments.NewError(payments.KindMisconfigured, payments.Mastercard, "mastercard gateway is not configured", nil)
	}
	if err := payments.ValidateAmount(payments.Mastercard, req.Amount); err != nil {
		return nil, err
	}
	now := p.now()
	orderID := req.OrderID
	if orderID == "" {
		orderID = "ORDER_" + now.Format("20060102150405")
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	s := &Session{
		ID:               "SESSION" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		OrderID:          orderID,
		Amount:           req.Amount,
		Currency:         currency,
		SuccessIndicator: strings.ReplaceAll(uuid.NewString(), "-", ""),
		CreatedAt:        now,
	}

	p.mu.Lock()
	p.gc(now)
	p.sessions[s.ID] = s
	p.mu.Unlock()

	p.l.Info("session created", zap.String("session_id", s.ID), zap.String("order_id", orderID))
	return &payments.Session{
		Provider:    payments.Mastercard,
		ReferenceID: s.ID,
		Status:      payments.StatusCreated,
		ClientParams: map[string]any{
			"id":       s.ID,
			"merchant": p.cfg.MerchantID,
			"orderId":  s.OrderID,
			"amount":   s.Amount.String(),
			"currency": s.Currency,
			// gateway asli kirim ini lewat return URL; mock tidak punya gateway
			"resultIndicator": s.SuccessIndicator,
		},
		Raw: *s,
	}, nil
}

// ConfirmPayment compares the gateway's resultIndicator with the session's successIndicator.
func (p *Provider) ConfirmPayment(_ context.Context, sessionID string, ev payments.Evidence) (*payments.Confirmation, error) {
	if !p.configured() {
		return nil, payments.NewError(payments.KindMisconfigured, payments.Mastercard, "mastercard gateway is not configured", nil)
	}
	if strings.TrimSpace(ev.ResultIndicator) == "" {
		return nil, payments.NewError(payments.KindValidation, payments.Mastercard, "resultIndicator is required", nil)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, payments.NewError(payments.KindNotFound, payments.Mastercard, "session not found", nil)
	}
	c := &payments.Confirmation{Provider: payments.Mastercard, ReferenceID: s.ID}
	if subtle.ConstantTimeCompare([]byte(s.SuccessIndicator), []byte(ev.ResultIndicator)) != 1 {
		c.Status = payments.StatusFailed
		c.Detail = "result indicator mismatch"
		return c, nil
	}
	if !s.Completed && p.now().Sub(s.CreatedAt) > p.cfg.SessionTTL {
		c.Status = payments.StatusExpired
		c.Detail = "session expired"
		return c, nil
	}
	s.Completed = true
	c.Status = payments.StatusSucceeded
	c.TransactionID = s.OrderID
	c.Raw = *s
	return c, nil
}

// gc drops expired, unfinished sessions. Caller holds mu.
func (p *Provider) gc(now time.Time) {
	for id, s := range p.sessions {
		if !s.Completed && now.Sub(s.CreatedAt) > 2*p.cfg.SessionTTL {
			delete(p.sessions, id)
		}
	}
}
