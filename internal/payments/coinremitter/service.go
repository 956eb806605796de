package coinremitter

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-storefront.git/internal/events"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"strings"
	"time"
)

type Settings struct {
	// Coins enabled for checkout, subset of KnownCoins.
	Coins []string
	// Addresses maps coin -> deposit address.
	Addresses    map[string]string
	InvoiceTTL   time.Duration
	FiatCurrency string
}

type Service struct {
	store    Store
	verifier TransactionVerifier
	rates    RateSource
	events   events.Emitter
	cfg      Settings
	now      func() time.Time
	l        *zap.Logger
}

func NewService(store Store, verifier TransactionVerifier, rates RateSource, em events.Emitter, cfg Settings) *Service {
	if cfg.InvoiceTTL <= 0 {
		cfg.InvoiceTTL = 15 * time.Minute
	}
	if cfg.FiatCurrency == "" {
		cfg.FiatCurrency = "USD"
	}
	if em == nil {
		em = events.Nop{}
	}
	return &Service{
		store:    store,
		verifier: verifier,
		rates:    rates,
		events:   em,
		cfg:      cfg,
		now:      time.Now,
		l:        zap.L().Named("coinremitter"),
	}
}

// WithClock swaps the time source; tests drive expiry with it.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Available returns enabled coins that also have a deposit address.
func (s *Service) Available() []Coin {
	out := make([]Coin, 0, len(s.cfg.Coins))
	for _, sym := range s.cfg.Coins {
		c, ok := LookupCoin(sym)
		if !ok || s.cfg.Addresses[c.Symbol] == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *Service) enabled(symbol string) (Coin, bool) {
	for _, c := range s.Available() {
		if c.Symbol == symbol {
			return c, true
		}
	}
	return Coin{}, false
}

type CreateInvoiceRequest struct {
	Amount    decimal.Decimal
	Currency  string
	Coin      string
	OrderID   string
	SessionID string
}

func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if !req.Amount.IsPositive() {
		return nil, payments.NewError(payments.KindInvalidAmount, payments.Coinremitter, "amount must be greater than zero", nil)
	}
	sym := strings.ToUpper(strings.TrimSpace(req.Coin))
	coin, ok := s.enabled(sym)
	if !ok {
		return nil, payments.NewError(payments.KindValidation, payments.Coinremitter, fmt.Sprintf("unsupported cryptocurrency %q", req.Coin), nil)
	}
	fiat := strings.ToUpper(strings.TrimSpace(req.Currency))
	if fiat == "" {
		fiat = s.cfg.FiatCurrency
	}
	rate, err := s.rates.Rate(ctx, coin.Symbol, fiat)
	if err != nil {
		if errors.Is(err, ErrUnsupportedCurrency) {
			return nil, payments.NewError(payments.KindValidation, payments.Coinremitter, fmt.Sprintf("unsupported currency %q", fiat), err)
		}
		return nil, payments.NewError(payments.KindProvider, payments.Coinremitter, "exchange rate unavailable", err)
	}

	now := s.now().UTC()
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		orderID = fmt.Sprintf("ORDER_%d", now.UnixMilli())
	}
	address := s.cfg.Addresses[coin.Symbol]
	total := convert(req.Amount, rate)

	inv := &Invoice{
		ID:                    uuid.NewString(),
		OrderID:               orderID,
		SessionID:             req.SessionID,
		Coin:                  coin.Symbol,
		TotalAmount:           total,
		FiatAmount:            req.Amount,
		FiatCurrency:          fiat,
		Address:               address,
		QRCode:                qrCodeURL(paymentURI(coin, address, total)),
		CreatedAt:             now,
		ExpireAt:              now.Add(s.cfg.InvoiceTTL),
		Status:                StatusWaiting,
		ConfirmationsRequired: coin.Confirmations,
	}
	if err := s.store.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("store invoice: %w", err)
	}

	s.l.Info("invoice created",
		zap.String("invoice_id", inv.ID),
		zap.String("coin", inv.Coin),
		zap.String("amount", inv.TotalAmount.String()),
	)
	s.emit(ctx, events.EventPaymentCreated, inv)
	return inv, nil
}

func (s *Service) load(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, payments.NewError(payments.KindNotFound, payments.Coinremitter, "Invoice not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return inv, nil
}

// CheckStatus is one polling step: expiry first, then the verifier.
// Terminal invoices come back untouched.
func (s *Service) CheckStatus(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status.IsTerminal() {
		return inv, nil
	}

	now := s.now().UTC()
	var (
		obs       Observation
		lookupErr error
	)
	// Lookup di luar Update: jangan tahan lock selama call ke jaringan.
	if !inv.expire(now) {
		obs, lookupErr = s.verifier.FindPayment(ctx, *inv)
	}

	var prev Status
	updated, err := s.store.Update(ctx, id, func(cur *Invoice) error {
		prev = cur.Status
		if cur.Status.IsTerminal() {
			return nil
		}
		cur.VerificationAttempts++
		cur.LastVerified = &now

		if cur.expire(now) {
			cur.advance(StatusExpired)
			cur.FailureReason = ReasonExpired
			return nil
		}
		if lookupErr != nil {
			cur.FailureReason = "verification failed: " + payments.PublicMessage(lookupErr)
			return nil
		}
		applyObservation(cur, obs)
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err)
	}
	if lookupErr != nil {
		s.l.Warn("payment lookup failed", zap.String("invoice_id", id), zap.Error(lookupErr))
	}
	s.emitTransition(ctx, prev, updated)
	return updated, nil
}

func applyObservation(cur *Invoice, obs Observation) {
	if !obs.Found {
		return
	}
	cur.Confirmations = obs.Confirmations
	cur.FailureReason = ""
	enough := obs.Amount.GreaterThanOrEqual(cur.TotalAmount)
	if enough && obs.Confirmations >= cur.ConfirmationsRequired {
		if cur.advance(StatusConfirmed) {
			cur.TransactionHash = obs.TxHash
			cur.VerifiedBy = VerifiedByPoll
		}
		return
	}
	if !enough {
		cur.FailureReason = fmt.Sprintf("partial payment: received %s of %s %s", obs.Amount.String(), cur.TotalAmount.String(), cur.Coin)
	}
	cur.advance(StatusPending)
}

type VerifyResult struct {
	Verified bool
	Reason   string
	Invoice  *Invoice
}

// VerifyTransaction checks a hash the customer submitted. A malformed hash
// leaves the invoice untouched.
func (s *Service) VerifyTransaction(ctx context.Context, id, hash string) (*VerifyResult, error) {
	inv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	hash = strings.TrimSpace(hash)
	coin, _ := LookupCoin(inv.Coin)
	if !coin.ValidHash(hash) {
		return &VerifyResult{Reason: fmt.Sprintf("invalid transaction hash format for %s", inv.Coin), Invoice: inv}, nil
	}

	switch inv.Status {
	case StatusConfirmed:
		return &VerifyResult{Verified: true, Invoice: inv}, nil
	case StatusExpired:
		return &VerifyResult{Reason: ReasonExpired, Invoice: inv}, nil
	}

	now := s.now().UTC()
	var (
		obs       Observation
		lookupErr error
	)
	if !inv.expire(now) {
		obs, lookupErr = s.verifier.LookupTransaction(ctx, *inv, hash)
	}

	var prev Status
	updated, err := s.store.Update(ctx, id, func(cur *Invoice) error {
		prev = cur.Status
		if cur.Status.IsTerminal() {
			return nil
		}
		if cur.expire(now) {
			cur.advance(StatusExpired)
			cur.FailureReason = ReasonExpired
			return nil
		}
		cur.LastVerified = &now
		switch {
		case lookupErr != nil:
			cur.FailureReason = "transaction lookup failed: " + payments.PublicMessage(lookupErr)
		case !obs.Found:
			cur.FailureReason = "transaction not found for this invoice"
		case obs.Amount.LessThan(cur.TotalAmount):
			cur.FailureReason = fmt.Sprintf("transaction amount %s is below %s %s", obs.Amount.String(), cur.TotalAmount.String(), cur.Coin)
		default:
			// manual: paksa confirmed tanpa tunggu jumlah konfirmasi
			cur.advance(StatusConfirmed)
			cur.TransactionHash = hash
			cur.VerifiedBy = VerifiedByManual
			cur.FailureReason = ""
			if obs.Confirmations > cur.Confirmations {
				cur.Confirmations = obs.Confirmations
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err)
	}
	s.emitTransition(ctx, prev, updated)

	res := &VerifyResult{Invoice: updated, Verified: updated.Status == StatusConfirmed}
	if !res.Verified {
		res.Reason = updated.FailureReason
	}
	return res, nil
}

func (s *Service) storeErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return payments.NewError(payments.KindNotFound, payments.Coinremitter, "Invoice not found", err)
	}
	return fmt.Errorf("update invoice: %w", err)
}

func (s *Service) emitTransition(ctx context.Context, prev Status, inv *Invoice) {
	if prev == inv.Status {
		return
	}
	s.l.Info("invoice status changed",
		zap.String("invoice_id", inv.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(inv.Status)),
	)
	switch inv.Status {
	case StatusConfirmed:
		s.emit(ctx, events.EventPaymentConfirmed, inv)
	case StatusExpired:
		s.emit(ctx, events.EventPaymentExpired, inv)
	}
}

func (s *Service) emit(ctx context.Context, eventType string, inv *Invoice) {
	s.events.Emit(ctx, eventType, events.PaymentPayload{
		Provider:      string(payments.Coinremitter),
		ReferenceID:   inv.ID,
		OrderID:       inv.OrderID,
		SessionID:     inv.SessionID,
		Status:        string(inv.Status),
		AmountCents:   inv.FiatAmount.Shift(2).IntPart(),
		Currency:      inv.FiatCurrency,
		Coin:          inv.Coin,
		TransactionID: inv.TransactionHash,
		Reason:        inv.FailureReason,
	})
}
