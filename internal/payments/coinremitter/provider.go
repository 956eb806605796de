package coinremitter

import (
	"context"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
)

// Provider exposes the invoice service through payments.Provider.
// Session.Raw holds the *Invoice; Confirmation.Raw holds the *VerifyResult.
type Provider struct {
	svc *Service
}

func NewProvider(svc *Service) *Provider { return &Provider{svc: svc} }

func (p *Provider) Name() payments.Name { return payments.Coinremitter }

func (p *Provider) Service() *Service { return p.svc }

func (p *Provider) CreatePayment(ctx context.Context, req payments.Request) (*payments.Session, error) {
	amount := req.FiatAmount
	if amount.IsZero() {
		amount = req.Amount.Decimal()
	}
	inv, err := p.svc.CreateInvoice(ctx, CreateInvoiceRequest{
		Amount:    amount,
		Currency:  req.Currency,
		Coin:      req.Coin,
		OrderID:   req.OrderID,
		SessionID: req.SessionID,
	})
	if err != nil {
		return nil, err
	}
	return &payments.Session{
		Provider:    payments.Coinremitter,
		ReferenceID: inv.ID,
		Status:      payments.StatusPending,
		ClientParams: map[string]any{
			"address":   inv.Address,
			"amount":    inv.TotalAmount.String(),
			"coin":      inv.Coin,
			"qr_code":   inv.QRCode,
			"expire_at": inv.ExpireAt,
		},
		Raw: inv,
	}, nil
}

func (p *Provider) ConfirmPayment(ctx context.Context, referenceID string, ev payments.Evidence) (*payments.Confirmation, error) {
	res, err := p.svc.VerifyTransaction(ctx, referenceID, ev.TransactionHash)
	if err != nil {
		return nil, err
	}
	return &payments.Confirmation{
		Provider:      payments.Coinremitter,
		ReferenceID:   referenceID,
		Status:        PaymentStatus(res.Invoice.Status),
		TransactionID: res.Invoice.TransactionHash,
		Detail:        res.Reason,
		Raw:           res,
	}, nil
}

// PaymentStatus maps invoice states onto the provider-neutral status set.
func PaymentStatus(s Status) payments.Status {
	switch s {
	case StatusConfirmed:
		return payments.StatusSucceeded
	case StatusExpired:
		return payments.StatusExpired
	case StatusPending:
		return payments.StatusPending
	default:
		return payments.StatusCreated
	}
}
