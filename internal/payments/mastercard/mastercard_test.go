package mastercard

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configured() *Provider {
	return NewProvider(Config{MerchantID: "TESTMERCHANT", Username: "merchant.TESTMERCHANT", Password: "pw", SessionTTL: time.Minute})
}

func TestSessionLifecycle(t *testing.T) {
	p := configured()
	sess, err := p.CreatePayment(context.Background(), payments.Request{Amount: 1000, Currency: "usd", OrderID: "ORDER_1"})
	require.NoError(t, err)
	assert.Regexp(t, `^SESSION[0-9a-f]{32}$`, sess.ReferenceID)
	assert.Equal(t, "TESTMERCHANT", sess.ClientParams["merchant"])
	assert.Equal(t, "10.00", sess.ClientParams["amount"])
	assert.Equal(t, "USD", sess.ClientParams["currency"])

	indicator := sess.ClientParams["resultIndicator"].(string)

	bad, err := p.ConfirmPayment(context.Background(), sess.ReferenceID, payments.Evidence{ResultIndicator: "nope"})
	require.NoError(t, err)
	assert.Equal(t, payments.StatusFailed, bad.Status)

	ok, err := p.ConfirmPayment(context.Background(), sess.ReferenceID, payments.Evidence{ResultIndicator: indicator})
	require.NoError(t, err)
	assert.Equal(t, payments.StatusSucceeded, ok.Status)
	assert.Equal(t, "ORDER_1", ok.TransactionID)
}

func TestExpiredSession(t *testing.T) {
	p := configured()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	sess, err := p.CreatePayment(context.Background(), payments.Request{Amount: 1000})
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)

	c, err := p.ConfirmPayment(context.Background(), sess.ReferenceID, payments.Evidence{ResultIndicator: sess.ClientParams["resultIndicator"].(string)})
	require.NoError(t, err)
	assert.Equal(t, payments.StatusExpired, c.Status)
}

func TestErrors(t *testing.T) {
	p := configured()
	_, err := p.CreatePayment(context.Background(), payments.Request{Amount: 0})
	assert.Equal(t, payments.KindInvalidAmount, payments.KindOf(err))

	_, err = p.ConfirmPayment(context.Background(), "SESSIONunknown", payments.Evidence{ResultIndicator: "x"})
	assert.Equal(t, payments.KindNotFound, payments.KindOf(err))

	_, err = p.ConfirmPayment(context.Background(), "SESSIONunknown", payments.Evidence{})
	assert.Equal(t, payments.KindValidation, payments.KindOf(err))

	missing := NewProvider(Config{MerchantID: "M"})
	_, err = missing.CreatePayment(context.Background(), payments.Request{Amount: 100})
	assert.Equal(t, payments.KindMisconfigured, payments.KindOf(err))
}
