package sweeper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/events"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *cart.RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	carts := cart.NewRedisStore(rdb)
	return New(carts, rdb, "cartsweeper"), carts, mr
}

func message(eventID, eventType string, p events.PaymentPayload) kafkago.Message {
	env := events.Envelope{
		EventID:      eventID,
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "storefront",
		Payload:      kafkax.MustMarshal(p),
	}
	return kafkago.Message{
		Key:     events.PartitionKey(p.ReferenceID),
		Value:   kafkax.MustMarshal(env),
		Headers: kafkax.EventHeaders(eventType, 1),
	}
}

func fill(t *testing.T, carts cart.Store, sid string) {
	require.NoError(t, carts.Replace(context.Background(), sid, []cart.Item{{ID: "1", Name: "Bronton", Price: "3000", Quantity: 1}}))
}

func TestHandle_ConfirmedClearsCart(t *testing.T) {
	svc, carts, mr := setup(t)
	ctx := context.Background()
	fill(t, carts, "sess-1")
	fill(t, carts, "sess-2")

	err := svc.HandlePaymentEvent(ctx, message("evt-1", events.EventPaymentConfirmed, events.PaymentPayload{
		Provider: "coinremitter", ReferenceID: "inv-1", SessionID: "sess-1", Status: "confirmed",
	}))
	require.NoError(t, err)

	items, err := carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, items)
	other, err := carts.Get(ctx, "sess-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	assert.True(t, mr.Exists(fmt.Sprintf(redisx.KeyDedup, "cartsweeper", "evt-1")))
}

func TestHandle_CapturedClearsCart(t *testing.T) {
	svc, carts, _ := setup(t)
	ctx := context.Background()
	fill(t, carts, "sess-1")

	require.NoError(t, svc.HandlePaymentEvent(ctx, message("evt-2", events.EventPaymentCaptured, events.PaymentPayload{
		Provider: "paypal", ReferenceID: "ORDER-1", SessionID: "sess-1", Status: "succeeded",
	})))
	items, _ := carts.Get(ctx, "sess-1")
	assert.Empty(t, items)
}

func TestHandle_IgnoresOtherEvents(t *testing.T) {
	svc, carts, mr := setup(t)
	ctx := context.Background()
	fill(t, carts, "sess-1")

	for _, et := range []string{events.EventPaymentCreated, events.EventPaymentExpired} {
		require.NoError(t, svc.HandlePaymentEvent(ctx, message("evt-"+et, et, events.PaymentPayload{ReferenceID: "inv-1", SessionID: "sess-1"})))
	}
	items, _ := carts.Get(ctx, "sess-1")
	assert.Len(t, items, 1)
	for _, et := range []string{events.EventPaymentCreated, events.EventPaymentExpired} {
		assert.False(t, mr.Exists(fmt.Sprintf(redisx.KeyDedup, "cartsweeper", "evt-"+et)))
	}
}

func TestHandle_DuplicateEventIsSkipped(t *testing.T) {
	svc, carts, _ := setup(t)
	ctx := context.Background()
	m := message("evt-3", events.EventPaymentConfirmed, events.PaymentPayload{ReferenceID: "inv-1", SessionID: "sess-1"})

	require.NoError(t, svc.HandlePaymentEvent(ctx, m))
	// shopper fills a new cart after paying; a redelivery must not wipe it
	fill(t, carts, "sess-1")
	require.NoError(t, svc.HandlePaymentEvent(ctx, m))

	items, _ := carts.Get(ctx, "sess-1")
	assert.Len(t, items, 1)
}

func TestHandle_MalformedIsCommitted(t *testing.T) {
	svc, _, _ := setup(t)
	err := svc.HandlePaymentEvent(context.Background(), kafkago.Message{Value: []byte("{not json")})
	assert.NoError(t, err)
}

type failingStore struct{ cart.Store }

func (failingStore) Clear(context.Context, string) error { return errors.New("redis down") }

func TestHandle_ClearFailureReleasesDedup(t *testing.T) {
	svc, _, mr := setup(t)
	svc.Carts = failingStore{}
	m := message("evt-4", events.EventPaymentConfirmed, events.PaymentPayload{ReferenceID: "inv-1", SessionID: "sess-1"})

	err := svc.HandlePaymentEvent(context.Background(), m)
	require.Error(t, err)
	assert.False(t, mr.Exists(fmt.Sprintf(redisx.KeyDedup, "cartsweeper", "evt-4")))
}
