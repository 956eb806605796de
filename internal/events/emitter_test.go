package events

import (
	"context"
	"encoding/json"
	"testing"

	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	msgs   []kafkago.Message
	closed bool
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) bool {
	if f.closed {
		return false
	}
	f.msgs = append(f.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
	return true
}

func TestKafkaEmitter_Envelope(t *testing.T) {
	pub := &fakePublisher{}
	em := NewKafkaEmitter(pub, "storefront")

	em.Emit(context.Background(), EventPaymentConfirmed, PaymentPayload{
		Provider:    "coinremitter",
		ReferenceID: "inv-1",
		SessionID:   "sess-1",
		Status:      "confirmed",
	})

	require.Len(t, pub.msgs, 1)
	m := pub.msgs[0]
	assert.Equal(t, "inv-1", string(m.Key))
	assert.Equal(t, EventPaymentConfirmed, kafkax.Header(m, kafkax.HeaderEventType))
	assert.Equal(t, "1", kafkax.Header(m, kafkax.HeaderEventVersion))

	var env Envelope
	require.NoError(t, json.Unmarshal(m.Value, &env))
	assert.Equal(t, EventPaymentConfirmed, env.EventType)
	assert.Equal(t, "storefront", env.Producer)
	assert.Equal(t, "inv-1", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)

	p, err := kafkax.UnwrapPayload[PaymentPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", p.SessionID)
}

func TestKafkaEmitter_ClosedProducer(t *testing.T) {
	pub := &fakePublisher{closed: true}
	em := NewKafkaEmitter(pub, "storefront")
	assert.NotPanics(t, func() {
		em.Emit(context.Background(), EventPaymentExpired, PaymentPayload{ReferenceID: "inv-2"})
	})
	assert.Empty(t, pub.msgs)
}
