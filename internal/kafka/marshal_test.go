package kafka

import (
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHeaders(t *testing.T) {
	m := kafka.Message{Headers: EventHeaders("PaymentConfirmed", 1)}
	assert.Equal(t, "PaymentConfirmed", Header(m, HeaderEventType))
	assert.Equal(t, "1", Header(m, HeaderEventVersion))
	assert.Equal(t, "", Header(m, "x-missing"))
}

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		ID    string `json:"id"`
		Cents int64  `json:"cents"`
	}
	raw := json.RawMessage(MustMarshal(payload{ID: "inv-1", Cents: 13000}))

	p, err := UnwrapPayload[payload](raw)
	require.NoError(t, err)
	assert.Equal(t, payload{ID: "inv-1", Cents: 13000}, p)

	_, err = UnwrapPayload[payload](json.RawMessage(`{"cents":"x"}`))
	assert.ErrorContains(t, err, "decode payload")
}

func TestMustMarshal_Panics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
}

func TestProducer_PublishAfterClose(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "storefront.payments", 1)
	assert.True(t, p.Publish([]byte("k"), []byte("v")))
	p.Close()
	p.Close()
	assert.False(t, p.Publish([]byte("k"), []byte("v")))
}
