package events

import (
	"context"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"time"
)

type Emitter interface {
	Emit(ctx context.Context, eventType string, p PaymentPayload)
}

type publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) bool
}

// KafkaEmitter bungkus payload ke Envelope v1 lalu publish lewat producer async.
type KafkaEmitter struct {
	producer publisher
	service  string
	l        *zap.Logger
}

func NewKafkaEmitter(p publisher, service string) *KafkaEmitter {
	return &KafkaEmitter{producer: p, service: service, l: zap.L().Named("events")}
}

func (e *KafkaEmitter) Emit(ctx context.Context, eventType string, p PaymentPayload) {
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: p.ReferenceID,
		Payload:       kafkax.MustMarshal(p),
	}
	if ok := e.producer.Publish(PartitionKey(p.ReferenceID), kafkax.MustMarshal(env), kafkax.EventHeaders(eventType, 1)...); !ok {
		e.l.Warn("Producer closed, event dropped",
			zap.String("event_type", eventType),
			zap.String("reference_id", p.ReferenceID),
		)
	}
}

// Nop dipakai kalau KAFKA_BROKERS kosong.
type Nop struct{}

func (Nop) Emit(context.Context, string, PaymentPayload) {}
