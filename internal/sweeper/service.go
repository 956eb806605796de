// Package sweeper empties a shopper's cart once their payment is settled,
// for checkouts that finish without the browser returning to /success.
package sweeper

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/events"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Service struct {
	Carts       cart.Store
	Redis       *redis.Client
	ServiceName string
	l           *zap.Logger
}

func New(carts cart.Store, rdb *redis.Client, service string) *Service {
	return &Service{Carts: carts, Redis: rdb, ServiceName: service, l: zap.L().Named("sweeper")}
}

// settled: event yang artinya uang sudah diterima
func settled(eventType string) bool {
	return eventType == events.EventPaymentConfirmed || eventType == events.EventPaymentCaptured
}

// HandlePaymentEvent dipasang sebagai handler consumer. Returning an error
// leaves the offset uncommitted so the event is redelivered.
func (s *Service) HandlePaymentEvent(ctx context.Context, m kafkago.Message) error {
	// 1) filter murah lewat header sebelum decode
	if h := kafkax.Header(m, kafkax.HeaderEventType); h != "" && !settled(h) {
		return nil
	}

	// 2) decode envelope
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan rusak tidak akan pernah sukses; commit saja
		s.l.Warn("drop malformed event", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if !settled(env.EventType) {
		return nil
	}
	p, err := kafkax.UnwrapPayload[events.PaymentPayload](env.Payload)
	if err != nil {
		s.l.Warn("drop malformed payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	if p.SessionID == "" {
		return nil
	}

	// 3) dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	first, err := redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !first {
		return nil
	}

	// 4) kosongkan cart
	if err := s.Carts.Clear(ctx, p.SessionID); err != nil {
		// lepas dedup key supaya redelivery bisa coba lagi
		_ = s.Redis.Del(ctx, dkey).Err()
		return fmt.Errorf("clear cart %s: %w", p.SessionID, err)
	}
	s.l.Info("cart cleared",
		zap.String("event_type", env.EventType),
		zap.String("provider", p.Provider),
		zap.String("reference_id", p.ReferenceID),
		zap.String("session_id", p.SessionID),
	)
	return nil
}
