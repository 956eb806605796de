package coinremitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// maxCASRetries bounds optimistic retries when another writer touches the key.
const maxCASRetries = 10

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func invoiceKey(id string) string { return fmt.Sprintf(redisx.KeyInvoice, id) }

func (s *RedisStore) Create(ctx context.Context, inv *Invoice) error {
	b, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal invoice: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, invoiceKey(inv.ID), b, redisx.TTLInvoice).Result()
	if err != nil {
		return fmt.Errorf("save invoice: %w", err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Invoice, error) {
	b, err := s.rdb.Get(ctx, invoiceKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return decodeInvoice(b)
}

// Update: WATCH key -> GET -> fn -> MULTI SET EXEC. Kalau key berubah di tengah
// jalan EXEC gagal (TxFailedErr) dan kita ulang dari awal.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(inv *Invoice) error) (*Invoice, error) {
	key := invoiceKey(id)
	var out *Invoice

	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		cur, err := decodeInvoice(b)
		if err != nil {
			return err
		}
		if err := fn(cur); err != nil {
			return err
		}
		nb, err := json.Marshal(cur)
		if err != nil {
			return fmt.Errorf("marshal invoice: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, nb, redisx.TTLInvoice)
			return nil
		})
		if err == nil {
			out = cur
		}
		return err
	}

	for i := 0; i < maxCASRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("update invoice %s: too much contention", id)
}

func decodeInvoice(b []byte) (*Invoice, error) {
	var inv Invoice
	if err := json.Unmarshal(b, &inv); err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}
	return &inv, nil
}
