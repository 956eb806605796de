package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	items, err := s.Get(ctx, "sess-a")
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, s.Replace(ctx, "sess-a", []Item{{ID: "1", Name: "Bronton", Price: "3000", Quantity: 1}}))
	require.NoError(t, s.Replace(ctx, "sess-b", []Item{{ID: "2", Name: "E-BMX", Price: "2000", Quantity: 2}}))

	// sessions are isolated
	a, err := s.Get(ctx, "sess-a")
	require.NoError(t, err)
	require.Len(t, a, 1)
	assert.Equal(t, "Bronton", a[0].Name)

	b, err := s.Get(ctx, "sess-b")
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, 2, b[0].Quantity)

	// replace is wholesale
	require.NoError(t, s.Replace(ctx, "sess-a", []Item{}))
	a, err = s.Get(ctx, "sess-a")
	require.NoError(t, err)
	assert.Empty(t, a)

	require.NoError(t, s.Clear(ctx, "sess-b"))
	b, err = s.Get(ctx, "sess-b")
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	s, _ := setupRedisStore(t)
	storeContract(t, s)
}

func TestRedisStore_SetsTTL(t *testing.T) {
	s, mr := setupRedisStore(t)
	require.NoError(t, s.Replace(context.Background(), "sess", []Item{{ID: "1", Price: "1", Quantity: 1}}))
	assert.True(t, mr.TTL(cartKey("sess")) > 0)
}

func TestRedisStore_InvalidJSON(t *testing.T) {
	s, mr := setupRedisStore(t)
	require.NoError(t, mr.Set(cartKey("sess"), "[{"))
	_, err := s.Get(context.Background(), "sess")
	require.ErrorContains(t, err, "unmarshal cart")
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, "sess", []Item{{ID: "1", Price: "1", Quantity: 1}}))
	got, _ := s.Get(ctx, "sess")
	got[0].Quantity = 99
	again, _ := s.Get(ctx, "sess")
	assert.Equal(t, 1, again[0].Quantity)
}
