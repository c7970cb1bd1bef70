package redis

import (
	"context"
	"testing"

	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/alicebob/miniredis/v2"
	r "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, prefix string) (*KVStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := &clients.RedisClient{Client: r.NewClient(&r.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = client.Client.Close() })

	return NewKVStore(client, prefix), mr
}

func TestKVStore_GetMiss(t *testing.T) {
	s, _ := setupStore(t, "")

	v, ok, err := s.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestKVStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, "shop:")

	require.NoError(t, s.Set(ctx, "orders", `[{"id":"order-1"}]`))

	stored, err := mr.Get("shop:orders")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"order-1"}]`, stored)
	assert.Zero(t, mr.TTL("shop:orders"))

	v, ok, err := s.Get(ctx, "orders")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"order-1"}]`, v)

	require.NoError(t, s.Remove(ctx, "orders"))
	assert.False(t, mr.Exists("shop:orders"))
}

func TestKVStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, "")
	mr.Close()

	_, _, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, e.ErrStoreUnavailable)
	assert.ErrorIs(t, s.Set(ctx, "cart", "{}"), e.ErrStoreUnavailable)
	assert.ErrorIs(t, s.Remove(ctx, "cart"), e.ErrStoreUnavailable)
}
