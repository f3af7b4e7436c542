package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumea-beauty/storefront/internal/domain/cart"
)

func newTestStorage(t *testing.T, ttl time.Duration) (*Storage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewWithClient(client, ttl), mr
}

func TestGetSetDelete(t *testing.T) {
	s, _ := newTestStorage(t, 0)
	ctx := context.Background()

	_, err := s.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, cart.ErrNotFound)

	require.NoError(t, s.Set(ctx, "sess-1", []byte(`[{"quantity":1}]`)))
	v, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, `[{"quantity":1}]`, string(v))

	require.NoError(t, s.Delete(ctx, "sess-1"))
	_, err = s.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestKeysArePrefixed(t *testing.T) {
	s, mr := newTestStorage(t, 0)

	require.NoError(t, s.Set(context.Background(), "sess-1", []byte(`[]`)))
	assert.True(t, mr.Exists("storefront:cart:sess-1"))
}

func TestTTLRefreshOnSet(t *testing.T) {
	s, mr := newTestStorage(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "sess-1", []byte(`[]`)))
	assert.Equal(t, time.Hour, mr.TTL("storefront:cart:sess-1"))

	// Expiry drops the cart, reading as not found.
	mr.FastForward(2 * time.Hour)
	_, err := s.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestPing(t *testing.T) {
	s, mr := newTestStorage(t, 0)

	assert.NoError(t, s.Ping(context.Background()))
	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}
