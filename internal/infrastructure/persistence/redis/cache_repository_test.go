package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestClient connects to PATISSERIE_TEST_REDIS_ADDR or skips.
func newTestClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	addr := os.Getenv("PATISSERIE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PATISSERIE_TEST_REDIS_ADDR not set")
	}

	client := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: []string{addr}})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCacheRepository(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	cache := NewCacheRepository(client, "test:"+uuid.NewString()+":", zap.NewNop())

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	ok, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cache.Delete(ctx, "k"))
	ok, err = cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
