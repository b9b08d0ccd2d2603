package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/accountd/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	require.NoError(t, c.SetWithExpiry(ctx, TokenKey("abc"), "u-1", time.Hour))

	v, err := c.Get(ctx, "token:abc")
	require.NoError(t, err)
	assert.Equal(t, "u-1", v)
	assert.Equal(t, time.Hour, mr.TTL("token:abc"))
}

func TestRedisCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	require.NoError(t, c.SetWithExpiry(ctx, UserKey("u-1"), `{"id":"u-1"}`, time.Hour))

	mr.FastForward(59 * time.Minute)
	_, err := c.Get(ctx, "user:u-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "user:u-1")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := newRedisCache(t)

	_, err := c.Get(context.Background(), "user:none")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestRedisCache_Unavailable(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
	require.NoError(t, c.Ping(ctx))

	mr.Close()

	assert.Error(t, c.Ping(ctx))
	_, err := c.Get(ctx, "user:u-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrCacheMiss)
	assert.Error(t, c.SetWithExpiry(ctx, "user:u-1", "{}", time.Hour))
}

func TestNew(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.IsType(t, NopCache{}, c)

	mr := miniredis.RunT(t)
	c, err = New("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Ping(context.Background()))

	_, err = New("http://nope")
	assert.Error(t, err)
}

func TestNopCache(t *testing.T) {
	ctx := context.Background()
	var c Cache = NopCache{}

	require.NoError(t, c.SetWithExpiry(ctx, "k", "v", time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}
