package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value int `json:"value"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute, "test"), mr
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Value: calls}, nil
	}

	key, err := c.BuildKey(ctx, "report", "1")
	require.NoError(t, err)
	assert.Equal(t, "report:1:1", key)

	var got payload
	hit, err := c.FetchJSON(ctx, key, &got, loader)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, got.Value)

	hit, err = c.FetchJSON(ctx, key, &got, loader)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Bump(ctx))
	key, err = c.BuildKey(ctx, "report", "1")
	require.NoError(t, err)
	assert.Equal(t, "report:1:2", key)
	hit, err = c.FetchJSON(ctx, key, &got, loader)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, got.Value)
}

func TestFetchJSONExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	var got payload
	_, err := c.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) { return payload{Value: 7}, nil })
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("k"))
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	key, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)

	var got payload
	hit, err := c.FetchJSON(ctx, key, &got, func(context.Context) (any, error) { return payload{Value: 3}, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, got.Value)
	assert.NoError(t, c.Bump(ctx))
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Dial(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = Dial(context.Background(), mr.Addr())
	require.Error(t, err)
}

func TestFetchJSONFallsBackWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	ctx := context.Background()

	_, err := c.BuildKey(ctx, "report", "1")
	require.Error(t, err)

	var got payload
	hit, err := c.FetchJSON(ctx, "report:1", &got, func(context.Context) (any, error) { return payload{Value: 5}, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 5, got.Value)
}
