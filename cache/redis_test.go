package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/visionkit/config"
)

func newTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewResultCache(&config.RedisConfig{Addr: mr.Addr(), TTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestResultCache_GetSet(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	got, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "abc", []byte{0x89, 'P', 'N', 'G'}))

	got, err = c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got)

	assert.True(t, mr.Exists("rembg:abc"))
	assert.Equal(t, time.Minute, mr.TTL("rembg:abc"))
}

func TestResultCache_Expired(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_Unreachable(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	_, err := c.Get(ctx, "k")
	assert.Error(t, err)
}
