package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCacheTest(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rc := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "godnsweb:")
	t.Cleanup(func() {
		rc.Close()
		mr.Close()
	})
	return rc, mr
}

func exerciseCache(t *testing.T, c Cache) {
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	ok, err := c.Exists(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "a", "b", "never-set"))

	ok, err = c.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, "session:s1:view:zones", []byte("{}"), time.Minute))
	require.NoError(t, c.Set(ctx, "session:s1:rows:zone:example.com", []byte("{}"), time.Minute))
	require.NoError(t, c.Set(ctx, "session:s2:view:zones", []byte("{}"), time.Minute))

	require.NoError(t, c.DeletePrefix(ctx, "session:s1:"))

	ok, err = c.Exists(ctx, "session:s1:view:zones")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = c.Exists(ctx, "session:s1:rows:zone:example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = c.Exists(ctx, "session:s2:view:zones")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	exerciseCache(t, c)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisCache(t *testing.T) {
	rc, _ := newRedisCacheTest(t)

	exerciseCache(t, rc)
}

func TestRedisCache_Expiry(t *testing.T) {
	rc, mr := newRedisCacheTest(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "pkce", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := rc.Get(ctx, "pkce")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisCache_PrefixesKeys(t *testing.T) {
	rc, mr := newRedisCacheTest(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "session:abc:godns_state", []byte("s1"), time.Minute))

	assert.True(t, mr.Exists("godnsweb:session:abc:godns_state"))
	assert.False(t, mr.Exists("session:abc:godns_state"))

	require.NoError(t, rc.Delete(ctx, "session:abc:godns_state"))
	assert.False(t, mr.Exists("godnsweb:session:abc:godns_state"))
}

func TestRedisCache_DeletePrefixIsLiteral(t *testing.T) {
	rc, mr := newRedisCacheTest(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "view*", []byte("1"), time.Minute))
	require.NoError(t, rc.Set(ctx, "viewer", []byte("1"), time.Minute))
	require.NoError(t, mr.Set("other:view*", "foreign"))

	require.NoError(t, rc.DeletePrefix(ctx, "view*"))

	assert.False(t, mr.Exists("godnsweb:view*"))
	assert.True(t, mr.Exists("godnsweb:viewer"))
	assert.True(t, mr.Exists("other:view*"))
}
