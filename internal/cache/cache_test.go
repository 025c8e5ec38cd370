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

func TestKey(t *testing.T) {
	assert.Equal(t, "fns:share:token:abc", Key("fns:", KindToken, "abc"))
	assert.Equal(t, "share:slug:my-note", Key("", KindSlug, "my-note"))
}

func TestNoopCache(t *testing.T) {
	var c ShareCache = NoopCache{}
	c.SetNoteID(context.Background(), KindToken, "abc", "id")
	_, ok := c.GetNoteID(context.Background(), KindToken, "abc")
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}

func TestNewRedisCacheInvalidURL(t *testing.T) {
	_, err := NewRedisCache("not-a-url", "", time.Minute, nil)
	assert.ErrorContains(t, err, "invalid redis URL")
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache("redis://"+mr.Addr()+"/0", "test:", time.Minute, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache(t *testing.T) {
	mr, c := newMiniRedis(t)
	ctx := context.Background()

	_, ok := c.GetNoteID(ctx, KindSlug, "s")
	assert.False(t, ok)

	c.SetNoteID(ctx, KindSlug, "s", "note-1")
	assert.True(t, mr.Exists(Key("test:", KindSlug, "s")))
	got, err := mr.Get("test:share:slug:s")
	require.NoError(t, err)
	assert.Equal(t, "note-1", got)

	id, ok := c.GetNoteID(ctx, KindSlug, "s")
	assert.True(t, ok)
	assert.Equal(t, "note-1", id)

	// 同名 Token 与短链互不影响
	_, ok = c.GetNoteID(ctx, KindToken, "s")
	assert.False(t, ok)

	c.Invalidate(ctx, KindSlug, "s", "")
	_, ok = c.GetNoteID(ctx, KindSlug, "s")
	assert.False(t, ok)
	assert.False(t, mr.Exists(Key("test:", KindSlug, "s")))
}

func TestRedisCacheTTL(t *testing.T) {
	mr, c := newMiniRedis(t)
	ctx := context.Background()

	c.SetNoteID(ctx, KindToken, "tok", "note-1")
	assert.Equal(t, time.Minute, mr.TTL(Key("test:", KindToken, "tok")))

	mr.FastForward(time.Minute + time.Second)
	_, ok := c.GetNoteID(ctx, KindToken, "tok")
	assert.False(t, ok)
}

func TestRedisCacheDefaultTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheWithClient(client, "", 0, nil)
	t.Cleanup(func() { _ = c.Close() })

	c.SetNoteID(context.Background(), KindSlug, "s", "note-1")
	assert.Equal(t, DefaultTTL, mr.TTL("share:slug:s"))
}

func TestRedisCacheServerDown(t *testing.T) {
	mr, c := newMiniRedis(t)
	ctx := context.Background()
	c.SetNoteID(ctx, KindSlug, "s", "note-1")

	// 服务不可用时按未命中处理
	addr := mr.Addr()
	mr.Close()
	_, ok := c.GetNoteID(ctx, KindSlug, "s")
	assert.False(t, ok)
	c.Invalidate(ctx, KindSlug, "s")

	_, err := NewRedisCache("redis://"+addr+"/0", "", time.Minute, nil)
	assert.ErrorContains(t, err, "failed to connect to redis")
}
