package service

import (
	"context"
	"sync"
	"testing"

	"github.com/haierkeys/fast-note-share-service/internal/cache"
	"github.com/haierkeys/fast-note-share-service/internal/dao"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newTestDao(t *testing.T) *dao.Dao {
	t.Helper()
	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{Type: "sqlite", Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	d := dao.New(db, true, zap.NewNop())
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// mapCache 内存版分享缓存，记录命中与失效
type mapCache struct {
	mu          sync.Mutex
	entries     map[string]string
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) GetNoteID(_ context.Context, kind cache.Kind, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[cache.Key("", kind, key)]
	return id, ok
}

func (c *mapCache) SetNoteID(_ context.Context, kind cache.Kind, key, noteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cache.Key("", kind, key)] = noteID
}

func (c *mapCache) Invalidate(_ context.Context, kind cache.Kind, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		full := cache.Key("", kind, k)
		delete(c.entries, full)
		c.invalidated = append(c.invalidated, full)
	}
}

func (c *mapCache) Close() error { return nil }
