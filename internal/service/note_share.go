package service

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/cache"
	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/internal/dto"
	"github.com/haierkeys/fast-note-share-service/pkg/code"
	"github.com/haierkeys/fast-note-share-service/pkg/util"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// resolveTimeout 合并查询的最长执行时间
const resolveTimeout = 10 * time.Second

// ResolveByToken 通过分享 Token 获取公开笔记
func (s *noteService) ResolveByToken(ctx context.Context, token string) (*dto.NoteDTO, error) {
	return s.resolve(ctx, cache.KindToken, token)
}

// ResolveBySlug 通过自定义短链获取公开笔记
func (s *noteService) ResolveBySlug(ctx context.Context, slug string) (*dto.NoteDTO, error) {
	if !util.IsValidSlug(slug) {
		shareResolveTotal.WithLabelValues(string(cache.KindSlug), "miss").Inc()
		return nil, code.ErrorShareNotFound
	}
	return s.resolve(ctx, cache.KindSlug, slug)
}

// resolve coalesces concurrent lookups of the same address and records a view on success
// resolve 合并同一地址的并发查询，成功后记录一次访问
func (s *noteService) resolve(ctx context.Context, kind cache.Kind, key string) (*dto.NoteDTO, error) {
	start := time.Now()
	defer func() {
		shareResolveSeconds.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}()

	if key == "" {
		shareResolveTotal.WithLabelValues(string(kind), "miss").Inc()
		return nil, code.ErrorShareNotFound
	}

	// 合并后的查询不随任一调用方取消，每个调用方只等待自己的 ctx
	ch := s.sf.DoChan(string(kind)+":"+key, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		return s.lookup(lookupCtx, kind, key)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		shareResolveTotal.WithLabelValues(string(kind), "error").Inc()
		return nil, errors.Wrap(ctx.Err(), "resolve shared note")
	case res = <-ch:
	}
	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			shareResolveTotal.WithLabelValues(string(kind), "miss").Inc()
			return nil, code.ErrorShareNotFound
		}
		shareResolveTotal.WithLabelValues(string(kind), "error").Inc()
		return nil, errors.Wrap(err, "resolve shared note")
	}

	note := v.(*domain.Note)
	shareResolveTotal.WithLabelValues(string(kind), "hit").Inc()
	s.views.Record(note.ID)
	return s.domainToDTO(note), nil
}

// lookup tries the cached id first and accepts it only if the row is still public
// under the same address; otherwise it queries by address with is_public in the
// same statement.
// lookup 优先使用缓存的 ID，但仅当记录仍以同一地址公开时才采用；否则按地址查询（is_public 在同一语句中判断）
func (s *noteService) lookup(ctx context.Context, kind cache.Kind, key string) (*domain.Note, error) {
	if id, ok := s.cache.GetNoteID(ctx, kind, key); ok {
		note, err := s.noteRepo.GetByID(ctx, id, 0)
		if err == nil && addressMatches(note, kind, key) {
			return note, nil
		}
		s.cache.Invalidate(ctx, kind, key)
	}

	var (
		note *domain.Note
		err  error
	)
	if kind == cache.KindSlug {
		note, err = s.noteRepo.GetPublicBySlug(ctx, key)
	} else {
		note, err = s.noteRepo.GetPublicByToken(ctx, key)
	}
	if err != nil {
		return nil, err
	}
	s.cache.SetNoteID(ctx, kind, key, note.ID)
	return note, nil
}

// addressMatches 判断笔记当前是否仍以该地址公开
func addressMatches(n *domain.Note, kind cache.Kind, key string) bool {
	if n == nil || !n.IsPublic() {
		return false
	}
	if kind == cache.KindSlug {
		return n.CustomSlug != nil && *n.CustomSlug == key
	}
	return n.Sharing.Token() == key
}

// viewBuffer aggregates public views in memory and writes the increments on a
// fixed interval and once more on shutdown.
// viewBuffer 在内存中聚合公开访问计数，定时落库，关闭时再写入一次
type viewBuffer struct {
	flushFn func(context.Context, map[string]int64) error
	logger  *zap.Logger

	mu       sync.Mutex
	counts   map[string]int64
	ticker   *time.Ticker
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newViewBuffer(flushFn func(context.Context, map[string]int64) error, interval time.Duration, logger *zap.Logger) *viewBuffer {
	b := &viewBuffer{
		flushFn: flushFn,
		logger:  logger,
		counts:  make(map[string]int64),
		ticker:  time.NewTicker(interval),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go b.loop()
	return b
}

// Record 记录一次访问
func (b *viewBuffer) Record(noteID string) {
	b.mu.Lock()
	b.counts[noteID]++
	b.mu.Unlock()
}

func (b *viewBuffer) loop() {
	defer close(b.doneCh)
	for {
		select {
		case <-b.ticker.C:
			b.flush()
		case <-b.stopCh:
			b.flush()
			return
		}
	}
}

// flush 将内存中的增量写入数据库
func (b *viewBuffer) flush() {
	b.mu.Lock()
	if len(b.counts) == 0 {
		b.mu.Unlock()
		return
	}
	pending := b.counts
	b.counts = make(map[string]int64)
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.flushFn(ctx, pending); err != nil {
		b.logger.Error("failed to flush share view counts", zap.Int("notes", len(pending)), zap.Error(err))
	}
}

// Shutdown 停止循环并等待最后一次写入完成
func (b *viewBuffer) Shutdown(ctx context.Context) error {
	b.stopOnce.Do(func() {
		b.ticker.Stop()
		close(b.stopCh)
	})

	select {
	case <-b.doneCh:
		b.logger.Info("share view flush loop stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("share view flush loop shutdown timeout, some counts might not be written")
		return ctx.Err()
	}
}
