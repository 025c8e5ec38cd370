// Package workerpool runs fire-and-forget jobs on a bounded set of goroutines
// Package workerpool 在有限数量的协程上执行异步任务
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed Worker Pool 已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
)

// Config Worker Pool 配置
type Config struct {
	MaxWorkers int // 最大并发 worker 数量，默认 8
	QueueSize  int // 任务队列大小，默认 256
}

func DefaultConfig() Config {
	return Config{MaxWorkers: 8, QueueSize: 256}
}

type job struct {
	ctx  context.Context
	name string
	fn   func(context.Context) error
	done chan error
}

// Pool 管理 goroutine 生命周期的 Worker Pool
type Pool struct {
	logger *zap.Logger
	jobs   chan job
	wg     sync.WaitGroup
	active atomic.Int64

	mu     sync.RWMutex
	closed bool
}

func New(cfg Config, logger *zap.Logger) *Pool {
	def := DefaultConfig()
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = def.MaxWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{logger: logger, jobs: make(chan job, cfg.QueueSize)}
	for i := 0; i < cfg.MaxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	p.active.Add(1)
	defer p.active.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker pool job panic", zap.String("job", j.name), zap.Any("panic", r), zap.Stack("stack"))
			if j.done != nil {
				j.done <- errors.New("job panicked")
			}
		}
	}()

	err := j.ctx.Err()
	if err == nil {
		err = j.fn(j.ctx)
	}
	if err != nil {
		p.logger.Warn("worker pool job failed", zap.String("job", j.name), zap.Error(err))
	}
	if j.done != nil {
		j.done <- err
	}
}

func (p *Pool) enqueue(j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}
	select {
	case p.jobs <- j:
		return nil
	default:
		return ErrWorkerPoolFull
	}
}

// SubmitAsync queues fn without waiting. The job keeps ctx's values but not its
// cancellation, so it outlives the HTTP request that queued it.
// SubmitAsync 异步提交任务；任务保留 ctx 的值但不继承其取消，可在请求结束后继续执行
func (p *Pool) SubmitAsync(ctx context.Context, name string, fn func(context.Context) error) error {
	return p.enqueue(job{ctx: context.WithoutCancel(ctx), name: name, fn: fn})
}

// Submit queues fn and waits for its result
// Submit 提交任务并等待结果
func (p *Pool) Submit(ctx context.Context, name string, fn func(context.Context) error) error {
	done := make(chan error, 1)
	if err := p.enqueue(job{ctx: ctx, name: name, fn: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveCount 当前执行中的任务数
func (p *Pool) ActiveCount() int64 {
	return p.active.Load()
}

// Shutdown stops accepting jobs and drains the queue
// Shutdown 停止接收任务并排空队列
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timeout")
		return ctx.Err()
	}
}
