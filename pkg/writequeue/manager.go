// Package writequeue serializes write operations per owner so that concurrent
// edits from one account never contend for the same SQLite write lock.
// Package writequeue 按所有者串行化写操作，避免同一账号并发写入 SQLite 时出现 "database is locked"
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 所有者写队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 写队列管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 写操作超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	QueueCapacity int           // 每个所有者的队列容量，默认 100
	WriteTimeout  time.Duration // 单次写操作等待上限，默认 30 秒
	IdleTimeout   time.Duration // 空闲队列回收时间，默认 10 分钟
}

func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

type ownerQueue struct {
	ch       chan writeOp
	lastUsed atomic.Int64
	stopCh   chan struct{}
	done     chan struct{}
}

// Manager 管理所有者的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[int64]*ownerQueue
	closed bool

	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

// New creates a manager; zero config fields take their defaults.
// New 创建写队列管理器，未设置的配置项使用默认值
func New(cfg Config, logger *zap.Logger) *Manager {
	def := DefaultConfig()
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = def.QueueCapacity
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		config:      cfg,
		logger:      logger,
		queues:      make(map[int64]*ownerQueue),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// Execute runs fn after every earlier write of the same owner has finished.
// Writes of different owners run concurrently.
// Execute 在同一所有者之前的写操作完成后执行 fn，不同所有者之间并行
func (m *Manager) Execute(ctx context.Context, uid int64, fn func() error) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrWriteQueueClosed
	}
	q, ok := m.queues[uid]
	if !ok {
		q = &ownerQueue{
			ch:     make(chan writeOp, m.config.QueueCapacity),
			stopCh: make(chan struct{}),
			done:   make(chan struct{}),
		}
		m.queues[uid] = q
		go m.worker(q)
	}
	q.lastUsed.Store(time.Now().UnixNano())

	result := make(chan error, 1)
	select {
	case q.ch <- writeOp{ctx: ctx, fn: fn, result: result}:
	default:
		m.mu.Unlock()
		return ErrWriteQueueFull
	}
	m.mu.Unlock()

	timer := time.NewTimer(m.config.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	}
}

func (m *Manager) worker(q *ownerQueue) {
	defer close(q.done)
	for {
		select {
		case op := <-q.ch:
			m.run(op)
		case <-q.stopCh:
			// 停止前处理完已入队的操作
			for {
				select {
				case op := <-q.ch:
					m.run(op)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) run(op writeOp) {
	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("write queue operation panic", zap.Any("panic", r), zap.Stack("stack"))
			op.result <- errors.New("write operation panicked")
		}
	}()
	op.result <- op.fn()
}

func (m *Manager) cleanupLoop() {
	defer close(m.cleanupDone)
	interval := m.config.IdleTimeout / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) cleanupIdle() {
	cutoff := time.Now().Add(-m.config.IdleTimeout).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, q := range m.queues {
		if q.lastUsed.Load() < cutoff && len(q.ch) == 0 {
			close(q.stopCh)
			delete(m.queues, uid)
			m.logger.Debug("write queue released", zap.Int64("uid", uid))
		}
	}
}

// QueueCount 当前活跃的所有者队列数
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// Shutdown drains pending writes and stops every worker
// Shutdown 排空待执行的写操作并停止所有 worker
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	queues := make([]*ownerQueue, 0, len(m.queues))
	for uid, q := range m.queues {
		close(q.stopCh)
		queues = append(queues, q)
		delete(m.queues, uid)
	}
	m.mu.Unlock()
	close(m.stopCleanup)

	for _, q := range queues {
		select {
		case <-q.done:
		case <-ctx.Done():
			m.logger.Warn("write queue shutdown timeout")
			return ctx.Err()
		}
	}
	<-m.cleanupDone
	return nil
}
