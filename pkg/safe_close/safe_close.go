// Package safe_close coordinates graceful shutdown of long-running goroutines
// Package safe_close 协调长期运行协程的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts a single close signal to every attached worker and waits for them.
// SafeClose 向所有挂载的 worker 广播一次关闭信号并等待其退出
type SafeClose struct {
	closeSignal chan struct{}
	once        sync.Once
	wg          sync.WaitGroup

	mu  sync.Mutex
	err error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeSignal: make(chan struct{})}
}

// Attach runs fn in its own goroutine. fn must call done when it returns and
// should exit once closeSignal is closed.
// Attach 在独立协程中运行 fn；fn 返回时必须调用 done，收到 closeSignal 后应退出
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	go fn(s.wg.Done, s.closeSignal)
}

// SendCloseSignal closes the signal channel. Only the first call has effect;
// err (if any) is reported by WaitClosed.
// SendCloseSignal 关闭信号通道，仅首次调用生效；err 由 WaitClosed 返回
func (s *SafeClose) SendCloseSignal(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.closeSignal)
	})
}

// CloseSignal exposes the close channel for callers that only need to observe it
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed blocks until every attached worker has called done.
// WaitClosed 阻塞直到所有 worker 调用 done
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
