// Package safe_close provides coordinated shutdown for long-running goroutines
// Package safe_close 提供长期运行 goroutine 的协同关闭能力
package safe_close

import (
	"sync"
)

// SafeClose 协调一组 goroutine 的关闭流程
// Attach 注册的函数会收到关闭信号通道，收到信号后应自行清理并调用 done
type SafeClose struct {
	mu          sync.Mutex
	wg          sync.WaitGroup
	closeSignal chan struct{}
	closed      bool
	err         error
}

// NewSafeClose 创建 SafeClose 实例
func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach 注册一个受管 goroutine
// f 必须在退出前调用 done，并监听 closeSignal
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	done := func() { s.wg.Done() }
	go f(done, s.closeSignal)
}

// SendCloseSignal 发出关闭信号，首个非 nil 错误会被记录并由 WaitClosed 返回
// 重复调用是安全的
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.closeSignal)
}

// CloseSignal 返回关闭信号通道，用于只读监听
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed 阻塞直到所有受管 goroutine 退出，返回触发关闭的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
