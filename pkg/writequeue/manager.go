// Package writequeue 提供按文档串行化的写入队列
// 同一文档的内容变更与版本提交按 FIFO 顺序执行，不同文档并行
// 保证任一时刻每个文档最多只有一个在途写入
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// 错误定义
var (
	// ErrQueueFull 文档写入队列已满
	ErrQueueFull = errors.New("document write queue is full")
	// ErrManagerClosed 写入队列管理器已关闭
	ErrManagerClosed = errors.New("write queue manager is closed")
	// ErrWriteTimeout 写入等待超时
	ErrWriteTimeout = errors.New("write operation timed out")
)

// Config 写入队列配置
type Config struct {
	// QueueCapacity 单个文档队列容量，默认 256
	QueueCapacity int
	// WriteTimeout 单次写入超时时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 队列空闲回收时间，默认 5 分钟
	IdleTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 256,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   5 * time.Minute,
	}
}

// writeOp 单个写入操作
type writeOp struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// documentQueue 单个文档的串行写入队列
// ops 只由 worker 读取，回收通过 stopCh 通知，任何人不得关闭 ops
type documentQueue struct {
	documentID int64
	ops        chan writeOp
	stopCh     chan struct{}
	lastActive atomic.Int64 // UnixNano
	closed     atomic.Bool
	wg         sync.WaitGroup
}

// Manager 管理所有文档的写入队列
// 每个文档一个队列一个 worker 协程，同文档操作串行，异文档操作并行
type Manager struct {
	config Config
	logger *zap.Logger

	queues sync.Map // documentID(int64) -> *documentQueue

	queueCount atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	cleanupWg sync.WaitGroup
}

// New 创建写入队列管理器
func New(cfg *Config, logger *zap.Logger) *Manager {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config: *cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	return m
}

// Execute 将写入操作提交到对应文档的队列并等待其完成
// 同一 documentID 的操作按提交顺序串行执行
func (m *Manager) Execute(ctx context.Context, documentID int64, fn func(ctx context.Context) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrManagerClosed
	}
	m.mu.RUnlock()

	q := m.getOrCreateQueue(documentID)
	if q == nil {
		return ErrManagerClosed
	}

	opCtx, cancel := context.WithTimeout(ctx, m.config.WriteTimeout)
	defer cancel()

	op := writeOp{
		ctx:  opCtx,
		fn:   fn,
		done: make(chan error, 1),
	}

	select {
	case q.ops <- op:
	default:
		return ErrQueueFull
	}

	select {
	case err := <-op.done:
		return err
	case <-opCtx.Done():
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return ErrWriteTimeout
		}
		return opCtx.Err()
	case <-m.ctx.Done():
		return ErrManagerClosed
	}
}

// getOrCreateQueue 获取或创建文档队列，并启动其 worker
// 已被回收的队列会被新队列替换，管理器关闭后返回 nil
func (m *Manager) getOrCreateQueue(documentID int64) *documentQueue {
	if v, ok := m.queues.Load(documentID); ok {
		q := v.(*documentQueue)
		if !q.closed.Load() {
			q.lastActive.Store(time.Now().UnixNano())
			return q
		}
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()

	q := &documentQueue{
		documentID: documentID,
		ops:        make(chan writeOp, m.config.QueueCapacity),
		stopCh:     make(chan struct{}),
	}
	q.lastActive.Store(time.Now().UnixNano())

	actual, loaded := m.queues.LoadOrStore(documentID, q)
	if loaded {
		existing := actual.(*documentQueue)
		if !existing.closed.Load() {
			existing.lastActive.Store(time.Now().UnixNano())
			return existing
		}
		// 已存在的队列刚被空闲回收，用新队列顶替
		m.queues.Store(documentID, q)
	}

	m.queueCount.Add(1)
	q.wg.Add(1)
	go m.worker(q)

	return q
}

// worker 单文档队列的工作协程，保证串行执行
func (m *Manager) worker(q *documentQueue) {
	defer q.wg.Done()
	defer q.closed.Store(true)

	for {
		select {
		case <-m.ctx.Done():
			m.drainQueue(q)
			return
		case <-q.stopCh:
			m.drainQueue(q)
			return
		case op := <-q.ops:
			q.lastActive.Store(time.Now().UnixNano())
			m.executeOp(op)
		}
	}
}

// executeOp 执行单个写入操作
func (m *Manager) executeOp(op writeOp) {
	var err error
	select {
	case <-op.ctx.Done():
		err = op.ctx.Err()
	default:
		err = op.fn(op.ctx)
	}

	select {
	case op.done <- err:
	default:
	}
}

// drainQueue 执行队列中剩余操作后退出
// 回收与关闭窗口内已入队的操作不丢失
func (m *Manager) drainQueue(q *documentQueue) {
	for {
		select {
		case op := <-q.ops:
			m.executeOp(op)
		default:
			return
		}
	}
}

// cleanupIdleQueues 定期回收空闲的文档队列
func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()

	interval := m.config.IdleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			m.queues.Range(func(key, value any) bool {
				q := value.(*documentQueue)
				idle := time.Duration(now - q.lastActive.Load())
				if idle > m.config.IdleTimeout && len(q.ops) == 0 {
					// 只通知 worker 停止，ops 由 worker 排空后废弃
					if q.closed.CompareAndSwap(false, true) {
						close(q.stopCh)
						m.queues.Delete(key)
						m.queueCount.Add(-1)
						m.logger.Debug("idle document write queue removed",
							zap.Int64("documentID", q.documentID),
							zap.Duration("idle", idle))
					}
				}
				return true
			})
		}
	}
}

// QueueCount 返回当前活跃队列数
func (m *Manager) QueueCount() int64 {
	return m.queueCount.Load()
}

// QueuedCount 返回指定文档队列中等待的操作数
func (m *Manager) QueuedCount(documentID int64) int {
	if v, ok := m.queues.Load(documentID); ok {
		return len(v.(*documentQueue).ops)
	}
	return 0
}

// IsClosed 返回管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Shutdown 关闭管理器，等待所有在途写入完成
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down",
		zap.Int64("queueCount", m.queueCount.Load()))

	// 等待各队列排空在途操作
	waitDone := make(chan struct{})
	go func() {
		for {
			empty := true
			m.queues.Range(func(_, value any) bool {
				if len(value.(*documentQueue).ops) > 0 {
					empty = false
					return false
				}
				return true
			})
			if empty {
				close(waitDone)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()

	select {
	case <-waitDone:
	case <-ctx.Done():
		m.cancel()
		m.cleanupWg.Wait()
		return ctx.Err()
	}

	m.cancel()
	m.cleanupWg.Wait()

	m.queues.Range(func(key, value any) bool {
		q := value.(*documentQueue)
		if q.closed.CompareAndSwap(false, true) {
			close(q.stopCh)
		}
		q.wg.Wait()
		m.queues.Delete(key)
		return true
	})

	m.logger.Info("write queue manager shutdown completed")
	return nil
}
