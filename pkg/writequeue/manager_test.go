package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := New(nil, zap.NewNop())
	t.Cleanup(func() {
		_ = m.Shutdown(context.Background())
	})
	return m
}

func TestExecuteReturnsFnError(t *testing.T) {
	m := newTestManager(t)

	wantErr := errors.New("write failed")
	err := m.Execute(context.Background(), 1, func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	err = m.Execute(context.Background(), 1, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

// 同一文档的操作必须严格串行且保持提交顺序
func TestExecuteSerializesPerDocument(t *testing.T) {
	m := newTestManager(t)

	const rounds = 200
	var mu sync.Mutex
	var order []int
	var inFlight atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Execute(context.Background(), 42, func(ctx context.Context) error {
				// 并发度大于 1 说明串行被破坏
				if inFlight.Add(1) > 1 {
					t.Error("concurrent execution on same document")
				}
				defer inFlight.Add(-1)

				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, order, rounds)
}

// 不同文档的操作可以并行
func TestExecuteParallelAcrossDocuments(t *testing.T) {
	m := newTestManager(t)

	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Execute(context.Background(), 1, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started

	// 文档1的操作阻塞时，文档2的操作仍可完成
	done := make(chan error, 1)
	go func() {
		done <- m.Execute(context.Background(), 2, func(ctx context.Context) error {
			return nil
		})
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("cross-document operation blocked by another queue")
	}

	close(release)
	wg.Wait()
}

// 空闲回收后同一文档的写入必须重建队列并正常完成
func TestExecuteAfterIdleCleanup(t *testing.T) {
	m := New(&Config{IdleTimeout: 50 * time.Millisecond}, zap.NewNop())
	t.Cleanup(func() {
		_ = m.Shutdown(context.Background())
	})

	require.NoError(t, m.Execute(context.Background(), 7, func(ctx context.Context) error {
		return nil
	}))

	// 等待清理协程回收空闲队列（清理间隔下限为 1 秒）
	require.Eventually(t, func() bool {
		return m.QueueCount() == 0
	}, 3*time.Second, 20*time.Millisecond)

	err := m.Execute(context.Background(), 7, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), m.QueueCount())
}

// 空闲回收与并发提交交错时不得 panic，也不得丢失写入
func TestExecuteConcurrentWithIdleCleanup(t *testing.T) {
	m := New(&Config{IdleTimeout: time.Millisecond, WriteTimeout: 3 * time.Second}, zap.NewNop())
	t.Cleanup(func() {
		_ = m.Shutdown(context.Background())
	})

	var completed atomic.Int64
	deadline := time.Now().Add(2500 * time.Millisecond)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(docID int64) {
			defer wg.Done()
			for time.Now().Before(deadline) {
				err := m.Execute(context.Background(), docID, func(ctx context.Context) error {
					completed.Add(1)
					return nil
				})
				if err != nil {
					t.Errorf("execute during cleanup: %v", err)
					return
				}
				time.Sleep(time.Millisecond)
			}
		}(int64(g % 2))
	}
	wg.Wait()

	assert.Positive(t, completed.Load())
}

func TestExecuteAfterShutdown(t *testing.T) {
	m := New(nil, zap.NewNop())
	require.NoError(t, m.Shutdown(context.Background()))

	err := m.Execute(context.Background(), 1, func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrManagerClosed)
	assert.True(t, m.IsClosed())
}

func TestQueueCount(t *testing.T) {
	m := newTestManager(t)

	assert.Equal(t, int64(0), m.QueueCount())

	_ = m.Execute(context.Background(), 1, func(ctx context.Context) error { return nil })
	_ = m.Execute(context.Background(), 2, func(ctx context.Context) error { return nil })

	assert.Equal(t, int64(2), m.QueueCount())
}
