package workerpool

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

func newTestPool(t *testing.T, cfg *Config) *Pool {
	t.Helper()
	p := New(cfg, zap.NewNop())
	t.Cleanup(func() {
		_ = p.Shutdown(context.Background())
	})
	return p
}

func TestSubmitRunsTask(t *testing.T) {
	p := newTestPool(t, nil)

	var ran atomic.Bool
	err := p.Submit(context.Background(), func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran.Load())
}

func TestSubmitPropagatesError(t *testing.T) {
	p := newTestPool(t, nil)

	wantErr := errors.New("task failed")
	err := p.Submit(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestSubmitAsyncCompletesAllTasks(t *testing.T) {
	p := newTestPool(t, &Config{MaxWorkers: 4, QueueSize: 128})

	const tasks = 100
	var counter atomic.Int64
	var wg sync.WaitGroup
	wg.Add(tasks)

	for i := 0; i < tasks; i++ {
		err := p.SubmitAsync(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			counter.Add(1)
			return nil
		})
		require.NoError(t, err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("async tasks did not complete")
	}
	assert.Equal(t, int64(tasks), counter.Load())
}

func TestConcurrencyBounded(t *testing.T) {
	p := newTestPool(t, &Config{MaxWorkers: 2, QueueSize: 64})

	var active atomic.Int32
	var peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		err := p.SubmitAsync(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			cur := active.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
			return nil
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestSubmitAfterShutdown(t *testing.T) {
	p := New(nil, zap.NewNop())
	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, p.IsClosed())

	err := p.Submit(context.Background(), func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

func TestTaskPanicDoesNotKillWorker(t *testing.T) {
	p := newTestPool(t, &Config{MaxWorkers: 1, QueueSize: 16})

	_ = p.Submit(context.Background(), func(ctx context.Context) error {
		panic("boom")
	})

	// worker 恢复后仍能继续处理任务
	var ran atomic.Bool
	err := p.Submit(context.Background(), func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran.Load())
}
