package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countTask struct {
	n *atomic.Int64
}

func (t *countTask) Execute(ctx context.Context) error {
	t.n.Add(1)
	return nil
}

func TestPoolExecutesTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	p := NewPool(16, 4)
	p.Start(ctx, wg)

	var n atomic.Int64
	for i := 0; i < 10; i++ {
		require.True(t, p.Submit(&countTask{n: &n}))
	}
	cancel()
	wg.Wait()
	require.Equal(t, int64(10), n.Load())
}

type blockTask struct {
	release chan struct{}
}

func (t *blockTask) Execute(ctx context.Context) error {
	<-t.release
	return nil
}

func TestSubmitRejectsWhenFull(t *testing.T) {
	p := NewPool(1, 1)
	var n atomic.Int64
	require.True(t, p.Submit(&countTask{n: &n}))
	// 未启动 worker，队列容量 1 已满
	require.False(t, p.Submit(&countTask{n: &n}))
}

func TestSubmitAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	p := NewPool(4, 2)
	p.Start(ctx, wg)
	cancel()
	wg.Wait()

	// 关闭后的提交不 panic，只是丢弃
	var n atomic.Int64
	p.Submit(&countTask{n: &n})
	require.Equal(t, int64(0), n.Load())
}

func TestShutdownDrainsQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	p := NewPool(8, 1)

	release := make(chan struct{})
	var n atomic.Int64
	require.True(t, p.Submit(&blockTask{release: release}))
	for i := 0; i < 5; i++ {
		require.True(t, p.Submit(&countTask{n: &n}))
	}
	p.Start(ctx, wg)
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(release)
	wg.Wait()
	// 取消后排空已入队的任务再退出
	require.Equal(t, int64(5), n.Load())
}
