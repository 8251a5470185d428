package queue

import (
	"context"
	"sync"
)

type Task interface {
	Execute(ctx context.Context) error
}

// Pool 有界 worker 池。provider 网络调用只会在池内 goroutine 上执行，
// 不会落在提交方的请求线程上。
type Pool struct {
	tasks   chan Task
	workers int
	once    sync.Once
}

func NewPool(size, workers int) *Pool {
	return &Pool{
		tasks:   make(chan Task, size),
		workers: workers,
	}
}

// Start 启动 worker，ctx 取消后排空队列再退出
func (p *Pool) Start(ctx context.Context, wg *sync.WaitGroup) {
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.work(ctx, wg)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		p.once.Do(func() {
			close(p.tasks)
		})
	}()
}

func (p *Pool) work(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for task := range p.tasks {
		task.Execute(ctx)
	}
}

// Submit 入队，队列满或已关闭时返回 false
func (p *Pool) Submit(task Task) bool {
	defer func() {
		// 关闭后的提交丢弃，由补偿任务兜底
		recover()
	}()
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}
