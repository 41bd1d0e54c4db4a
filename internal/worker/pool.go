package worker

import (
	"context"
	"sync"
)

// Task is a unit of work producing one result.
type Task[T any] func(ctx context.Context) T

// Pool runs tasks concurrently over a fixed set of workers and collects
// their results. Result order is not guaranteed; callers that need a
// stable order must sort after Wait.
type Pool[T any] struct {
	workers    int
	tasks      chan Task[T]
	results    chan T
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool with the given number of workers and starts them.
func NewPool[T any](ctx context.Context, workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool[T]{
		workers:    workers,
		tasks:      make(chan Task[T], workers*2),
		results:    make(chan T, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			result := task(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a task for execution. Submissions after Wait or Shutdown
// are dropped.
func (p *Pool[T]) Submit(task Task[T]) {
	select {
	case <-p.ctx.Done():
		return
	case p.tasks <- task:
	}
}

// Wait closes the task queue, waits for all queued tasks to finish, and
// returns their results.
func (p *Pool[T]) Wait() []T {
	close(p.tasks)

	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []T
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Shutdown cancels outstanding work immediately.
func (p *Pool[T]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[T]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
