package utils

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RunParallel applies fn to every item with at most limit calls in flight and returns
// the results in input order. The first error cancels the remaining calls and is returned.
func RunParallel[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WorkerPool runs submitted tasks on a fixed number of goroutines.
type WorkerPool struct {
	taskChan chan func()
	wg       sync.WaitGroup
	workers  sync.WaitGroup
}

// NewWorkerPool starts maxWorkers workers.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	pool := &WorkerPool{
		taskChan: make(chan func(), maxWorkers*2),
	}

	pool.workers.Add(maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		go pool.worker()
	}

	return pool
}

func (p *WorkerPool) worker() {
	defer p.workers.Done()
	for task := range p.taskChan {
		task()
		p.wg.Done()
	}
}

// AddTask queues a task, blocking while the buffer is full.
func (p *WorkerPool) AddTask(task func()) {
	p.wg.Add(1)
	p.taskChan <- task
}

// Wait blocks until every queued task has finished.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Close stops the workers once the queue drains. AddTask must not be called afterwards.
func (p *WorkerPool) Close() {
	close(p.taskChan)
	p.workers.Wait()
}
