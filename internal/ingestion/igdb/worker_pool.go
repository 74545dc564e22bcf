package igdb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Task is one unit of work run by a WorkerPool.
type Task func(ctx context.Context) error

// PoolStats counts how the submitted tasks ended.
type PoolStats struct {
	Completed int64
	Failed    int64
	Dropped   int64
}

// WorkerPool runs tasks on a fixed number of goroutines.
type WorkerPool struct {
	size   int
	queue  chan Task
	ctx    context.Context
	stop   context.CancelFunc
	logger *slog.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	sealed bool

	completed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewWorkerPool creates a pool bound to ctx. Once ctx is done, queued tasks are
// dropped instead of run.
func NewWorkerPool(ctx context.Context, size int, logger *slog.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	poolCtx, stop := context.WithCancel(ctx)
	return &WorkerPool{
		size:   size,
		queue:  make(chan Task, size*2),
		ctx:    poolCtx,
		stop:   stop,
		logger: logger,
	}
}

func (wp *WorkerPool) Start() {
	for i := range wp.size {
		wp.wg.Add(1)
		go wp.run(i)
	}
	wp.logger.Debug("Worker pool started", "workers", wp.size)
}

// Submit queues a task, blocking while the queue is full. It reports false once
// the pool is sealed or its context is done.
func (wp *WorkerPool) Submit(task Task) bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.sealed {
		return false
	}

	select {
	case wp.queue <- task:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Wait seals the pool, waits for every queued task and reports how they ended.
func (wp *WorkerPool) Wait() PoolStats {
	wp.mu.Lock()
	if !wp.sealed {
		close(wp.queue)
		wp.sealed = true
	}
	wp.mu.Unlock()

	wp.wg.Wait()
	wp.stop()

	stats := PoolStats{
		Completed: wp.completed.Load(),
		Failed:    wp.failed.Load(),
		Dropped:   wp.dropped.Load(),
	}
	wp.logger.Debug("Worker pool finished", "completed", stats.Completed, "failed", stats.Failed, "dropped", stats.Dropped)
	return stats
}

// Shutdown drops whatever is still queued and waits for running tasks.
func (wp *WorkerPool) Shutdown() PoolStats {
	wp.stop()
	return wp.Wait()
}

func (wp *WorkerPool) run(worker int) {
	defer wp.wg.Done()

	// keep draining after cancellation so the queue empties
	for task := range wp.queue {
		if wp.ctx.Err() != nil {
			wp.dropped.Add(1)
			continue
		}
		if err := wp.exec(task); err != nil {
			wp.failed.Add(1)
			wp.logger.Warn("Task failed", "worker", worker, "error", err)
			continue
		}
		wp.completed.Add(1)
	}
}

func (wp *WorkerPool) exec(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task(wp.ctx)
}
