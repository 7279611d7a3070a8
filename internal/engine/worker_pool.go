package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrWorkerPanic is reported to the submitter when processing a job panics.
var ErrWorkerPanic = errors.New("engine: worker panic")

// job is the unit of work dispatched to a worker.
type job[T, R any] struct {
	payload T
	reply   chan<- jobResult[R]
}

type jobResult[R any] struct {
	value R
	err   error
}

// workerPool is a fixed-size goroutine pool with a bounded input queue.
type workerPool[T, R any] struct {
	mu      sync.RWMutex
	closed  bool
	queue   chan job[T, R]
	process func(ctx context.Context, t T) (R, error)
	wg      sync.WaitGroup
}

// newWorkerPool creates and starts a pool with n goroutines and queue capacity cap.
func newWorkerPool[T, R any](ctx context.Context, n, cap int, fn func(context.Context, T) (R, error)) *workerPool[T, R] {
	p := &workerPool[T, R]{
		queue:   make(chan job[T, R], cap),
		process: fn,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *workerPool[T, R]) run(ctx context.Context) {
	for {
		select {
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			v, err := p.safeProcess(ctx, j.payload)
			if j.reply != nil {
				j.reply <- jobResult[R]{value: v, err: err}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *workerPool[T, R]) safeProcess(ctx context.Context, t T) (v R, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("worker recovered from panic", "panic", r)
			err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
		}
	}()
	return p.process(ctx, t)
}

// Submit enqueues a job without blocking (returns false if full or drained).
// reply, if non-nil, must have room for one result.
func (p *workerPool[T, R]) Submit(t T, reply chan<- jobResult[R]) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- job[T, R]{payload: t, reply: reply}:
		return true
	default:
		return false
	}
}

// Drain closes the queue and waits for all workers to finish.
func (p *workerPool[T, R]) Drain() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *workerPool[T, R]) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *workerPool[T, R]) QueueCap() int {
	return cap(p.queue)
}
