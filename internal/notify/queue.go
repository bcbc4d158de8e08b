package notify

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/groupfeed/pkg/logger"
)

type task struct {
	name  string
	ctx   context.Context
	run   func(ctx context.Context)
	enqAt time.Time
}

// Queue runs detached work (notification fan-out) on a fixed pool of workers.
// Work is in-process and best effort: a full queue drops the task with a warning.
type Queue struct {
	ch      chan task
	pending sync.WaitGroup
	// mu 保证 stopped 检查与 pending.Add 不会与 stop 中的 pending.Wait 交错
	mu        sync.Mutex
	stopped   bool
	metricsCh chan time.Duration
}

func NewQueue(queueSize int) *Queue {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Queue{ch: make(chan task, queueSize), metricsCh: make(chan time.Duration, 4096)}
}

// Start launches the workers and returns a stop function that waits for queued
// work to finish until ctx is done.
func (q *Queue) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case t := <-q.ch:
					q.run(t)
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		q.mu.Lock()
		q.stopped = true
		q.mu.Unlock()
		done := make(chan struct{})
		go func() {
			q.pending.Wait()
			close(done)
		}()
		defer close(stopCh)
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			logger.Warn("notification queue stopped with pending work", zap.Int("queued", len(q.ch)))
			return ctx.Err()
		}
	}
}

// Enqueue schedules fn. The request context is detached from cancellation but keeps
// its values (trace span, sentry hub). Returns false when the task was dropped.
func (q *Queue) Enqueue(ctx context.Context, name string, fn func(ctx context.Context)) bool {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		logger.Warn("notification queue stopped, drop task", zap.String("task", name))
		return false
	}
	q.pending.Add(1)
	q.mu.Unlock()
	select {
	case q.ch <- task{name: name, ctx: context.WithoutCancel(ctx), run: fn, enqAt: time.Now()}:
		return true
	default:
		q.pending.Done()
		logger.Warn("notification queue full, drop task", zap.String("task", name))
		return false
	}
}

// Wait blocks until every accepted task has finished.
func (q *Queue) Wait() { q.pending.Wait() }

func (q *Queue) run(t task) {
	defer q.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("notification task panicked", zap.String("task", t.name), zap.Any("panic", r))
			hub := sentry.GetHubFromContext(t.ctx)
			if hub == nil {
				hub = sentry.CurrentHub()
			}
			hub.Recover(r)
		}
	}()
	t.run(t.ctx)
	select {
	case q.metricsCh <- time.Since(t.enqAt):
	default:
	}
}

// Metrics returns enqueue-to-done latencies, one per finished task.
func (q *Queue) Metrics() <-chan time.Duration { return q.metricsCh }

// QueueLen returns the sampled queue length.
func (q *Queue) QueueLen() int { return len(q.ch) }
