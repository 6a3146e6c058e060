package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type job struct {
	name string
	fn   func(ctx context.Context) error
}

// Writer runs storage writes on its own goroutine so callers on the tick
// goroutine never wait for the database. Jobs run in submission order.
type Writer struct {
	jobs    chan job
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewWriter(size int, timeout time.Duration, log *zap.Logger) *Writer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	w := &Writer{
		jobs:    make(chan job, max(size, 1)),
		timeout: timeout,
		log:     log,
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules fn without blocking. It reports false when the queue is
// full or the writer is closed; the job is then dropped.
func (w *Writer) Enqueue(name string, fn func(ctx context.Context) error) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.jobs <- job{name: name, fn: fn}:
		return true
	default:
		w.log.Warn("write queue full, dropping job", zap.String("job", name))
		return false
	}
}

// Close stops accepting jobs and waits for the queued ones.
func (w *Writer) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for j := range w.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := j.fn(ctx); err != nil {
			w.log.Error("write failed", zap.String("job", j.name), zap.Error(err))
		}
		cancel()
	}
}
