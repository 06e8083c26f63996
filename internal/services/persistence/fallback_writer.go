package persistence

import (
	"context"
	"sync"
	"time"

	"savewise/internal/domain/prediction"
	"savewise/internal/metrics"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// job is a queued fallback write. A job with a nil record is a flush marker
// whose done channel closes once every earlier job has been handled.
type job struct {
	rec  *prediction.Record
	done chan struct{}
}

// fallbackWriter drains queued records into the fallback store on a single
// goroutine, so file writes never overlap
type fallbackWriter struct {
	store prediction.Store
	queue chan job
	log   *logger.Logger

	mu      sync.RWMutex
	closed  bool
	running bool
	wg      sync.WaitGroup
}

func newFallbackWriter(store prediction.Store, size int, log *logger.Logger) *fallbackWriter {
	if size <= 0 {
		size = 256
	}
	return &fallbackWriter{
		store: store,
		queue: make(chan job, size),
		log:   log,
	}
}

// Start launches the drain goroutine
func (w *fallbackWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.closed {
		return
	}
	w.running = true

	w.wg.Add(1)
	go w.drain()
}

// Enqueue hands rec to the drain goroutine without waiting. It reports false
// when the queue is full or the writer is stopped.
func (w *fallbackWriter) Enqueue(rec *prediction.Record) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}

	select {
	case w.queue <- job{rec: rec}:
		return true
	default:
		return false
	}
}

// Flush waits until every record queued before the call has been written
func (w *fallbackWriter) Flush(ctx context.Context) error {
	done := make(chan struct{})

	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return nil
	}
	select {
	case w.queue <- job{done: done}:
	case <-ctx.Done():
		w.mu.RUnlock()
		return ctx.Err()
	}
	w.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *fallbackWriter) drain() {
	defer w.wg.Done()

	for j := range w.queue {
		if j.rec == nil {
			close(j.done)
			continue
		}
		w.write(j.rec)
	}
}

func (w *fallbackWriter) write(rec *prediction.Record) {
	name := w.store.Name()
	start := time.Now()
	_, err := w.store.Create(context.Background(), rec)
	metrics.RecordPersistence(name, "create", time.Since(start))

	if err != nil {
		metrics.PersistenceWrites.WithLabelValues(name, "failed").Inc()
		w.log.Errorw("Fallback write failed", errors.NewPersistenceError(name, "create", err))
		return
	}

	metrics.PersistenceWrites.WithLabelValues(name, "stored").Inc()
	w.log.Debugw("Prediction written to fallback store", "backend", name)
}

// Stop closes the queue, drains what is left and waits for the goroutine
func (w *fallbackWriter) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	running := w.running
	close(w.queue)
	w.mu.Unlock()

	if !running {
		return nil
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.log.Info("Fallback writer stopped")
		return nil
	case <-ctx.Done():
		w.log.Warn("Fallback writer stop timed out")
		return ctx.Err()
	}
}

// Depth returns the number of queued jobs
func (w *fallbackWriter) Depth() int {
	return len(w.queue)
}

// Capacity returns the queue bound
func (w *fallbackWriter) Capacity() int {
	return cap(w.queue)
}
