package storeprobe

import (
	"context"
	"time"

	"savewise/internal/metrics"
	"savewise/internal/workers"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// Pinger is the part of a remote store the probe needs
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// Worker pings the remote prediction store and exports its availability
type Worker struct {
	*workers.BaseWorker
	store   Pinger
	timeout time.Duration
	up      bool
}

// New creates a probe for store. A timeout <= 0 defaults to 5s.
func New(store Pinger, interval, timeout time.Duration, enabled bool, log *logger.Logger) *Worker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Worker{
		BaseWorker: workers.NewBaseWorker("store_probe", interval, enabled, log),
		store:      store,
		timeout:    timeout,
		up:         true,
	}
}

// Run executes one probe
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err := w.store.Ping(ctx)
	metrics.SetRemoteStoreUp(w.store.Name(), err == nil)

	// Log transitions only, the gauge carries the steady state
	switch {
	case err != nil && w.up:
		w.Log().Warnw("Remote store unreachable, predictions go to fallback", "backend", w.store.Name(), "error", err)
	case err == nil && !w.up:
		w.Log().Infow("Remote store reachable again", "backend", w.store.Name())
	}
	w.up = err == nil

	return errors.Wrapf(err, "ping %s", w.store.Name())
}
