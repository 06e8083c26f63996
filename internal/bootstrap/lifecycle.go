package bootstrap

import (
	"context"
	"sync"
	"time"

	pgclient "savewise/internal/adapters/postgres"
	redisclient "savewise/internal/adapters/redis"
	"savewise/internal/api"
	"savewise/internal/ml"
	"savewise/internal/ml/ensemble"
	"savewise/internal/services/persistence"
	"savewise/internal/workers"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// Lifecycle manages graceful startup and shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 30 * time.Second,
	}
}

// Components are the parts Shutdown tears down. Nil fields are skipped.
type Components struct {
	HTTPServer      *api.Server
	WorkerScheduler *workers.Scheduler
	Gateway         *persistence.Gateway
	Registry        *ensemble.Registry
	PG              *pgclient.Client
	Redis           *redisclient.Client
	ErrorTracker    errors.Tracker
}

// Shutdown performs coordinated cleanup of all components in order:
// 1. No new requests accepted
// 2. Probe worker stopped
// 3. Queued fallback writes drained
// 4. Model sessions and the ONNX runtime released
// 5. Errors and logs flushed
// 6. Database connections last
func (l *Lifecycle) Shutdown(wg *sync.WaitGroup, c Components, log *logger.Logger) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	// ========================================
	// Step 1: Stop HTTP Server (5s timeout)
	// ========================================
	log.Info("[1/7] Stopping HTTP server...")
	if c.HTTPServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
		if err := c.HTTPServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", err)
		}
		httpCancel()
	}
	l.waitForGoroutines(wg, 5*time.Second, log)

	// ========================================
	// Step 2: Stop Background Workers
	// ========================================
	log.Info("[2/7] Stopping background workers...")
	if c.WorkerScheduler != nil && c.WorkerScheduler.IsRunning() {
		workerCtx, workerCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		if err := c.WorkerScheduler.Stop(workerCtx); err != nil {
			log.Errorw("Workers shutdown failed", err)
		} else {
			log.Info("✓ Workers stopped")
		}
		workerCancel()
	}

	// ========================================
	// Step 3: Drain fallback queue
	// ========================================
	log.Info("[3/7] Draining fallback queue...")
	if c.Gateway != nil {
		if err := c.Gateway.Close(shutdownCtx); err != nil {
			log.Errorw("Fallback queue drain failed", err, "pending", c.Gateway.Depth())
		} else {
			log.Info("✓ Fallback queue drained")
		}
	}

	// ========================================
	// Step 4: Release models
	// ========================================
	log.Info("[4/7] Releasing models...")
	if c.Registry != nil {
		if err := c.Registry.Close(); err != nil {
			log.Errorw("Model close failed", err)
		}
	}
	if err := ml.ShutdownRuntime(); err != nil {
		log.Errorw("ONNX runtime shutdown failed", err)
	} else {
		log.Info("✓ Models released")
	}

	// ========================================
	// Step 5: Flush Error Tracker
	// ========================================
	log.Info("[5/7] Flushing error tracker...")
	l.flushErrorTracker(c.ErrorTracker, shutdownCtx, log)

	// ========================================
	// Step 6: Sync Logs
	// ========================================
	log.Info("[6/7] Syncing logs...")
	if err := logger.Sync(); err != nil {
		log.Warn("Log sync completed with warnings")
	}

	// ========================================
	// Step 7: Close Database Connections
	// LAST - the fallback drain may still need them
	// ========================================
	log.Info("[7/7] Closing database connections...")
	l.closeDatabases(c.PG, c.Redis, log)

	log.Info("✅ Graceful shutdown complete")
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	if wg == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Warnw("⚠ Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

// flushErrorTracker flushes the error tracker (Sentry, etc.)
func (l *Lifecycle) flushErrorTracker(tracker errors.Tracker, ctx context.Context, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Errorw("Error tracker flush failed", err)
	} else {
		log.Info("✓ Error tracker flushed")
	}
}

// closeDatabases closes the optional remote store clients
func (l *Lifecycle) closeDatabases(pgClient *pgclient.Client, redisClient *redisclient.Client, log *logger.Logger) {
	var errs errors.MultiError

	if pgClient != nil {
		if err := pgClient.Close(); err != nil {
			errs.Add(errors.Wrap(err, "postgres"))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			errs.Add(errors.Wrap(err, "redis"))
		}
	}

	if err := errs.ToError(); err != nil {
		log.Errorw("Database close errors", err)
	} else {
		log.Info("✓ Database connections closed")
	}
}
