package bootstrap

import (
	"savewise/internal/workers"
	"savewise/internal/workers/storeprobe"
)

// MustInitBackground registers the background workers
func (c *Container) MustInitBackground() {
	c.Background.WorkerScheduler = workers.NewScheduler(c.Log)

	if c.Stores.Remote != nil {
		c.Background.WorkerScheduler.RegisterWorker(storeprobe.New(
			c.Stores.Remote,
			c.Config.Workers.StoreProbeInterval,
			c.Config.Store.Timeout,
			c.Config.Workers.StoreProbeInterval > 0,
			c.Log,
		))
	}

	c.Log.Infow("✓ Background workers initialized", "workers", len(c.Background.WorkerScheduler.GetWorkers()))
}
