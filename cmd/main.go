package main

import (
	"os"
	"os/signal"
	"syscall"

	"savewise/internal/bootstrap"
)

func main() {
	app := bootstrap.NewContainer()
	app.MustInit()

	if err := app.Start(); err != nil {
		app.Log.Fatalf("failed to start: %v", err)
	}

	waitForShutdown(app)
}

// waitForShutdown blocks until a signal arrives or a component cancels the app
func waitForShutdown(app *bootstrap.Container) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		app.Log.Infow("Shutdown signal received", "signal", sig.String())
	case <-app.Done():
		app.Log.Warn("Application context cancelled")
	}

	app.Shutdown()
}
