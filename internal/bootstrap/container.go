package bootstrap

import (
	"context"
	"sync"

	"savewise/internal/adapters/config"
	pgclient "savewise/internal/adapters/postgres"
	"savewise/internal/adapters/ratelimit"
	redisclient "savewise/internal/adapters/redis"
	"savewise/internal/api"
	"savewise/internal/api/health"
	"savewise/internal/domain/features"
	"savewise/internal/domain/prediction"
	"savewise/internal/ml/ensemble"
	"savewise/internal/services/advisor"
	"savewise/internal/services/persistence"
	"savewise/internal/services/predictor"
	"savewise/internal/workers"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure Layer (optional remote store clients)
	PG    *pgclient.Client
	Redis *redisclient.Client

	// Models
	Models *Models

	// Storage
	Stores *Stores

	// Domain Layer - Services
	Services *Services

	// Application Layer
	Application *Application

	// Background Processing
	Background *Background

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Models groups the immutable inference components built at startup
type Models struct {
	Spec     features.Spec
	Encoder  *features.Encoder
	Registry *ensemble.Registry
	Runner   *ensemble.Runner
}

// Stores groups the prediction stores
type Stores struct {
	Remote   prediction.RemoteStore // nil when REMOTE_STORE_PROVIDER=none
	Fallback prediction.Store
	Gateway  *persistence.Gateway
}

// Services groups all domain services
type Services struct {
	Predictor   *predictor.Service
	Advisor     *advisor.Service
	ChatLimiter *ratelimit.KeyedLimiter
}

// Application groups application layer components
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
	Handlers      *api.Handlers
}

// Background groups all background processing components
type Background struct {
	WorkerScheduler *workers.Scheduler
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Models:      &Models{},
		Stores:      &Stores{},
		Services:    &Services{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in the correct order
// Panics on any initialization error (fail-fast at startup)
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitModels()
	c.MustInitInfrastructure()
	c.MustInitStores()
	c.MustInitServices()
	c.MustInitApplication()
	c.MustInitBackground()
}

// Start starts the HTTP server and background workers
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // Trigger shutdown on fatal HTTP error
		}
	}()

	c.Log.Infow("✓ All systems operational",
		"remote_store", c.Stores.Gateway.RemoteName(),
		"features", c.Models.Encoder.Len(),
		"models", c.Models.Registry.Len(),
	)
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	c.Cancel()

	c.Lifecycle.Shutdown(c.WG, Components{
		HTTPServer:      c.Application.HTTPServer,
		WorkerScheduler: c.Background.WorkerScheduler,
		Gateway:         c.Stores.Gateway,
		Registry:        c.Models.Registry,
		PG:              c.PG,
		Redis:           c.Redis,
		ErrorTracker:    c.ErrorTracker,
	}, c.Log)
}

// Done is closed when the application context is cancelled
func (c *Container) Done() <-chan struct{} {
	return c.Context.Done()
}
