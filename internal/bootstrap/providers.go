package bootstrap

import (
	"context"
	"time"

	"savewise/internal/adapters/config"
	errnoop "savewise/internal/adapters/errors/noop"
	"savewise/internal/adapters/errors/sentry"
	"savewise/internal/adapters/gemini"
	"savewise/internal/adapters/openai"
	pgclient "savewise/internal/adapters/postgres"
	"savewise/internal/adapters/ratelimit"
	redisclient "savewise/internal/adapters/redis"
	"savewise/internal/api"
	"savewise/internal/api/health"
	"savewise/internal/domain/features"
	"savewise/internal/domain/prediction"
	"savewise/internal/metrics"
	"savewise/internal/ml"
	"savewise/internal/ml/ensemble"
	"savewise/internal/repository/file"
	pgrepo "savewise/internal/repository/postgres"
	redisrepo "savewise/internal/repository/redis"
	"savewise/internal/repository/supabase"
	"savewise/internal/services/advisor"
	"savewise/internal/services/persistence"
	"savewise/internal/services/predictor"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// chatLimiterIdleTTL is how long a chat client's bucket is kept after its last request
const chatLimiterIdleTTL = 10 * time.Minute

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()
}

// ========================================
// Phase 2: Models
// ========================================

// MustInitModels loads the feature spec and the three ONNX models
func (c *Container) MustInitModels() {
	spec, err := provideFeatureSpec(c.Config.Models)
	if err != nil {
		c.Log.Fatalf("failed to load feature spec: %v", err)
	}

	encoder, err := features.NewEncoder(spec)
	if err != nil {
		c.Log.Fatalf("feature spec does not match the encoder: %v", err)
	}

	if err := ml.InitRuntime(c.Config.Models.RuntimeLibPath); err != nil {
		c.Log.Fatalf("failed to initialize ONNX runtime: %v", err)
	}

	registry, err := ensemble.LoadRegistry(c.Config.Models.Dir, ml.ModelOptions{
		RuntimeLibPath: c.Config.Models.RuntimeLibPath,
		IntraOpThreads: c.Config.Models.IntraOpThreads,
		InputWidth:     encoder.Len(),
	})
	if err != nil {
		c.Log.Fatalf("failed to load models: %v", err)
	}

	c.Models.Spec = spec
	c.Models.Encoder = encoder
	c.Models.Registry = registry
	c.Models.Runner = ensemble.NewRunner(registry, encoder.Len())

	c.Log.Infow("✓ Models loaded", "dir", c.Config.Models.Dir, "features", encoder.Len(), "models", registry.Len())
}

// ========================================
// Phase 3: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects the client the selected remote store needs
func (c *Container) MustInitInfrastructure() {
	ctx, cancel := context.WithTimeout(c.Context, 15*time.Second)
	defer cancel()

	var err error
	switch c.Config.Store.Provider {
	case config.ProviderPostgres:
		c.Log.Info("Connecting to PostgreSQL...")
		c.PG, err = pgclient.NewClient(ctx, c.Config.Postgres)
		if err != nil {
			c.Log.Fatalf("failed to connect postgres: %v", err)
		}
		c.Log.Info("✓ PostgreSQL connected")

	case config.ProviderRedis:
		c.Log.Info("Connecting to Redis...")
		c.Redis, err = redisclient.NewClient(ctx, c.Config.Redis)
		if err != nil {
			c.Log.Fatalf("failed to connect redis: %v", err)
		}
		c.Log.Info("✓ Redis connected")
	}
}

// ========================================
// Phase 4: Stores
// ========================================

// MustInitStores builds the remote store, the local fallback and the gateway over both
func (c *Container) MustInitStores() {
	remote, err := provideRemoteStore(c.Context, c.Config, c.PG, c.Redis)
	if err != nil {
		c.Log.Fatalf("failed to initialize remote store: %v", err)
	}

	c.Stores.Remote = remote
	c.Stores.Fallback = file.NewStore(c.Config.Store.FallbackPath)

	// A nil RemoteStore must reach the gateway as a nil Store
	var remoteStore prediction.Store
	if remote != nil {
		remoteStore = remote
	}

	c.Stores.Gateway = persistence.NewGateway(remoteStore, c.Stores.Fallback, persistence.Config{
		RemoteTimeout: c.Config.Store.Timeout,
		QueueSize:     c.Config.Store.FallbackQueueSize,
	}, c.Log)
	metrics.RegisterCustomCollector(metrics.NewCustomCollector(c.Stores.Gateway))

	c.Log.Infow("✓ Stores initialized",
		"remote", c.Stores.Gateway.RemoteName(),
		"fallback", c.Config.Store.FallbackPath,
	)
}

// ========================================
// Phase 5: Domain Layer - Services
// ========================================

// MustInitServices wires the predictor, the chat advisor and its limiter
func (c *Container) MustInitServices() {
	c.Services.Predictor = predictor.NewService(c.Models.Encoder, c.Models.Runner, c.Stores.Gateway, c.Log)

	llm := provideLLM(c.Context, c.Config, c.Log)
	c.Services.Advisor = advisor.NewService(advisor.NewResolver(c.Stores.Gateway), llm, c.Log)

	c.Services.ChatLimiter = ratelimit.NewKeyedLimiter("chat", c.Config.HTTP.ChatRatePerMinute, chatLimiterIdleTTL)

	c.Log.Info("✓ Services initialized")
}

// ========================================
// Phase 6: Application Layer
// ========================================

// MustInitApplication builds the health handler, the API handlers and the HTTP server
func (c *Container) MustInitApplication() {
	c.Application.HealthHandler = health.New(c.Log, c.Config.App.Name, c.Config.App.Version, c.healthChecks()...)

	c.Application.Handlers = api.NewHandlers(
		c.Services.Predictor,
		c.Stores.Gateway,
		c.Services.Advisor,
		c.Services.ChatLimiter,
		c.Models.Registry.Len(),
		c.Log,
	)

	c.Application.HTTPServer = api.NewServer(api.ServerConfig{
		Port:        c.Config.HTTP.Port,
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
	}, c.Application.HealthHandler, c.Application.Handlers, c.Log)

	c.Log.Info("✓ Application layer initialized")
}

// healthChecks lists the dependencies probed by /health and /ready.
// Remote store checks are not critical: predictions keep flowing to the fallback.
func (c *Container) healthChecks() []health.Check {
	checks := []health.Check{modelsCheck(c.Models.Registry)}

	if c.Stores.Remote != nil {
		checks = append(checks, health.Check{
			Name: c.Stores.Remote.Name(),
			Ping: c.Stores.Remote.Ping,
		})
	}

	return checks
}

func modelsCheck(registry *ensemble.Registry) health.Check {
	return health.Check{
		Name:     "models",
		Critical: true,
		Ping: func(ctx context.Context) error {
			if n := registry.Len(); n != ensemble.Size {
				return errors.Newf("%d of %d models loaded", n, ensemble.Size)
			}
			return nil
		},
	}
}

// ========================================
// Providers
// ========================================

// provideErrorTracker returns Sentry when configured, a no-op tracker otherwise
func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

// provideFeatureSpec reads feature_info.json. The trained models depend on its
// order, so there is no built-in substitute.
func provideFeatureSpec(cfg config.ModelConfig) (features.Spec, error) {
	spec, err := features.LoadSpec(cfg.FeatureInfoPath)
	if err != nil {
		return features.Spec{}, err
	}
	return spec, nil
}

// provideRemoteStore builds the store selected by REMOTE_STORE_PROVIDER.
// It returns nil for the "none" provider.
func provideRemoteStore(ctx context.Context, cfg *config.Config, pg *pgclient.Client, rdb *redisclient.Client) (prediction.RemoteStore, error) {
	switch cfg.Store.Provider {
	case config.ProviderSupabase:
		var opts []supabase.Option
		if cfg.Store.Timeout > 0 {
			opts = append(opts, supabase.WithTimeout(cfg.Store.Timeout))
		}
		return supabase.NewStore(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.Table, opts...), nil

	case config.ProviderPostgres:
		if pg == nil {
			return nil, errors.Wrap(errors.ErrUnavailable, "postgres client not initialized")
		}
		repo := pgrepo.NewPredictionRepository(pg.DB())
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case config.ProviderRedis:
		if rdb == nil {
			return nil, errors.Wrap(errors.ErrUnavailable, "redis client not initialized")
		}
		return redisrepo.NewPredictionRepository(rdb.Client(), cfg.Redis.PredictionsKey), nil

	case config.ProviderNone:
		return nil, nil
	}

	return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown remote store provider %q", cfg.Store.Provider)
}

// provideLLM returns the chat model selected by ADVISOR_PROVIDER, or nil when
// its API key is not configured
func provideLLM(ctx context.Context, cfg *config.Config, log *logger.Logger) advisor.LLM {
	switch cfg.Advisor.Provider {
	case config.AdvisorOpenAI:
		client, err := openai.NewClient(cfg.OpenAI)
		if err != nil {
			log.Warnw("Chat advisor disabled", "provider", cfg.Advisor.Provider, "error", err)
			return nil
		}
		log.Infow("✓ OpenAI client initialized", "model", client.Model())
		return client

	default:
		client, err := gemini.NewClient(ctx, cfg.Gemini)
		if err != nil {
			log.Warnw("Chat advisor disabled", "provider", cfg.Advisor.Provider, "error", err)
			return nil
		}
		log.Infow("✓ Gemini client initialized", "model", client.Model())
		return client
	}
}
