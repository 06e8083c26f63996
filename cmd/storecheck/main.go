// Command storecheck runs a create/read/delete round trip against the
// configured remote prediction store.
package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"savewise/internal/adapters/config"
	pgclient "savewise/internal/adapters/postgres"
	"savewise/internal/adapters/redis"
	"savewise/internal/domain/prediction"
	"savewise/internal/domain/profile"
	pgrepo "savewise/internal/repository/postgres"
	redisrepo "savewise/internal/repository/redis"
	"savewise/internal/repository/supabase"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

var (
	providerFlag string
	timeoutFlag  time.Duration
	keepFlag     bool
)

var rootCmd = &cobra.Command{
	Use:          "storecheck",
	Short:        "Round-trip a probe prediction through the remote store",
	Long:         "Creates a probe record in the configured remote store, reads it back as the latest record, lists records and deletes the probe.",
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	rootCmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "Remote store provider (default: $REMOTE_STORE_PROVIDER)")
	rootCmd.Flags().DurationVarP(&timeoutFlag, "timeout", "t", time.Minute, "Overall timeout")
	rootCmd.Flags().BoolVar(&keepFlag, "keep", false, "Keep the probe record instead of deleting it")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	// The flag wins over .env and the environment
	if providerFlag != "" {
		if err := os.Setenv("REMOTE_STORE_PROVIDER", providerFlag); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer logger.Sync()
	log := logger.Get().Component("storecheck")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
	defer cancel()

	store, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer closeFn()

	if err := run(ctx, store, keepFlag, log); err != nil {
		log.Errorw("Store check failed", err, "backend", store.Name())
		return err
	}
	log.Infow("✅ Store check passed", "backend", store.Name())
	return nil
}

// run creates a probe record, reads it back and removes it unless keep is set
func run(ctx context.Context, store prediction.RemoteStore, keep bool, log *logger.Logger) error {
	if err := store.Ping(ctx); err != nil {
		return errors.Wrap(err, "ping")
	}
	log.Info("✓ Store reachable")

	probe := probeRecord()
	created, err := store.Create(ctx, probe)
	if err != nil {
		return errors.Wrap(err, "create probe record")
	}
	if created == nil {
		return errors.Wrap(errors.ErrNoConfirmation, "create probe record")
	}
	log.Infow("✓ Probe record created", "id", created.ID)

	cleanup := func() {
		if err := store.Delete(ctx, created.ID); err != nil {
			log.Errorw("Failed to delete probe record", err, "id", created.ID)
		}
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		cleanup()
		return errors.Wrap(err, "read latest")
	}
	if latest.ID != created.ID || latest.Input.Occupation != probe.Input.Occupation {
		cleanup()
		return errors.Newf("latest record %s does not match probe %s", latest.ID, created.ID)
	}
	log.Info("✓ Latest record matches probe")

	records, err := store.List(ctx)
	if err != nil {
		cleanup()
		return errors.Wrap(err, "list records")
	}
	if len(records) == 0 {
		cleanup()
		return errors.Wrap(errors.ErrNotFound, "list returned no records")
	}
	log.Infow("✓ Records listed", "count", len(records))

	if keep {
		log.Infow("Probe record kept", "id", created.ID)
		return nil
	}
	if err := store.Delete(ctx, created.ID); err != nil {
		return errors.Wrap(err, "delete probe record")
	}
	log.Info("✓ Probe record deleted")
	return nil
}

// probeRecord is dated slightly in the future so it sorts first
func probeRecord() *prediction.Record {
	return &prediction.Record{
		Timestamp: prediction.Timestamp{Time: time.Now().UTC().Add(time.Minute)},
		Input: profile.Profile{
			Income:     50000,
			Age:        30,
			Dependents: 1,
			Occupation: "storecheck-" + uuid.NewString(),
			CityTier:   "Tier_1",
		},
		Output: prediction.Result{
			Savings: prediction.SavingsOutput{CanAchieveSavings: true, Confidence: 0.5},
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config) (prediction.RemoteStore, func(), error) {
	noop := func() {}

	switch cfg.Store.Provider {
	case config.ProviderSupabase:
		return supabase.NewStore(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.Table), noop, nil

	case config.ProviderPostgres:
		client, err := pgclient.NewClient(ctx, cfg.Postgres)
		if err != nil {
			return nil, noop, err
		}
		repo := pgrepo.NewPredictionRepository(client.DB())
		if err := repo.EnsureSchema(ctx); err != nil {
			client.Close()
			return nil, noop, err
		}
		return repo, func() { client.Close() }, nil

	case config.ProviderRedis:
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return redisrepo.NewPredictionRepository(client.Client(), cfg.Redis.PredictionsKey), func() { client.Close() }, nil
	}

	return nil, noop, errors.Wrapf(errors.ErrInvalidInput, "provider %q has no remote store to check", cfg.Store.Provider)
}
