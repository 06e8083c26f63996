package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"savewise/pkg/errors"
)

// Remote store providers
const (
	ProviderSupabase = "supabase"
	ProviderPostgres = "postgres"
	ProviderRedis    = "redis"
	ProviderNone     = "none"
)

// Chat advisor LLM providers
const (
	AdvisorGemini = "gemini"
	AdvisorOpenAI = "openai"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Models        ModelConfig
	Store         StoreConfig
	Supabase      SupabaseConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Advisor       AdvisorConfig
	Gemini        GeminiConfig
	OpenAI        OpenAIConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"savewise"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"VERSION" default:"dev"`
}

type HTTPConfig struct {
	Port              int `envconfig:"HTTP_PORT" default:"5000"`
	ChatRatePerMinute int `envconfig:"CHAT_RATE_PER_MINUTE" default:"30"`
}

type ModelConfig struct {
	Dir             string `envconfig:"MODEL_DIR" default:"model"`
	FeatureInfoPath string `envconfig:"FEATURE_INFO_PATH" default:"model/feature_info.json"`
	RuntimeLibPath  string `envconfig:"ONNXRUNTIME_LIB_PATH"`
	IntraOpThreads  int    `envconfig:"MODEL_INTRA_OP_THREADS" default:"2"`
}

// StoreConfig selects the remote store and tunes the local fallback
type StoreConfig struct {
	Provider          string        `envconfig:"REMOTE_STORE_PROVIDER" default:"supabase"`
	Timeout           time.Duration `envconfig:"REMOTE_STORE_TIMEOUT" default:"10s"` // 0 disables the bound
	FallbackPath      string        `envconfig:"FALLBACK_PATH" default:"user_data.json"`
	FallbackQueueSize int           `envconfig:"FALLBACK_QUEUE_SIZE" default:"256"`
}

type SupabaseConfig struct {
	URL     string `envconfig:"SUPABASE_URL"`
	AnonKey string `envconfig:"SUPABASE_ANON_KEY"`
	Table   string `envconfig:"SUPABASE_TABLE" default:"predictions"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"savewise"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host           string `envconfig:"REDIS_HOST" default:"localhost"`
	Port           int    `envconfig:"REDIS_PORT" default:"6379"`
	Password       string `envconfig:"REDIS_PASSWORD"`
	DB             int    `envconfig:"REDIS_DB" default:"0"`
	PredictionsKey string `envconfig:"REDIS_PREDICTIONS_KEY" default:"savewise:predictions"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type GeminiConfig struct {
	APIKey string `envconfig:"GEMINI_API_KEY"`
	Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
}

type AdvisorConfig struct {
	Provider string `envconfig:"ADVISOR_PROVIDER" default:"gemini"`
}

type OpenAIConfig struct {
	APIKey  string        `envconfig:"OPENAI_API_KEY"`
	Model   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"30s"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type WorkerConfig struct {
	StoreProbeInterval time.Duration `envconfig:"WORKER_STORE_PROBE_INTERVAL" default:"30s"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values each remote store provider needs
func (c *Config) Validate() error {
	c.Store.Provider = strings.ToLower(strings.TrimSpace(c.Store.Provider))

	var errs errors.MultiError
	switch c.Store.Provider {
	case ProviderSupabase:
		if c.Supabase.URL == "" {
			errs.Add(errors.NewValidationError("SUPABASE_URL", "required for supabase provider", ""))
		}
		if c.Supabase.AnonKey == "" {
			errs.Add(errors.NewValidationError("SUPABASE_ANON_KEY", "required for supabase provider", ""))
		}
	case ProviderPostgres, ProviderRedis, ProviderNone:
	default:
		errs.Add(errors.NewValidationError("REMOTE_STORE_PROVIDER", "unknown provider", c.Store.Provider))
	}

	c.Advisor.Provider = strings.ToLower(strings.TrimSpace(c.Advisor.Provider))
	switch c.Advisor.Provider {
	case AdvisorGemini, AdvisorOpenAI:
	default:
		errs.Add(errors.NewValidationError("ADVISOR_PROVIDER", "unknown provider", c.Advisor.Provider))
	}

	if c.Store.FallbackQueueSize <= 0 {
		errs.Add(errors.NewValidationError("FALLBACK_QUEUE_SIZE", "must be positive", c.Store.FallbackQueueSize))
	}
	if c.Store.Timeout < 0 {
		errs.Add(errors.NewValidationError("REMOTE_STORE_TIMEOUT", "must not be negative", c.Store.Timeout))
	}
	if c.HTTP.ChatRatePerMinute <= 0 {
		errs.Add(errors.NewValidationError("CHAT_RATE_PER_MINUTE", "must be positive", c.HTTP.ChatRatePerMinute))
	}

	return errs.ToError()
}
