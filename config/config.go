// Package config loads process configuration from the environment.
//
// Values come from environment variables (github.com/caarlos0/env) after an
// optional .env file is applied (github.com/joho/godotenv). The signing
// secret may be given indirectly as a secret reference; see package secret.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jonwraymond/todogate/observe"
	"github.com/jonwraymond/todogate/secret"
)

// Config is the complete process configuration.
type Config struct {
	HTTP HTTPConfig `envPrefix:"HTTP_"`
	DB   DBConfig   `envPrefix:"DB_"`
	Auth AuthConfig `envPrefix:"AUTH_"`
	Obs  ObsConfig  `envPrefix:"OBS_"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// DBConfig configures the record store.
type DBConfig struct {
	URL             string `env:"URL,required,notEmpty"`
	MaxConns        int32  `env:"MAX_CONNS" envDefault:"10"`
	RunMigrations   bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	ConnectAttempts int    `env:"CONNECT_ATTEMPTS" envDefault:"5"`
}

// AuthConfig configures hashing, tokens and the guard.
type AuthConfig struct {
	// JWTSecret is the HMAC signing key. It may be a literal, contain
	// ${VAR} references, or be a secretref:<provider>:<ref>.
	JWTSecret          string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	Issuer             string        `env:"ISSUER" envDefault:"todogate"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
	HashWorkers        int           `env:"HASH_WORKERS" envDefault:"0"`
	HeaderName         string        `env:"HEADER_NAME" envDefault:"Authorization"`
	LoginRatePerMinute int           `env:"LOGIN_RATE_PER_MINUTE" envDefault:"30"`
	LoginBurst         int           `env:"LOGIN_BURST" envDefault:"10"`
	SeedAdminEmail     string        `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword  string        `env:"SEED_ADMIN_PASSWORD"`
}

// ObsConfig configures logging, tracing and metrics.
type ObsConfig struct {
	ServiceName      string  `env:"SERVICE_NAME" envDefault:"todogate"`
	Version          string  `env:"VERSION"`
	LogLevel         string  `env:"LOG_LEVEL" envDefault:"info"`
	TracingExporter  string  `env:"TRACING_EXPORTER" envDefault:"none"`
	TracingSamplePct float64 `env:"TRACING_SAMPLE_PCT" envDefault:"1.0"`
	TracingEndpoint  string  `env:"TRACING_ENDPOINT"`
	MetricsExporter  string  `env:"METRICS_EXPORTER" envDefault:"none"`
	MetricsEndpoint  string  `env:"METRICS_ENDPOINT"`
}

// Observe returns the observer configuration.
func (c ObsConfig) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     c.Version,
		Tracing: observe.TracingConfig{
			Exporter:  c.TracingExporter,
			SamplePct: c.TracingSamplePct,
			Endpoint:  c.TracingEndpoint,
		},
		Metrics: observe.MetricsConfig{
			Exporter: c.MetricsExporter,
			Endpoint: c.MetricsEndpoint,
		},
		Logging: observe.LoggingConfig{Level: c.LogLevel},
	}
}

// Options control where Load reads from.
type Options struct {
	// DotEnvFiles are applied before parsing. Missing files are skipped.
	// Default: ".env"
	DotEnvFiles []string

	// Environment replaces the process environment when non-nil. No .env
	// file is read in that case.
	Environment map[string]string
}

// Load reads, resolves and validates the configuration.
func Load(ctx context.Context, opts Options) (*Config, error) {
	var (
		cfg    Config
		lookup secret.LookupFunc
	)
	if opts.Environment == nil {
		if err := loadDotEnv(opts.DotEnvFiles); err != nil {
			return nil, err
		}
		if err := env.Parse(&cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	} else {
		if err := env.ParseWithOptions(&cfg, env.Options{Environment: opts.Environment}); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
		lookup = func(k string) (string, bool) {
			v, ok := opts.Environment[k]
			return v, ok
		}
	}

	resolved, err := secret.NewResolver(secret.WithStrict(), secret.WithLookup(lookup)).Resolve(ctx, cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("config: AUTH_JWT_SECRET: %w", err)
	}
	cfg.Auth.JWTSecret = resolved

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			var pathErr *os.PathError
			if errors.As(err, &pathErr) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}
