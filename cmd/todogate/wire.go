package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/todogate/auth"
	"github.com/jonwraymond/todogate/config"
	"github.com/jonwraymond/todogate/health"
	"github.com/jonwraymond/todogate/httpapi"
	"github.com/jonwraymond/todogate/observe"
	"github.com/jonwraymond/todogate/resilience"
	"github.com/jonwraymond/todogate/store"
)

// openStore connects with retries, since the database often starts
// alongside the service, then migrates if configured.
func openStore(ctx context.Context, cfg *config.Config, log observe.Logger) (*store.Store, error) {
	storeCfg := store.Config{
		URL:      cfg.DB.URL,
		MaxConns: cfg.DB.MaxConns,
		Breaker: resilience.CircuitBreakerConfig{
			Name: "store",
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn(context.Background(), "circuit state changed",
					observe.F("breaker", name), observe.F("from", from.String()), observe.F("to", to.String()))
			},
		},
	}

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  cfg.DB.ConnectAttempts,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		RetryIf: func(err error) bool {
			return !errors.Is(err, store.ErrMissingURL) && !errors.Is(err, context.Canceled)
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			log.Warn(ctx, "database connect failed", observe.F("attempt", attempt), observe.F("retry_in", delay.String()), observe.Err(err))
		},
	})

	var db *store.Store
	err := retry.Execute(ctx, func(ctx context.Context) error {
		var err error
		db, err = store.Open(ctx, storeCfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	if cfg.DB.RunMigrations {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}

// seedAdmin creates the bootstrap admin unless the email is already taken.
func seedAdmin(ctx context.Context, db *store.Store, hasher auth.Hasher, email, password string, log observe.Logger) error {
	digest, err := hasher.Hash(ctx, password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	created, err := db.SeedUser(ctx, store.NewUser{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: digest,
		Role:         auth.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info(ctx, "seeded admin account", observe.F("email", email))
	}
	return nil
}

// newMux mounts the API, health endpoints and, when metrics go to
// prometheus, /metrics.
func newMux(api *httpapi.API, db *store.Store, reg *prometheus.Registry, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()
	api.Register(mux)

	agg := health.NewAggregator(health.AggregatorConfig{Timeout: 2 * time.Second})
	agg.Register(
		health.NewPingChecker("database", db),
		health.NewBreakerChecker("database_circuit", db.Breaker()),
	)
	health.RegisterHandlers(mux, agg)

	if reg != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}
	return httpapi.WithDeadline(requestTimeout, mux)
}
