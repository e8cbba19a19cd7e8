// Command todogate serves the todo API with token authentication.
//
// Configuration is read from the environment; see package config.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/todogate/auth"
	"github.com/jonwraymond/todogate/config"
	"github.com/jonwraymond/todogate/httpapi"
	"github.com/jonwraymond/todogate/observe"
	"github.com/jonwraymond/todogate/resilience"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "todogate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx, config.Options{})
	if err != nil {
		return err
	}

	obsCfg := cfg.Obs.Observe()
	if obsCfg.Version == "" {
		obsCfg.Version = version
	}
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("observer: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(sctx)
	}()
	log := obs.Logger()

	ops, err := observe.MiddlewareFromObserver(obs, httpapi.Classify)
	if err != nil {
		return fmt.Errorf("instrumentation: %w", err)
	}

	db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	hasher, err := auth.NewBcryptHasher(auth.HasherConfig{Cost: cfg.Auth.BcryptCost, Workers: cfg.Auth.HashWorkers})
	if err != nil {
		return err
	}
	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: []byte(cfg.Auth.JWTSecret), Issuer: cfg.Auth.Issuer})
	if err != nil {
		return err
	}

	if cfg.SeedAdmin() {
		if err := seedAdmin(ctx, db, hasher, cfg.Auth.SeedAdminEmail, cfg.Auth.SeedAdminPassword, log); err != nil {
			return err
		}
	}

	api := httpapi.New(httpapi.Config{RequestTimeout: cfg.HTTP.RequestTimeout}, httpapi.Deps{
		Authenticator: auth.NewAuthenticator(db, hasher, codec, auth.AuthenticatorConfig{TokenTTL: cfg.Auth.TokenTTL}),
		Guard: auth.NewGuard(codec,
			auth.WithHeaderName(cfg.Auth.HeaderName),
			auth.WithDecisionHook(httpapi.DecisionRecorder(ops)),
		),
		Hasher: hasher,
		Users:  db,
		Todos:  db,
		LoginLimiter: resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{
			PerMinute: cfg.Auth.LoginRatePerMinute,
			Burst:     cfg.Auth.LoginBurst,
		}),
		Ops: ops,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      newMux(api, db, obs.Registry(), cfg.HTTP.RequestTimeout),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(ctx, "listening", observe.F("addr", cfg.HTTP.Addr), observe.F("version", obsCfg.Version))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
