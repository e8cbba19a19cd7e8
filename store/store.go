package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonwraymond/todogate/resilience"
)

// Config configures the store.
type Config struct {
	// URL is a PostgreSQL connection string.
	URL string

	// MaxConns caps the pool size.
	// Default: 10
	MaxConns int32

	// Breaker configures the circuit breaker guarding every query.
	// Name defaults to "store".
	Breaker resilience.CircuitBreakerConfig
}

// querier is the subset of *pgxpool.Pool the store issues queries through.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a PostgreSQL-backed record store.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: ErrNotFound, ErrEmailTaken, ErrInvalidReference, ErrUnavailable,
// context errors, or a wrapped driver error.
type Store struct {
	pool    *pgxpool.Pool
	db      querier
	breaker *resilience.CircuitBreaker
}

// Open connects a pool and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("store: parse url: %w", err)
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}
	poolCfg.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := newStore(pool, cfg.Breaker)
	s.pool = pool
	return s, nil
}

func newStore(db querier, breaker resilience.CircuitBreakerConfig) *Store {
	if breaker.Name == "" {
		breaker.Name = "store"
	}
	if breaker.IsFailure == nil {
		breaker.IsFailure = countsAsFailure
	}
	return &Store{db: db, breaker: resilience.NewCircuitBreaker(breaker)}
}

// Breaker exposes the circuit breaker for health reporting.
func (s *Store) Breaker() *resilience.CircuitBreaker {
	return s.breaker
}

// Ping checks connectivity. It bypasses the breaker so readiness reflects
// the database itself.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		_, err := s.db.Exec(ctx, "SELECT 1")
		return err
	}
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// do runs fn through the breaker and maps its error.
func (s *Store) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return mapError(op, s.breaker.Execute(ctx, fn))
}
