// Package store persists users and todos in PostgreSQL through a pgx pool.
//
// Every query runs through a circuit breaker. Lookups that miss
// (ErrNotFound) and unique-email conflicts (ErrEmailTaken) are ordinary
// answers and never count against the breaker; connection and server
// failures do. While the breaker is open calls fail fast with
// ErrUnavailable.
//
// *Store satisfies auth.CredentialStore.
package store
