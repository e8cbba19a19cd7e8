package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonwraymond/todogate/auth"
	"github.com/jonwraymond/todogate/resilience"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrEmailTaken is returned when a user write collides with an existing email.
	ErrEmailTaken = errors.New("store: email already registered")

	// ErrInvalidReference is returned when a todo names a user that does not exist.
	ErrInvalidReference = errors.New("store: referenced user does not exist")

	// ErrUnavailable is returned while the store circuit breaker is open.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrInvalidInput is returned when the database rejects a value itself,
	// such as an over-long string or an invalid byte sequence.
	ErrInvalidInput = errors.New("store: invalid input")

	// ErrMissingURL is returned by Open when no connection string is configured.
	ErrMissingURL = errors.New("store: database url is required")
)

// mapError translates driver errors into store sentinels. Unrecognized
// errors are wrapped with op for context.
func mapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, resilience.ErrCircuitOpen):
		return fmt.Errorf("%w: %s", ErrUnavailable, op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrEmailTaken
		case pgerrcode.ForeignKeyViolation:
			return ErrInvalidReference
		}
		if pgerrcode.IsDataException(pgErr.Code) {
			return fmt.Errorf("%w: %s: %s", ErrInvalidInput, op, pgErr.Message)
		}
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

// countsAsFailure reports whether err says something about the health of
// the database rather than about the request.
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, context.Canceled) || errors.Is(err, auth.ErrInvalidRole) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Classes 22 and 23 judge the submitted values, not the server.
		return !pgerrcode.IsDataException(pgErr.Code) && !pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
	}
	return true
}

// storableID reports whether id fits the SERIAL key columns. Ids outside
// that range cannot name a row and are answered without a round trip.
func storableID(id int64) bool {
	return id > 0 && id <= math.MaxInt32
}
